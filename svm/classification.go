package svm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

var (
	_ model.Classifier = (*SVC)(nil)
	_ model.Classifier = (*NuSVC)(nil)
)

// SVC is the two-class C-parameterized support vector classifier. The
// penalty can differ per class (CPos for positive samples, CNeg for
// negative ones) to compensate class imbalance. Labels are interpreted by
// sign: strictly positive values are the positive class.
//
// Predictions are the sign of sum_i alpha_i*y_i*K(x, sv_i) - rho.
type SVC struct {
	*model.StateManager

	// CPos and CNeg bound the dual coefficients of positive and negative
	// samples. Both must be positive.
	CPos, CNeg float64

	// Kernel describes the similarity function. Defaults to rbf(gamma=1).
	Kernel kernel.Spec

	// Tol is the solver stopping tolerance.
	Tol float64

	// Shrinking enables active-set shrinking in the solver.
	Shrinking bool

	// MaxIter caps solver iterations; zero selects the automatic cap.
	MaxIter int

	// CacheRows bounds the kernel row cache; zero selects the default.
	CacheRows int

	FittedState
}

// NewSVC creates a classifier with C=(1,1), rbf kernel, tolerance 1e-7 and
// shrinking disabled.
func NewSVC() *SVC {
	return &SVC{
		StateManager: model.NewStateManager(),
		CPos:         1,
		CNeg:         1,
		Kernel:       kernel.Gaussian(1.0),
		Tol:          1e-7,
	}
}

// WithC sets a single penalty for both classes.
func (s *SVC) WithC(c float64) *SVC {
	s.CPos, s.CNeg = c, c
	return s
}

// WithPosNegC sets independent penalties for the positive and negative
// class.
func (s *SVC) WithPosNegC(cPos, cNeg float64) *SVC {
	s.CPos, s.CNeg = cPos, cNeg
	return s
}

// WithKernel sets the kernel.
func (s *SVC) WithKernel(spec kernel.Spec) *SVC {
	s.Kernel = spec
	return s
}

// WithTol sets the solver stopping tolerance.
func (s *SVC) WithTol(tol float64) *SVC {
	s.Tol = tol
	return s
}

// WithShrinking toggles active-set shrinking.
func (s *SVC) WithShrinking(enabled bool) *SVC {
	s.Shrinking = enabled
	return s
}

// WithMaxIter caps the solver iteration count.
func (s *SVC) WithMaxIter(maxIter int) *SVC {
	s.MaxIter = maxIter
	return s
}

func (s *SVC) solverParams() SolverParams {
	p := DefaultSolverParams()
	p.Eps = s.Tol
	p.Shrinking = s.Shrinking
	p.MaxIter = s.MaxIter
	return p
}

// Fit trains the classifier on X (samples by features) and y (one label per
// sample, sign-coded).
func (s *SVC) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "SVC.Fit")

	if s.CPos <= 0 {
		return errors.NewValidationError("CPos", "must be positive", s.CPos)
	}
	if s.CNeg <= 0 {
		return errors.NewValidationError("CNeg", "must be positive", s.CNeg)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return err
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SVC.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := checkTrainingData("SVC.Fit", X, r, c); err != nil {
		return err
	}
	labels, err := signLabels("SVC.Fit", y, r)
	if err != nil {
		return err
	}

	rows := matrixRows(X)
	gram := kernel.NewGram(rows, method, s.CacheRows)
	sol := solveCSVC(gram, labels, s.CPos, s.CNeg, s.solverParams())

	s.capture(rows, s.Kernel, sol)
	logSolve("svm.svc", sol, r, c)
	warnConvergence("SVC", sol)

	s.SetDimensions(c, r)
	s.SetFitted()
	return nil
}

// DecisionFunction returns the signed margin for every row of X.
func (s *SVC) DecisionFunction(X mat.Matrix) (*mat.VecDense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SVC", "DecisionFunction")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("SVC.DecisionFunction", s.NFeatures, c, 1)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return nil, err
	}
	return s.decisionColumn(method, X), nil
}

// Predict returns the predicted class (+1 or -1) for every row of X.
func (s *SVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SVC", "Predict")
	}
	dec, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	return signColumn(dec), nil
}

// Score returns the accuracy on X against the sign-coded labels y.
func (s *SVC) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return signAccuracy("SVC.Score", y, pred)
}

// NuSVC is the Nu-parameterized two-class support vector classifier. Nu in
// (0, 1] is an upper bound on the fraction of margin errors and a lower
// bound on the fraction of support vectors.
type NuSVC struct {
	*model.StateManager

	// Nu controls the support-vector fraction, in (0, 1].
	Nu float64

	// Kernel describes the similarity function. Defaults to rbf(gamma=1).
	Kernel kernel.Spec

	Tol       float64
	Shrinking bool
	MaxIter   int
	CacheRows int

	FittedState
}

// NewNuSVC creates a classifier with nu=0.5, rbf kernel, tolerance 1e-7 and
// shrinking disabled.
func NewNuSVC() *NuSVC {
	return &NuSVC{
		StateManager: model.NewStateManager(),
		Nu:           0.5,
		Kernel:       kernel.Gaussian(1.0),
		Tol:          1e-7,
	}
}

// WithNu sets the support-vector fraction bound.
func (s *NuSVC) WithNu(nu float64) *NuSVC {
	s.Nu = nu
	return s
}

// WithKernel sets the kernel.
func (s *NuSVC) WithKernel(spec kernel.Spec) *NuSVC {
	s.Kernel = spec
	return s
}

// WithTol sets the solver stopping tolerance.
func (s *NuSVC) WithTol(tol float64) *NuSVC {
	s.Tol = tol
	return s
}

// WithShrinking toggles active-set shrinking.
func (s *NuSVC) WithShrinking(enabled bool) *NuSVC {
	s.Shrinking = enabled
	return s
}

// WithMaxIter caps the solver iteration count.
func (s *NuSVC) WithMaxIter(maxIter int) *NuSVC {
	s.MaxIter = maxIter
	return s
}

func (s *NuSVC) solverParams() SolverParams {
	p := DefaultSolverParams()
	p.Eps = s.Tol
	p.Shrinking = s.Shrinking
	p.MaxIter = s.MaxIter
	return p
}

// Fit trains the classifier on X and the sign-coded labels y.
func (s *NuSVC) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "NuSVC.Fit")

	if s.Nu <= 0 || s.Nu > 1 {
		return errors.NewValidationError("Nu", "must be in (0, 1]", s.Nu)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return err
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("NuSVC.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := checkTrainingData("NuSVC.Fit", X, r, c); err != nil {
		return err
	}
	labels, err := signLabels("NuSVC.Fit", y, r)
	if err != nil {
		return err
	}

	nPos, nNeg := 0, 0
	for _, l := range labels {
		if l > 0 {
			nPos++
		} else {
			nNeg++
		}
	}
	if s.Nu*float64(nPos+nNeg)/2 > float64(min(nPos, nNeg)) {
		return errors.NewValidationError("Nu", "infeasible for this class balance", s.Nu)
	}

	rows := matrixRows(X)
	gram := kernel.NewGram(rows, method, s.CacheRows)
	sol := solveNuSVC(gram, labels, s.Nu, s.solverParams())

	s.capture(rows, s.Kernel, sol)
	logSolve("svm.nusvc", sol, r, c)
	warnConvergence("NuSVC", sol)

	s.SetDimensions(c, r)
	s.SetFitted()
	return nil
}

// DecisionFunction returns the signed margin for every row of X.
func (s *NuSVC) DecisionFunction(X mat.Matrix) (*mat.VecDense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("NuSVC", "DecisionFunction")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("NuSVC.DecisionFunction", s.NFeatures, c, 1)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return nil, err
	}
	return s.decisionColumn(method, X), nil
}

// Predict returns the predicted class (+1 or -1) for every row of X.
func (s *NuSVC) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("NuSVC", "Predict")
	}
	dec, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	return signColumn(dec), nil
}

// Score returns the accuracy on X against the sign-coded labels y.
func (s *NuSVC) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return signAccuracy("NuSVC.Score", y, pred)
}

// signColumn maps decision values to class labels; a non-negative margin is
// the positive class.
func signColumn(dec *mat.VecDense) *mat.Dense {
	out := mat.NewDense(dec.Len(), 1, nil)
	for i := 0; i < dec.Len(); i++ {
		if dec.AtVec(i) >= 0 {
			out.Set(i, 0, 1)
		} else {
			out.Set(i, 0, -1)
		}
	}
	return out
}

// signAccuracy compares sign-coded labels, tolerating arbitrary positive and
// non-positive encodings in y.
func signAccuracy(op string, y, pred mat.Matrix) (float64, error) {
	ry, _ := y.Dims()
	rp, _ := pred.Dims()
	if ry != rp {
		return 0, errors.NewDimensionError(op, rp, ry, 0)
	}
	if ry == 0 {
		return 0, errors.NewValueError(op, "empty labels")
	}
	correct := 0
	for i := 0; i < ry; i++ {
		want := y.At(i, 0) > 0
		got := pred.At(i, 0) > 0
		if want == got {
			correct++
		}
	}
	return float64(correct) / float64(ry), nil
}
