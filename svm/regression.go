package svm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/metrics"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

var (
	_ model.Regressor = (*SVR)(nil)
	_ model.Regressor = (*NuSVR)(nil)
)

// SVR is epsilon-insensitive support vector regression: deviations smaller
// than Epsilon are not penalized, larger ones linearly with weight C.
//
// Predictions are sum_i alpha_i*K(x, sv_i) - rho.
type SVR struct {
	*model.StateManager

	// C is the penalty on deviations outside the epsilon tube.
	C float64

	// Epsilon is the half-width of the insensitive tube.
	Epsilon float64

	// Kernel describes the similarity function. Defaults to rbf(gamma=1).
	Kernel kernel.Spec

	Tol       float64
	Shrinking bool
	MaxIter   int
	CacheRows int

	FittedState
}

// NewSVR creates a regressor with C=1, epsilon=0.1, rbf kernel, tolerance
// 1e-7 and shrinking disabled.
func NewSVR() *SVR {
	return &SVR{
		StateManager: model.NewStateManager(),
		C:            1,
		Epsilon:      0.1,
		Kernel:       kernel.Gaussian(1.0),
		Tol:          1e-7,
	}
}

// WithC sets the deviation penalty.
func (s *SVR) WithC(c float64) *SVR {
	s.C = c
	return s
}

// WithEpsilon sets the insensitive tube half-width.
func (s *SVR) WithEpsilon(epsilon float64) *SVR {
	s.Epsilon = epsilon
	return s
}

// WithKernel sets the kernel.
func (s *SVR) WithKernel(spec kernel.Spec) *SVR {
	s.Kernel = spec
	return s
}

// WithTol sets the solver stopping tolerance.
func (s *SVR) WithTol(tol float64) *SVR {
	s.Tol = tol
	return s
}

// WithShrinking toggles active-set shrinking.
func (s *SVR) WithShrinking(enabled bool) *SVR {
	s.Shrinking = enabled
	return s
}

// WithMaxIter caps the solver iteration count.
func (s *SVR) WithMaxIter(maxIter int) *SVR {
	s.MaxIter = maxIter
	return s
}

func (s *SVR) solverParams() SolverParams {
	p := DefaultSolverParams()
	p.Eps = s.Tol
	p.Shrinking = s.Shrinking
	p.MaxIter = s.MaxIter
	return p
}

// Fit trains the regressor on X and the real-valued targets y.
func (s *SVR) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "SVR.Fit")

	if s.C <= 0 {
		return errors.NewValidationError("C", "must be positive", s.C)
	}
	if s.Epsilon < 0 {
		return errors.NewValidationError("Epsilon", "must be non-negative", s.Epsilon)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return err
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SVR.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := checkTrainingData("SVR.Fit", X, r, c); err != nil {
		return err
	}
	targets, err := targetVector("SVR.Fit", y, r)
	if err != nil {
		return err
	}

	rows := matrixRows(X)
	gram := kernel.NewGram(rows, method, s.CacheRows)
	sol := solveEpsilonSVR(gram, targets, s.C, s.Epsilon, s.solverParams())

	s.capture(rows, s.Kernel, sol)
	logSolve("svm.svr", sol, r, c)
	warnConvergence("SVR", sol)

	s.SetDimensions(c, r)
	s.SetFitted()
	return nil
}

// Predict returns the regression estimate for every row of X.
func (s *SVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("SVR", "Predict")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("SVR.Predict", s.NFeatures, c, 1)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return nil, err
	}
	dec := s.decisionColumn(method, X)
	out := mat.NewDense(dec.Len(), 1, nil)
	for i := 0; i < dec.Len(); i++ {
		out.Set(i, 0, dec.AtVec(i))
	}
	return out, nil
}

// Score returns the coefficient of determination R^2 on X, y.
func (s *SVR) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2Column("SVR.Score", y, pred)
}

// NuSVR is Nu-parameterized support vector regression: the tube width
// epsilon is not fixed but solved for, with Nu in (0, 1] bounding the
// fraction of samples outside the tube. The solved width is exposed as
// TubeEpsilon after fitting.
type NuSVR struct {
	*model.StateManager

	// C is the deviation penalty.
	C float64

	// Nu bounds the fraction of out-of-tube samples, in (0, 1].
	Nu float64

	// Kernel describes the similarity function. Defaults to rbf(gamma=1).
	Kernel kernel.Spec

	Tol       float64
	Shrinking bool
	MaxIter   int
	CacheRows int

	// TubeEpsilon is the solved insensitive-tube half-width, available
	// after Fit.
	TubeEpsilon float64

	FittedState
}

// NewNuSVR creates a regressor with C=1, nu=0.5, rbf kernel, tolerance 1e-7
// and shrinking disabled.
func NewNuSVR() *NuSVR {
	return &NuSVR{
		StateManager: model.NewStateManager(),
		C:            1,
		Nu:           0.5,
		Kernel:       kernel.Gaussian(1.0),
		Tol:          1e-7,
	}
}

// WithC sets the deviation penalty.
func (s *NuSVR) WithC(c float64) *NuSVR {
	s.C = c
	return s
}

// WithNu sets the out-of-tube fraction bound.
func (s *NuSVR) WithNu(nu float64) *NuSVR {
	s.Nu = nu
	return s
}

// WithKernel sets the kernel.
func (s *NuSVR) WithKernel(spec kernel.Spec) *NuSVR {
	s.Kernel = spec
	return s
}

// WithTol sets the solver stopping tolerance.
func (s *NuSVR) WithTol(tol float64) *NuSVR {
	s.Tol = tol
	return s
}

// WithShrinking toggles active-set shrinking.
func (s *NuSVR) WithShrinking(enabled bool) *NuSVR {
	s.Shrinking = enabled
	return s
}

// WithMaxIter caps the solver iteration count.
func (s *NuSVR) WithMaxIter(maxIter int) *NuSVR {
	s.MaxIter = maxIter
	return s
}

func (s *NuSVR) solverParams() SolverParams {
	p := DefaultSolverParams()
	p.Eps = s.Tol
	p.Shrinking = s.Shrinking
	p.MaxIter = s.MaxIter
	return p
}

// Fit trains the regressor on X and the real-valued targets y.
func (s *NuSVR) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "NuSVR.Fit")

	if s.C <= 0 {
		return errors.NewValidationError("C", "must be positive", s.C)
	}
	if s.Nu <= 0 || s.Nu > 1 {
		return errors.NewValidationError("Nu", "must be in (0, 1]", s.Nu)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return err
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("NuSVR.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := checkTrainingData("NuSVR.Fit", X, r, c); err != nil {
		return err
	}
	targets, err := targetVector("NuSVR.Fit", y, r)
	if err != nil {
		return err
	}

	rows := matrixRows(X)
	gram := kernel.NewGram(rows, method, s.CacheRows)
	sol := solveNuSVR(gram, targets, s.C, s.Nu, s.solverParams())

	s.capture(rows, s.Kernel, sol)
	s.TubeEpsilon = -sol.R
	logSolve("svm.nusvr", sol, r, c)
	warnConvergence("NuSVR", sol)

	s.SetDimensions(c, r)
	s.SetFitted()
	return nil
}

// Predict returns the regression estimate for every row of X.
func (s *NuSVR) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("NuSVR", "Predict")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("NuSVR.Predict", s.NFeatures, c, 1)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return nil, err
	}
	dec := s.decisionColumn(method, X)
	out := mat.NewDense(dec.Len(), 1, nil)
	for i := 0; i < dec.Len(); i++ {
		out.Set(i, 0, dec.AtVec(i))
	}
	return out, nil
}

// Score returns the coefficient of determination R^2 on X, y.
func (s *NuSVR) Score(X, y mat.Matrix) (float64, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return 0, err
	}
	return r2Column("NuSVR.Score", y, pred)
}

// r2Column adapts column matrices to the metrics vector API.
func r2Column(op string, y, pred mat.Matrix) (float64, error) {
	ry, cy := y.Dims()
	rp, _ := pred.Dims()
	if cy != 1 {
		return 0, errors.NewValueError(op, "y must be a column vector")
	}
	if ry != rp {
		return 0, errors.NewDimensionError(op, rp, ry, 0)
	}
	yv := mat.NewVecDense(ry, nil)
	pv := mat.NewVecDense(ry, nil)
	for i := 0; i < ry; i++ {
		yv.SetVec(i, y.At(i, 0))
		pv.SetVec(i, pred.At(i, 0))
	}
	return metrics.R2Score(yv, pv)
}
