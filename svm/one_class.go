package svm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// OneClassSVM estimates the support of an unlabeled sample distribution.
// Nu in (0, 1] bounds the fraction of training points treated as outliers
// and lower-bounds the fraction of support vectors. Prediction returns +1
// for inliers and -1 for points outside the learned region.
type OneClassSVM struct {
	*model.StateManager

	// Nu bounds the outlier fraction, in (0, 1].
	Nu float64

	// Kernel describes the similarity function. Defaults to rbf(gamma=1).
	Kernel kernel.Spec

	Tol       float64
	Shrinking bool
	MaxIter   int
	CacheRows int

	FittedState
}

// NewOneClassSVM creates a detector with nu=0.5, rbf kernel, tolerance 1e-7
// and shrinking disabled.
func NewOneClassSVM() *OneClassSVM {
	return &OneClassSVM{
		StateManager: model.NewStateManager(),
		Nu:           0.5,
		Kernel:       kernel.Gaussian(1.0),
		Tol:          1e-7,
	}
}

// WithNu sets the outlier fraction bound.
func (s *OneClassSVM) WithNu(nu float64) *OneClassSVM {
	s.Nu = nu
	return s
}

// WithKernel sets the kernel.
func (s *OneClassSVM) WithKernel(spec kernel.Spec) *OneClassSVM {
	s.Kernel = spec
	return s
}

// WithTol sets the solver stopping tolerance.
func (s *OneClassSVM) WithTol(tol float64) *OneClassSVM {
	s.Tol = tol
	return s
}

// WithShrinking toggles active-set shrinking.
func (s *OneClassSVM) WithShrinking(enabled bool) *OneClassSVM {
	s.Shrinking = enabled
	return s
}

// WithMaxIter caps the solver iteration count.
func (s *OneClassSVM) WithMaxIter(maxIter int) *OneClassSVM {
	s.MaxIter = maxIter
	return s
}

func (s *OneClassSVM) solverParams() SolverParams {
	p := DefaultSolverParams()
	p.Eps = s.Tol
	p.Shrinking = s.Shrinking
	p.MaxIter = s.MaxIter
	return p
}

// Fit learns the support region of the rows of X. No labels are consumed;
// every sample carries the same positive pseudo-label.
func (s *OneClassSVM) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "OneClassSVM.Fit")

	if s.Nu <= 0 || s.Nu > 1 {
		return errors.NewValidationError("Nu", "must be in (0, 1]", s.Nu)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return err
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("OneClassSVM.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := checkTrainingData("OneClassSVM.Fit", X, r, c); err != nil {
		return err
	}

	rows := matrixRows(X)
	gram := kernel.NewGram(rows, method, s.CacheRows)
	sol := solveOneClass(gram, s.Nu, s.solverParams())

	s.capture(rows, s.Kernel, sol)
	logSolve("svm.oneclass", sol, r, c)
	warnConvergence("OneClassSVM", sol)

	s.SetDimensions(c, r)
	s.SetFitted()
	return nil
}

// DecisionFunction returns the signed distance to the learned boundary for
// every row of X; non-negative values are inside the region.
func (s *OneClassSVM) DecisionFunction(X mat.Matrix) (*mat.VecDense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("OneClassSVM", "DecisionFunction")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return nil, errors.NewDimensionError("OneClassSVM.DecisionFunction", s.NFeatures, c, 1)
	}
	method, err := s.Kernel.Method()
	if err != nil {
		return nil, err
	}
	return s.decisionColumn(method, X), nil
}

// Predict returns +1 for inliers and -1 for outliers.
func (s *OneClassSVM) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("OneClassSVM", "Predict")
	}
	dec, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	return signColumn(dec), nil
}
