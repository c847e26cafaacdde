package svm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/pkg/log"
)

// FittedState is the part of the dual solution every estimator keeps after
// training: the support-vector rows with their coefficients, the bias and
// the solve diagnostics. The support vectors are owned copies, so a fitted
// model stays valid after the training data is gone. All fields are exported
// for gob persistence; treat them as read-only.
type FittedState struct {
	// SupportVectors holds copies of the training rows with non-negligible
	// dual coefficients.
	SupportVectors [][]float64

	// DualCoef holds the matching coefficients (label signs folded in for
	// classification).
	DualCoef []float64

	// Rho is the decision function bias.
	Rho float64

	// Weights is the collapsed feature-space weight vector, present only
	// for the linear kernel. It makes inference O(features) instead of
	// O(support vectors).
	Weights []float64

	// Iterations, Obj and ExitReason diagnose the solver run.
	Iterations int
	Obj        float64
	ExitReason ExitReason
}

// capture extracts the support-vector subset of the solution together with
// owned copies of the corresponding rows.
func (f *FittedState) capture(rows [][]float64, spec kernel.Spec, sol *Solution) {
	idx := sol.SupportIndices()
	f.SupportVectors = make([][]float64, len(idx))
	f.DualCoef = make([]float64, len(idx))
	for k, i := range idx {
		sv := make([]float64, len(rows[i]))
		copy(sv, rows[i])
		f.SupportVectors[k] = sv
		f.DualCoef[k] = sol.Alpha[i]
	}

	f.Rho = sol.Rho
	f.Iterations = sol.Iterations
	f.Obj = sol.Obj
	f.ExitReason = sol.ExitReason

	f.Weights = nil
	if spec.IsLinear() && len(idx) > 0 {
		f.Weights = make([]float64, len(rows[0]))
		for k, sv := range f.SupportVectors {
			floats.AddScaled(f.Weights, f.DualCoef[k], sv)
		}
	}
}

// NSupport returns the number of support vectors of the fitted model.
func (f *FittedState) NSupport() int { return len(f.DualCoef) }

// Summary describes the solver run in one line: exit reason, iteration
// count, objective value and support-vector count.
func (f *FittedState) Summary() string {
	if f.ExitReason == ReachedThreshold {
		return fmt.Sprintf("Exited after %d iterations with obj = %v and %d support vectors",
			f.Iterations, f.Obj, f.NSupport())
	}
	return fmt.Sprintf("Reached maximal iterations %d with obj = %v and %d support vectors",
		f.Iterations, f.Obj, f.NSupport())
}

// decide evaluates the raw decision value sum_i coef_i*K(x, sv_i) - rho,
// using the collapsed weight vector when the kernel is linear.
func (f *FittedState) decide(method kernel.Method, x []float64) float64 {
	if f.Weights != nil {
		return floats.Dot(f.Weights, x) - f.Rho
	}
	var sum float64
	for k, sv := range f.SupportVectors {
		sum += f.DualCoef[k] * method.Compute(x, sv)
	}
	return sum - f.Rho
}

// decisionColumn evaluates the decision function for every row of X.
func (f *FittedState) decisionColumn(method kernel.Method, X mat.Matrix) *mat.VecDense {
	r, c := X.Dims()
	out := mat.NewVecDense(r, nil)
	x := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x[j] = X.At(i, j)
		}
		out.SetVec(i, f.decide(method, x))
	}
	return out
}

// matrixRows copies X into per-sample row slices for the kernel oracle.
func matrixRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

// signLabels converts a column matrix of class labels into the +-1 vector
// the solver works with: strictly positive entries become +1, everything
// else -1.
func signLabels(op string, y mat.Matrix, nRows int) ([]int8, error) {
	ry, cy := y.Dims()
	if cy != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector")
	}
	if ry != nRows {
		return nil, errors.NewDimensionError(op, nRows, ry, 0)
	}
	labels := make([]int8, ry)
	for i := 0; i < ry; i++ {
		if y.At(i, 0) > 0 {
			labels[i] = +1
		} else {
			labels[i] = -1
		}
	}
	return labels, nil
}

// targetVector converts a column matrix of regression targets into a slice.
func targetVector(op string, y mat.Matrix, nRows int) ([]float64, error) {
	ry, cy := y.Dims()
	if cy != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector")
	}
	if ry != nRows {
		return nil, errors.NewDimensionError(op, nRows, ry, 0)
	}
	targets := make([]float64, ry)
	for i := 0; i < ry; i++ {
		targets[i] = y.At(i, 0)
	}
	if err := errors.CheckNumericalStability(op, targets, 0); err != nil {
		return nil, err
	}
	return targets, nil
}

// checkTrainingData rejects inputs carrying NaN or Inf before they reach the
// solver, where they would silently poison the gradient.
func checkTrainingData(op string, X mat.Matrix, r, c int) error {
	return errors.CheckMatrix(op, X, r, c, 0)
}

// logSolve records the solver diagnostics after a fit.
func logSolve(component string, sol *Solution, samples, features int) {
	log.GetLoggerWithName(component).Debug("dual problem solved",
		log.SamplesKey, samples,
		log.FeaturesKey, features,
		log.IterationKey, sol.Iterations,
		"objective", sol.Obj,
		"support_vectors", sol.NSupport(),
		"exit_reason", sol.ExitReason.String(),
	)
}

// warnConvergence surfaces an iteration-cap exit as a ConvergenceWarning.
// It is a defined terminal state, not an error.
func warnConvergence(algorithm string, sol *Solution) {
	if sol.ExitReason == ReachedMaxIterations {
		errors.Warn(errors.NewConvergenceWarning(algorithm, sol.Iterations,
			"KKT violation still above tolerance; consider raising MaxIter or loosening Tol"))
	}
}
