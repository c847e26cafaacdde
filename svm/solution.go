// Package svm trains support vector machine models with Sequential Minimal
// Optimization (SMO). It provides the dual solver together with task
// estimators for two-class classification (SVC, NuSVC), one-class novelty
// detection (OneClassSVM) and regression (SVR, NuSVR), all following the
// usual Fit/Predict estimator surface.
package svm

import (
	"fmt"
	"math"
)

// A sample is a support vector when |alpha| exceeds this threshold.
const supportThreshold = 1e-5

// ExitReason reports why the SMO loop terminated. Reaching the iteration
// limit is a defined terminal state, not an error; callers decide whether to
// trust the resulting model.
type ExitReason int

const (
	// ReachedThreshold means the KKT violation dropped below the stopping
	// tolerance.
	ReachedThreshold ExitReason = iota
	// ReachedMaxIterations means the iteration budget was exhausted first.
	ReachedMaxIterations
)

func (r ExitReason) String() string {
	switch r {
	case ReachedThreshold:
		return "ReachedThreshold"
	case ReachedMaxIterations:
		return "ReachedMaxIterations"
	default:
		return fmt.Sprintf("ExitReason(%d)", int(r))
	}
}

// Solution is the raw outcome of one SMO run: the dual coefficients together
// with the bias and convergence diagnostics. It is immutable once produced;
// retraining creates a new one.
type Solution struct {
	// Alpha holds one dual coefficient per sample. For classification tasks
	// the label sign is already folded in; for regression it is the
	// difference of the paired slack variables.
	Alpha []float64

	// Rho is the bias term of the decision function.
	Rho float64

	// R is the auxiliary free term solved by the Nu variants. NuSVR recovers
	// its epsilon as -R; it is zero for all other tasks.
	R float64

	// Obj is the value of the dual objective at termination.
	Obj float64

	// Iterations is the number of pair optimization steps performed.
	Iterations int

	// ExitReason records which terminal condition ended the run.
	ExitReason ExitReason
}

// NSupport returns the number of support vectors, i.e. samples whose dual
// coefficient magnitude exceeds 1e-5.
func (s *Solution) NSupport() int {
	n := 0
	for _, a := range s.Alpha {
		if math.Abs(a) > supportThreshold {
			n++
		}
	}
	return n
}

// SupportIndices returns the indices of the support vectors in training
// order.
func (s *Solution) SupportIndices() []int {
	idx := make([]int, 0, len(s.Alpha))
	for i, a := range s.Alpha {
		if math.Abs(a) > supportThreshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// String summarizes the run: exit reason, iteration count, objective value
// and support vector count.
func (s *Solution) String() string {
	switch s.ExitReason {
	case ReachedThreshold:
		return fmt.Sprintf("Exited after %d iterations with obj = %v and %d support vectors",
			s.Iterations, s.Obj, s.NSupport())
	default:
		return fmt.Sprintf("Reached maximal iterations %d with obj = %v and %d support vectors",
			s.Iterations, s.Obj, s.NSupport())
	}
}
