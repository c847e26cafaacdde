// Package kernel provides pairwise similarity functions and the Gram oracle
// the SMO solver optimizes over. A kernel is described by a serializable Spec
// and materialized into a Method for computation; the Gram type answers
// "similarity between sample i and j" and "similarity row for sample i"
// queries over a fixed dataset, with optional row caching.
package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// Kernel type identifiers used by Spec.
const (
	TypeLinear     = "linear"
	TypeRBF        = "rbf"
	TypePolynomial = "poly"
	TypeSigmoid    = "sigmoid"
)

// Method computes the similarity between two feature vectors.
// Implementations must be symmetric: Compute(a, b) == Compute(b, a).
type Method interface {
	// Compute returns the similarity between a and b.
	Compute(a, b []float64) float64

	// IsLinear reports whether the method is the plain dot product.
	// Linear models collapse their support vectors into a single weight
	// vector for O(features) inference.
	IsLinear() bool
}

// Spec is a serializable description of a kernel. It is the configuration
// surface of the estimators and the form persisted inside saved models;
// Method() materializes it into a computable kernel and validates the
// parameters.
type Spec struct {
	Type   string
	Gamma  float64
	Coef0  float64
	Degree int
}

// Linear returns the dot-product kernel spec.
func Linear() Spec {
	return Spec{Type: TypeLinear}
}

// Gaussian returns the RBF kernel spec exp(-gamma*||a-b||^2).
func Gaussian(gamma float64) Spec {
	return Spec{Type: TypeRBF, Gamma: gamma}
}

// Polynomial returns the kernel spec (gamma*<a,b> + coef0)^degree.
func Polynomial(gamma, coef0 float64, degree int) Spec {
	return Spec{Type: TypePolynomial, Gamma: gamma, Coef0: coef0, Degree: degree}
}

// Sigmoid returns the kernel spec tanh(gamma*<a,b> + coef0).
func Sigmoid(gamma, coef0 float64) Spec {
	return Spec{Type: TypeSigmoid, Gamma: gamma, Coef0: coef0}
}

// IsLinear reports whether the spec describes the linear kernel.
func (s Spec) IsLinear() bool {
	return s.Type == TypeLinear
}

// Method materializes the spec, validating its parameters.
func (s Spec) Method() (Method, error) {
	switch s.Type {
	case TypeLinear:
		return linear{}, nil
	case TypeRBF:
		if s.Gamma <= 0 {
			return nil, errors.NewValidationError("gamma", "must be positive for the rbf kernel", s.Gamma)
		}
		return gaussian{gamma: s.Gamma}, nil
	case TypePolynomial:
		if s.Gamma <= 0 {
			return nil, errors.NewValidationError("gamma", "must be positive for the poly kernel", s.Gamma)
		}
		if s.Degree < 1 {
			return nil, errors.NewValidationError("degree", "must be at least 1", s.Degree)
		}
		return polynomial{gamma: s.Gamma, coef0: s.Coef0, degree: s.Degree}, nil
	case TypeSigmoid:
		if s.Gamma <= 0 {
			return nil, errors.NewValidationError("gamma", "must be positive for the sigmoid kernel", s.Gamma)
		}
		return sigmoid{gamma: s.Gamma, coef0: s.Coef0}, nil
	default:
		return nil, errors.NewValidationError("kernel", "unknown kernel type", s.Type)
	}
}

// String returns a short human-readable description of the spec.
func (s Spec) String() string {
	switch s.Type {
	case TypeLinear:
		return "linear"
	case TypeRBF:
		return fmt.Sprintf("rbf(gamma=%g)", s.Gamma)
	case TypePolynomial:
		return fmt.Sprintf("poly(gamma=%g, coef0=%g, degree=%d)", s.Gamma, s.Coef0, s.Degree)
	case TypeSigmoid:
		return fmt.Sprintf("sigmoid(gamma=%g, coef0=%g)", s.Gamma, s.Coef0)
	default:
		return s.Type
	}
}

type linear struct{}

func (linear) Compute(a, b []float64) float64 { return floats.Dot(a, b) }
func (linear) IsLinear() bool                 { return true }

type gaussian struct {
	gamma float64
}

func (g gaussian) Compute(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Exp(-g.gamma * sum)
}
func (gaussian) IsLinear() bool { return false }

type polynomial struct {
	gamma, coef0 float64
	degree       int
}

func (p polynomial) Compute(a, b []float64) float64 {
	return powi(p.gamma*floats.Dot(a, b)+p.coef0, p.degree)
}
func (polynomial) IsLinear() bool { return false }

type sigmoid struct {
	gamma, coef0 float64
}

func (s sigmoid) Compute(a, b []float64) float64 {
	return math.Tanh(s.gamma*floats.Dot(a, b) + s.coef0)
}
func (sigmoid) IsLinear() bool { return false }

// powi computes base^times by squaring.
func powi(base float64, times int) float64 {
	tmp := base
	ret := 1.0
	for t := times; t > 0; t /= 2 {
		if t%2 == 1 {
			ret *= tmp
		}
		tmp *= tmp
	}
	return ret
}
