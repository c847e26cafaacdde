package svm

// SolverParams control the SMO optimization loop. The zero value is not
// usable directly; DefaultSolverParams supplies the defaults the estimators
// start from.
type SolverParams struct {
	// Eps is the stopping tolerance on the KKT violation of the maximal
	// violating pair.
	Eps float64

	// Shrinking enables periodic removal of bound-stuck variables from the
	// active set. It can speed up training but the approximate solution is
	// re-validated against the full gradient before convergence is declared.
	Shrinking bool

	// MaxIter caps the number of pair optimization steps. Zero selects
	// max(10_000_000, 100*n) where n is the number of dual variables.
	MaxIter int

	// Tau is the floor applied to near-zero curvature during working set
	// selection and pair optimization.
	Tau float64
}

// DefaultSolverParams returns the solver defaults: eps 1e-7, shrinking
// disabled, automatic iteration cap and a curvature floor of 1e-12.
func DefaultSolverParams() SolverParams {
	return SolverParams{
		Eps:       1e-7,
		Shrinking: false,
		MaxIter:   0,
		Tau:       1e-12,
	}
}

func (p SolverParams) withDefaults(n int) SolverParams {
	if p.Eps <= 0 {
		p.Eps = 1e-7
	}
	if p.Tau <= 0 {
		p.Tau = 1e-12
	}
	if p.MaxIter <= 0 {
		p.MaxIter = 10_000_000
		if budget := 100 * n; budget > p.MaxIter {
			p.MaxIter = budget
		}
	}
	return p
}
