package svm

import "math"

// Task adapters: translate each supervised task into the canonical dual form
// (bounds, linear term, sign vector, initial alpha), run the solver and
// translate the raw solution back. The returned Solution carries the final
// per-sample coefficients with label signs folded in.

func identityIndex(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// solveCSVC solves the weighted two-class problem: alpha_i in [0, cp] for
// positive samples and [0, cn] for negative ones, linear term -1.
func solveCSVC(k Oracle, y []int8, cp, cn float64, params SolverParams) *Solution {
	n := k.Len()
	p := make([]float64, n)
	alpha := make([]float64, n)
	for i := range p {
		p[i] = -1
	}

	q := newSignedQ(k, y, identityIndex(n))
	sol := newSolver(q, p, y, alpha, cp, cn, params, false).solve()

	for i := range sol.Alpha {
		sol.Alpha[i] *= float64(y[i])
	}
	return sol
}

// solveNuSVC solves the Nu-parameterized two-class problem: alpha_i in
// [0, 1] with the initial point distributing nu*n/2 per class. The raw
// solution is rescaled by the solved free term r so the decision function
// has the same form as C-SVC.
func solveNuSVC(k Oracle, y []int8, nu float64, params SolverParams) *Solution {
	n := k.Len()

	sumPos := nu * float64(n) / 2
	sumNeg := nu * float64(n) / 2
	alpha := make([]float64, n)
	for i := 0; i < n; i++ {
		if y[i] == +1 {
			alpha[i] = math.Min(1.0, sumPos)
			sumPos -= alpha[i]
		} else {
			alpha[i] = math.Min(1.0, sumNeg)
			sumNeg -= alpha[i]
		}
	}

	p := make([]float64, n)
	q := newSignedQ(k, y, identityIndex(n))
	sol := newSolver(q, p, y, alpha, 1.0, 1.0, params, true).solve()

	r := sol.R
	for i := range sol.Alpha {
		sol.Alpha[i] *= float64(y[i]) / r
	}
	sol.Rho /= r
	sol.Obj /= r * r
	return sol
}

// solveOneClass estimates the support of the data: alpha_i in [0, 1/(nu*n)]
// with sum(alpha) = 1 and a single positive pseudo-label.
func solveOneClass(k Oracle, nu float64, params SolverParams) *Solution {
	n := k.Len()
	c := 1 / (nu * float64(n))

	alpha := make([]float64, n)
	nInit := int(nu * float64(n))
	for i := 0; i < nInit; i++ {
		alpha[i] = c
	}
	if nInit < n {
		alpha[nInit] = 1 - float64(nInit)*c
	}

	p := make([]float64, n)
	y := make([]int8, n)
	for i := range y {
		y[i] = 1
	}

	q := newSignedQ(k, y, identityIndex(n))
	return newSolver(q, p, y, alpha, c, c, params, false).solve()
}

// solveEpsilonSVR embeds the regression targets via paired slack variables:
// variable i pushes the estimate up, variable i+n pulls it down, both
// bounded by c, with the epsilon tube entering through the linear term.
func solveEpsilonSVR(k Oracle, y []float64, c, epsilon float64, params SolverParams) *Solution {
	n := k.Len()
	alpha2 := make([]float64, 2*n)
	p := make([]float64, 2*n)
	sign := make([]int8, 2*n)
	index := make([]int, 2*n)

	for i := 0; i < n; i++ {
		p[i] = epsilon - y[i]
		sign[i] = 1
		index[i] = i

		p[i+n] = epsilon + y[i]
		sign[i+n] = -1
		index[i+n] = i
	}

	q := newSignedQ(k, sign, index)
	sol := newSolver(q, p, sign, alpha2, c, c, params, false).solve()
	return foldPairs(sol, n)
}

// solveNuSVR treats the tube width as a solved variable: epsilon drops out
// of the linear term and is recovered from the free term as -r.
func solveNuSVR(k Oracle, y []float64, c, nu float64, params SolverParams) *Solution {
	n := k.Len()
	alpha2 := make([]float64, 2*n)
	p := make([]float64, 2*n)
	sign := make([]int8, 2*n)
	index := make([]int, 2*n)

	sum := c * nu * float64(n) / 2
	for i := 0; i < n; i++ {
		alpha2[i] = math.Min(sum, c)
		alpha2[i+n] = alpha2[i]
		sum -= alpha2[i]

		p[i] = -y[i]
		sign[i] = 1
		index[i] = i

		p[i+n] = y[i]
		sign[i+n] = -1
		index[i+n] = i
	}

	q := newSignedQ(k, sign, index)
	sol := newSolver(q, p, sign, alpha2, c, c, params, true).solve()
	return foldPairs(sol, n)
}

// foldPairs collapses the doubled regression variables into one coefficient
// per sample.
func foldPairs(sol *Solution, n int) *Solution {
	alpha := make([]float64, n)
	for i := 0; i < n; i++ {
		alpha[i] = sol.Alpha[i] - sol.Alpha[i+n]
	}
	sol.Alpha = alpha
	return sol
}
