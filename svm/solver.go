package svm

import (
	"math"
)

// Variable status relative to its box bounds.
const (
	statusLowerBound = int8(0)
	statusUpperBound = int8(1)
	statusFree       = int8(2)
)

const inf = math.MaxFloat64

// solver carries the state of one SMO run over the canonical dual problem
//
//	min 0.5*alpha^T Q alpha + p^T alpha
//	s.t. y^T alpha = const, 0 <= alpha_i <= C_i
//
// following the working set selection of Fan et al., JMLR 6 (2005). The
// gradient g is kept exactly consistent with alpha after every pair step;
// gBar tracks the gradient contribution of upper-bounded variables so the
// full gradient can be reconstructed after shrinking.
type solver struct {
	n          int
	activeSize int
	y          []int8
	g          []float64
	gBar       []float64
	alpha      []float64
	status     []int8
	p          []float64
	q          *signedQ
	qd         []float64
	activeSet  []int
	cp, cn     float64
	params     SolverParams
	nu         bool
	unshrink   bool
}

func newSolver(q *signedQ, p []float64, y []int8, alpha []float64, cp, cn float64, params SolverParams, nu bool) *solver {
	n := len(p)
	s := &solver{
		n:      n,
		q:      q,
		qd:     q.diag(),
		p:      make([]float64, n),
		y:      make([]int8, n),
		alpha:  make([]float64, n),
		cp:     cp,
		cn:     cn,
		params: params.withDefaults(n),
		nu:     nu,
	}
	copy(s.p, p)
	copy(s.y, y)
	copy(s.alpha, alpha)
	return s
}

func (s *solver) boundOf(i int) float64 {
	if s.y[i] > 0 {
		return s.cp
	}
	return s.cn
}

func (s *solver) updateStatus(i int) {
	switch {
	case s.alpha[i] >= s.boundOf(i):
		s.status[i] = statusUpperBound
	case s.alpha[i] <= 0:
		s.status[i] = statusLowerBound
	default:
		s.status[i] = statusFree
	}
}

func (s *solver) isUpperBound(i int) bool { return s.status[i] == statusUpperBound }
func (s *solver) isLowerBound(i int) bool { return s.status[i] == statusLowerBound }
func (s *solver) isFree(i int) bool       { return s.status[i] == statusFree }

func (s *solver) swapIndex(i, j int) {
	s.q.swap(i, j)
	s.y[i], s.y[j] = s.y[j], s.y[i]
	s.g[i], s.g[j] = s.g[j], s.g[i]
	s.status[i], s.status[j] = s.status[j], s.status[i]
	s.alpha[i], s.alpha[j] = s.alpha[j], s.alpha[i]
	s.p[i], s.p[j] = s.p[j], s.p[i]
	s.activeSet[i], s.activeSet[j] = s.activeSet[j], s.activeSet[i]
	s.gBar[i], s.gBar[j] = s.gBar[j], s.gBar[i]
}

// reconstructGradient rebuilds the inactive entries of g from gBar and the
// free variables, undoing any error accumulated while they were frozen.
func (s *solver) reconstructGradient() {
	if s.activeSize == s.n {
		return
	}

	nFree := 0
	for j := s.activeSize; j < s.n; j++ {
		s.g[j] = s.gBar[j] + s.p[j]
	}
	for j := 0; j < s.activeSize; j++ {
		if s.isFree(j) {
			nFree++
		}
	}

	// Pick the cheaper direction to accumulate the free-variable terms.
	if nFree*s.n > 2*s.activeSize*(s.n-s.activeSize) {
		for i := s.activeSize; i < s.n; i++ {
			qi := s.q.row(i, s.activeSize)
			for j := 0; j < s.activeSize; j++ {
				if s.isFree(j) {
					s.g[i] += s.alpha[j] * qi[j]
				}
			}
		}
	} else {
		for i := 0; i < s.activeSize; i++ {
			if s.isFree(i) {
				qi := s.q.row(i, s.n)
				ai := s.alpha[i]
				for j := s.activeSize; j < s.n; j++ {
					s.g[j] += ai * qi[j]
				}
			}
		}
	}
}

// solve runs the optimization loop to one of its two terminal states.
func (s *solver) solve() *Solution {
	n := s.n

	s.status = make([]int8, n)
	for i := 0; i < n; i++ {
		s.updateStatus(i)
	}

	s.activeSet = make([]int, n)
	for i := range s.activeSet {
		s.activeSet[i] = i
	}
	s.activeSize = n

	// gradient = p + Q*alpha; gBar collects the upper-bounded columns
	s.g = make([]float64, n)
	s.gBar = make([]float64, n)
	copy(s.g, s.p)
	for i := 0; i < n; i++ {
		if !s.isLowerBound(i) {
			qi := s.q.row(i, n)
			ai := s.alpha[i]
			for j := 0; j < n; j++ {
				s.g[j] += ai * qi[j]
			}
			if s.isUpperBound(i) {
				ci := s.boundOf(i)
				for j := 0; j < n; j++ {
					s.gBar[j] += ci * qi[j]
				}
			}
		}
	}

	maxIter := s.params.MaxIter
	counter := min(n, 1000) + 1
	iter := 0
	exit := ReachedMaxIterations

	for iter < maxIter {
		if counter--; counter == 0 {
			counter = min(n, 1000)
			if s.params.Shrinking {
				s.doShrinking()
			}
		}

		i, j, ok := s.selectWorkingPair()
		if !ok {
			// Approximate optimum on the shrunk set: rebuild the full
			// gradient and re-check against all variables before declaring
			// convergence.
			s.reconstructGradient()
			s.activeSize = n
			if i, j, ok = s.selectWorkingPair(); !ok {
				exit = ReachedThreshold
				break
			}
			counter = 1 // shrink again on the next iteration
		}

		iter++
		s.optimizePair(i, j)
	}

	if exit == ReachedMaxIterations && s.activeSize < n {
		// Reconstruct so the reported objective covers all variables.
		s.reconstructGradient()
		s.activeSize = n
	}

	var rho, r float64
	if s.nu {
		rho, r = s.calculateRhoNu()
	} else {
		rho = s.calculateRho()
	}

	obj := 0.0
	for i := 0; i < n; i++ {
		obj += s.alpha[i] * (s.g[i] + s.p[i])
	}
	obj /= 2

	// Undo the active-set permutation.
	alpha := make([]float64, n)
	for i := 0; i < n; i++ {
		alpha[s.activeSet[i]] = s.alpha[i]
	}

	return &Solution{
		Alpha:      alpha,
		Rho:        rho,
		R:          r,
		Obj:        obj,
		Iterations: iter,
		ExitReason: exit,
	}
}

func (s *solver) selectWorkingPair() (int, int, bool) {
	if s.nu {
		return s.selectWorkingPairNu()
	}

	// i: maximizes -y_i*grad_i among variables that can increase
	// j: minimizes the second-order objective-gain estimate among variables
	//    that can decrease, restricted to pairs with positive violation
	gMax := -inf
	gMax2 := -inf
	gMaxIdx := -1
	gMinIdx := -1
	objDiffMin := inf

	for t := 0; t < s.activeSize; t++ {
		if s.y[t] == +1 {
			if !s.isUpperBound(t) && -s.g[t] >= gMax {
				gMax = -s.g[t]
				gMaxIdx = t
			}
		} else {
			if !s.isLowerBound(t) && s.g[t] >= gMax {
				gMax = s.g[t]
				gMaxIdx = t
			}
		}
	}

	i := gMaxIdx
	var qi []float64
	if i != -1 {
		qi = s.q.row(i, s.activeSize)
	}

	for j := 0; j < s.activeSize; j++ {
		if s.y[j] == +1 {
			if !s.isLowerBound(j) {
				gradDiff := gMax + s.g[j]
				if s.g[j] >= gMax2 {
					gMax2 = s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[i] + s.qd[j] - 2*float64(s.y[i])*qi[j]
					if quadCoef <= 0 {
						quadCoef = s.params.Tau
					}
					objDiff := -(gradDiff * gradDiff) / quadCoef
					if objDiff <= objDiffMin {
						gMinIdx = j
						objDiffMin = objDiff
					}
				}
			}
		} else {
			if !s.isUpperBound(j) {
				gradDiff := gMax - s.g[j]
				if -s.g[j] >= gMax2 {
					gMax2 = -s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[i] + s.qd[j] + 2*float64(s.y[i])*qi[j]
					if quadCoef <= 0 {
						quadCoef = s.params.Tau
					}
					objDiff := -(gradDiff * gradDiff) / quadCoef
					if objDiff <= objDiffMin {
						gMinIdx = j
						objDiffMin = objDiff
					}
				}
			}
		}
	}

	if gMax+gMax2 < s.params.Eps || gMinIdx == -1 {
		return -1, -1, false
	}
	return gMaxIdx, gMinIdx, true
}

// optimizePair applies the analytic clipped step to the selected pair and
// propagates the change through the gradient and gBar.
func (s *solver) optimizePair(i, j int) {
	qi := s.q.row(i, s.activeSize)
	qj := s.q.row(j, s.activeSize)

	ci := s.boundOf(i)
	cj := s.boundOf(j)

	oldAlphaI := s.alpha[i]
	oldAlphaJ := s.alpha[j]

	if s.y[i] != s.y[j] {
		quadCoef := s.qd[i] + s.qd[j] + 2*qi[j]
		if quadCoef <= 0 {
			quadCoef = s.params.Tau
		}
		delta := (-s.g[i] - s.g[j]) / quadCoef
		diff := s.alpha[i] - s.alpha[j]
		s.alpha[i] += delta
		s.alpha[j] += delta

		if diff > 0 {
			if s.alpha[j] < 0 {
				s.alpha[j] = 0
				s.alpha[i] = diff
			}
		} else {
			if s.alpha[i] < 0 {
				s.alpha[i] = 0
				s.alpha[j] = -diff
			}
		}
		if diff > ci-cj {
			if s.alpha[i] > ci {
				s.alpha[i] = ci
				s.alpha[j] = ci - diff
			}
		} else {
			if s.alpha[j] > cj {
				s.alpha[j] = cj
				s.alpha[i] = cj + diff
			}
		}
	} else {
		quadCoef := s.qd[i] + s.qd[j] - 2*qi[j]
		if quadCoef <= 0 {
			quadCoef = s.params.Tau
		}
		delta := (s.g[i] - s.g[j]) / quadCoef
		sum := s.alpha[i] + s.alpha[j]
		s.alpha[i] -= delta
		s.alpha[j] += delta

		if sum > ci {
			if s.alpha[i] > ci {
				s.alpha[i] = ci
				s.alpha[j] = sum - ci
			}
		} else {
			if s.alpha[j] < 0 {
				s.alpha[j] = 0
				s.alpha[i] = sum
			}
		}
		if sum > cj {
			if s.alpha[j] > cj {
				s.alpha[j] = cj
				s.alpha[i] = sum - cj
			}
		} else {
			if s.alpha[i] < 0 {
				s.alpha[i] = 0
				s.alpha[j] = sum
			}
		}
	}

	deltaI := s.alpha[i] - oldAlphaI
	deltaJ := s.alpha[j] - oldAlphaJ

	for k := 0; k < s.activeSize; k++ {
		s.g[k] += qi[k]*deltaI + qj[k]*deltaJ
	}

	// Maintain gBar when a variable enters or leaves its upper bound, so
	// inactive variables stay correctly tracked for later reactivation.
	ui := s.isUpperBound(i)
	uj := s.isUpperBound(j)
	s.updateStatus(i)
	s.updateStatus(j)

	if ui != s.isUpperBound(i) {
		qi = s.q.row(i, s.n)
		if ui {
			for k := 0; k < s.n; k++ {
				s.gBar[k] -= ci * qi[k]
			}
		} else {
			for k := 0; k < s.n; k++ {
				s.gBar[k] += ci * qi[k]
			}
		}
	}
	if uj != s.isUpperBound(j) {
		qj = s.q.row(j, s.n)
		if uj {
			for k := 0; k < s.n; k++ {
				s.gBar[k] -= cj * qj[k]
			}
		} else {
			for k := 0; k < s.n; k++ {
				s.gBar[k] += cj * qj[k]
			}
		}
	}
}

func (s *solver) beShrunk(i int, gMax1, gMax2 float64) bool {
	switch {
	case s.isUpperBound(i):
		if s.y[i] == +1 {
			return -s.g[i] > gMax1
		}
		return -s.g[i] > gMax2
	case s.isLowerBound(i):
		if s.y[i] == +1 {
			return s.g[i] > gMax2
		}
		return s.g[i] > gMax1
	default:
		return false
	}
}

// doShrinking removes variables that are provably stuck at a bound from the
// active set. When the tracked violation falls below 10x the stopping
// tolerance the full set is restored once to catch shrinking mistakes.
func (s *solver) doShrinking() {
	if s.nu {
		s.doShrinkingNu()
		return
	}

	gMax1 := -inf // max { -y_i*grad_i | i can increase }
	gMax2 := -inf // max { y_i*grad_i | i can decrease }

	for i := 0; i < s.activeSize; i++ {
		if s.y[i] == +1 {
			if !s.isUpperBound(i) && -s.g[i] >= gMax1 {
				gMax1 = -s.g[i]
			}
			if !s.isLowerBound(i) && s.g[i] >= gMax2 {
				gMax2 = s.g[i]
			}
		} else {
			if !s.isUpperBound(i) && -s.g[i] >= gMax2 {
				gMax2 = -s.g[i]
			}
			if !s.isLowerBound(i) && s.g[i] >= gMax1 {
				gMax1 = s.g[i]
			}
		}
	}

	if !s.unshrink && gMax1+gMax2 <= s.params.Eps*10 {
		s.unshrink = true
		s.reconstructGradient()
		s.activeSize = s.n
	}

	for i := 0; i < s.activeSize; i++ {
		if s.beShrunk(i, gMax1, gMax2) {
			s.activeSize--
			for s.activeSize > i {
				if !s.beShrunk(s.activeSize, gMax1, gMax2) {
					s.swapIndex(i, s.activeSize)
					break
				}
				s.activeSize--
			}
		}
	}
}

// calculateRho averages the KKT equality residual over the free support
// vectors; with no free vector it falls back to the midpoint of the bound
// vectors' feasible range.
func (s *solver) calculateRho() float64 {
	nFree := 0
	ub, lb := inf, -inf
	sumFree := 0.0

	for i := 0; i < s.activeSize; i++ {
		yg := float64(s.y[i]) * s.g[i]
		switch {
		case s.isLowerBound(i):
			if s.y[i] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.isUpperBound(i):
			if s.y[i] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			nFree++
			sumFree += yg
		}
	}

	if nFree > 0 {
		return sumFree / float64(nFree)
	}
	return (ub + lb) / 2
}
