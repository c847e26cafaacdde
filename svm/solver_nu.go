package svm

import "math"

// Nu variants of working set selection, shrinking and rho recovery. The Nu
// formulations carry a second equality constraint sum(alpha) = const, so the
// selected pair must share its label class and the bias splits into separate
// positive/negative parts: rho = (r1-r2)/2 and the free term r = (r1+r2)/2.

func (s *solver) selectWorkingPairNu() (int, int, bool) {
	gMaxP := -inf
	gMaxP2 := -inf
	gMaxPIdx := -1

	gMaxN := -inf
	gMaxN2 := -inf
	gMaxNIdx := -1

	gMinIdx := -1
	objDiffMin := inf

	for t := 0; t < s.activeSize; t++ {
		if s.y[t] == +1 {
			if !s.isUpperBound(t) && -s.g[t] >= gMaxP {
				gMaxP = -s.g[t]
				gMaxPIdx = t
			}
		} else {
			if !s.isLowerBound(t) && s.g[t] >= gMaxN {
				gMaxN = s.g[t]
				gMaxNIdx = t
			}
		}
	}

	ip := gMaxPIdx
	in := gMaxNIdx
	var qip, qin []float64
	if ip != -1 {
		qip = s.q.row(ip, s.activeSize)
	}
	if in != -1 {
		qin = s.q.row(in, s.activeSize)
	}

	for j := 0; j < s.activeSize; j++ {
		if s.y[j] == +1 {
			if !s.isLowerBound(j) {
				gradDiff := gMaxP + s.g[j]
				if s.g[j] >= gMaxP2 {
					gMaxP2 = s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[ip] + s.qd[j] - 2*qip[j]
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
				gradDiff := gMaxN - s.g[j]
				if -s.g[j] >= gMaxN2 {
					gMaxN2 = -s.g[j]
				}
				if gradDiff > 0 {
					quadCoef := s.qd[in] + s.qd[j] - 2*qin[j]
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

	if math.Max(gMaxP+gMaxP2, gMaxN+gMaxN2) < s.params.Eps || gMinIdx == -1 {
		return -1, -1, false
	}

	if s.y[gMinIdx] == +1 {
		return gMaxPIdx, gMinIdx, true
	}
	return gMaxNIdx, gMinIdx, true
}

func (s *solver) beShrunkNu(i int, gMax1, gMax2, gMax3, gMax4 float64) bool {
	switch {
	case s.isUpperBound(i):
		if s.y[i] == +1 {
			return -s.g[i] > gMax1
		}
		return -s.g[i] > gMax4
	case s.isLowerBound(i):
		if s.y[i] == +1 {
			return s.g[i] > gMax2
		}
		return s.g[i] > gMax3
	default:
		return false
	}
}

func (s *solver) doShrinkingNu() {
	gMax1 := -inf // max { -y_i*grad_i | y_i = +1, i can increase }
	gMax2 := -inf // max { y_i*grad_i | y_i = +1, i can decrease }
	gMax3 := -inf // max { -y_i*grad_i | y_i = -1, i can increase }
	gMax4 := -inf // max { y_i*grad_i | y_i = -1, i can decrease }

	for i := 0; i < s.activeSize; i++ {
		if !s.isUpperBound(i) {
			if s.y[i] == +1 {
				if -s.g[i] > gMax1 {
					gMax1 = -s.g[i]
				}
			} else if -s.g[i] > gMax4 {
				gMax4 = -s.g[i]
			}
		}
		if !s.isLowerBound(i) {
			if s.y[i] == +1 {
				if s.g[i] > gMax2 {
					gMax2 = s.g[i]
				}
			} else if s.g[i] > gMax3 {
				gMax3 = s.g[i]
			}
		}
	}

	if !s.unshrink && math.Max(gMax1+gMax2, gMax3+gMax4) <= s.params.Eps*10 {
		s.unshrink = true
		s.reconstructGradient()
		s.activeSize = s.n
	}

	for i := 0; i < s.activeSize; i++ {
		if s.beShrunkNu(i, gMax1, gMax2, gMax3, gMax4) {
			s.activeSize--
			for s.activeSize > i {
				if !s.beShrunkNu(s.activeSize, gMax1, gMax2, gMax3, gMax4) {
					s.swapIndex(i, s.activeSize)
					break
				}
				s.activeSize--
			}
		}
	}
}

func (s *solver) calculateRhoNu() (rho, r float64) {
	nFree1, nFree2 := 0, 0
	ub1, ub2 := inf, inf
	lb1, lb2 := -inf, -inf
	sumFree1, sumFree2 := 0.0, 0.0

	for i := 0; i < s.activeSize; i++ {
		if s.y[i] == +1 {
			switch {
			case s.isLowerBound(i):
				ub1 = math.Min(ub1, s.g[i])
			case s.isUpperBound(i):
				lb1 = math.Max(lb1, s.g[i])
			default:
				nFree1++
				sumFree1 += s.g[i]
			}
		} else {
			switch {
			case s.isLowerBound(i):
				ub2 = math.Min(ub2, s.g[i])
			case s.isUpperBound(i):
				lb2 = math.Max(lb2, s.g[i])
			default:
				nFree2++
				sumFree2 += s.g[i]
			}
		}
	}

	var r1, r2 float64
	if nFree1 > 0 {
		r1 = sumFree1 / float64(nFree1)
	} else {
		r1 = (ub1 + lb1) / 2
	}
	if nFree2 > 0 {
		r2 = sumFree2 / float64(nFree2)
	} else {
		r2 = (ub2 + lb2) / 2
	}

	return (r1 - r2) / 2, (r1 + r2) / 2
}
