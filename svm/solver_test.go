package svm

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/gosvm/kernel"
)

// Two well-separated 2D clusters, three samples each.
var (
	clusterRows = [][]float64{
		{0, 0},
		{0, 1},
		{1, 0},
		{3, 3},
		{3, 4},
		{4, 3},
	}
	clusterLabels = []int8{-1, -1, -1, +1, +1, +1}
)

func linearGram(t *testing.T, rows [][]float64) *kernel.Gram {
	t.Helper()
	m, err := kernel.Linear().Method()
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}
	return kernel.NewGram(rows, m, 0)
}

// denseOracle serves a precomputed kernel matrix; used to drive the solver
// without the Gram cache in between.
type denseOracle struct {
	k [][]float64
}

func (d *denseOracle) Len() int               { return len(d.k) }
func (d *denseOracle) Value(i, j int) float64 { return d.k[i][j] }
func (d *denseOracle) Row(i int) []float64    { return d.k[i] }

func (d *denseOracle) Diag() []float64 {
	diag := make([]float64, len(d.k))
	for i := range d.k {
		diag[i] = d.k[i][i]
	}
	return diag
}

func precomputed(rows [][]float64, spec kernel.Spec) *denseOracle {
	m, err := spec.Method()
	if err != nil {
		panic(err)
	}
	k := make([][]float64, len(rows))
	for i := range rows {
		k[i] = make([]float64, len(rows))
		for j := range rows {
			k[i][j] = m.Compute(rows[i], rows[j])
		}
	}
	return &denseOracle{k: k}
}

func decision(rows [][]float64, sol *Solution, spec kernel.Spec, x []float64) float64 {
	m, err := spec.Method()
	if err != nil {
		panic(err)
	}
	sum := 0.0
	for i, a := range sol.Alpha {
		sum += a * m.Compute(x, rows[i])
	}
	return sum - sol.Rho
}

func TestCSVCSeparable(t *testing.T) {
	g := linearGram(t, clusterRows)
	sol := solveCSVC(g, clusterLabels, 1, 1, DefaultSolverParams())

	if sol.ExitReason != ReachedThreshold {
		t.Fatalf("ExitReason = %v, want ReachedThreshold", sol.ExitReason)
	}
	if sol.Iterations == 0 {
		t.Error("expected at least one optimization step")
	}

	// The equality constraint sum_i y_i*alpha_i = 0 survives in the folded
	// coefficients as a plain sum.
	sum := 0.0
	for i, a := range sol.Alpha {
		sum += a
		if clusterLabels[i] > 0 && a < -1e-12 {
			t.Errorf("alpha[%d] = %v, want >= 0 for positive sample", i, a)
		}
		if clusterLabels[i] < 0 && a > 1e-12 {
			t.Errorf("alpha[%d] = %v, want <= 0 for negative sample", i, a)
		}
		if math.Abs(a) > 1+1e-12 {
			t.Errorf("|alpha[%d]| = %v exceeds C", i, math.Abs(a))
		}
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("sum of folded alphas = %v, want ~0", sum)
	}

	if n := sol.NSupport(); n < 2 {
		t.Errorf("NSupport() = %d, want >= 2", n)
	}

	for i, x := range clusterRows {
		dec := decision(clusterRows, sol, kernel.Linear(), x)
		if (dec > 0) != (clusterLabels[i] > 0) {
			t.Errorf("sample %d: decision %v disagrees with label %d", i, dec, clusterLabels[i])
		}
		// Separable with margin: support vectors sit near |dec| = 1.
		if math.Abs(dec) < 0.99 {
			t.Errorf("sample %d: |decision| = %v, want >= 1 up to tolerance", i, math.Abs(dec))
		}
	}
}

func TestCSVCDeterministic(t *testing.T) {
	a := solveCSVC(linearGram(t, clusterRows), clusterLabels, 1, 1, DefaultSolverParams())
	b := solveCSVC(linearGram(t, clusterRows), clusterLabels, 1, 1, DefaultSolverParams())

	if a.Iterations != b.Iterations || a.Rho != b.Rho || a.Obj != b.Obj {
		t.Fatalf("runs diverge: (%d, %v, %v) vs (%d, %v, %v)",
			a.Iterations, a.Rho, a.Obj, b.Iterations, b.Rho, b.Obj)
	}
	for i := range a.Alpha {
		if a.Alpha[i] != b.Alpha[i] {
			t.Errorf("alpha[%d] differs: %v vs %v", i, a.Alpha[i], b.Alpha[i])
		}
	}
}

func TestShrinkingMatchesExact(t *testing.T) {
	exact := solveCSVC(linearGram(t, clusterRows), clusterLabels, 1, 1, DefaultSolverParams())

	params := DefaultSolverParams()
	params.Shrinking = true
	shrunk := solveCSVC(linearGram(t, clusterRows), clusterLabels, 1, 1, params)

	if shrunk.ExitReason != ReachedThreshold {
		t.Fatalf("ExitReason = %v, want ReachedThreshold", shrunk.ExitReason)
	}
	if math.Abs(exact.Rho-shrunk.Rho) > 1e-6 {
		t.Errorf("rho diverges with shrinking: %v vs %v", exact.Rho, shrunk.Rho)
	}
	for i := range exact.Alpha {
		if math.Abs(exact.Alpha[i]-shrunk.Alpha[i]) > 1e-6 {
			t.Errorf("alpha[%d] diverges with shrinking: %v vs %v", i, exact.Alpha[i], shrunk.Alpha[i])
		}
	}
}

func TestObjectiveImprovesWithBudget(t *testing.T) {
	// Each pair step strictly decreases the dual objective, so a larger
	// iteration budget can never end at a worse point.
	budgets := []int{1, 2, 5, 50}
	prev := math.Inf(1)
	for _, b := range budgets {
		params := DefaultSolverParams()
		params.MaxIter = b
		sol := solveCSVC(linearGram(t, clusterRows), clusterLabels, 1, 1, params)
		if sol.Obj > prev+1e-12 {
			t.Errorf("budget %d: obj %v worse than smaller budget's %v", b, sol.Obj, prev)
		}
		prev = sol.Obj
	}
}

func TestIterationCapReported(t *testing.T) {
	params := DefaultSolverParams()
	params.MaxIter = 1
	sol := solveCSVC(linearGram(t, clusterRows), clusterLabels, 1, 1, params)

	if sol.ExitReason != ReachedMaxIterations {
		t.Fatalf("ExitReason = %v, want ReachedMaxIterations", sol.ExitReason)
	}
	if sol.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", sol.Iterations)
	}
}

func TestNuSVCAlphaStructure(t *testing.T) {
	g := linearGram(t, clusterRows)
	sol := solveNuSVC(g, clusterLabels, 0.5, DefaultSolverParams())

	if sol.ExitReason != ReachedThreshold {
		t.Fatalf("ExitReason = %v, want ReachedThreshold", sol.ExitReason)
	}
	sum := 0.0
	for i, a := range sol.Alpha {
		sum += a
		if clusterLabels[i] > 0 && a < -1e-9 {
			t.Errorf("alpha[%d] = %v, wrong sign", i, a)
		}
		if clusterLabels[i] < 0 && a > 1e-9 {
			t.Errorf("alpha[%d] = %v, wrong sign", i, a)
		}
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("sum of folded alphas = %v, want ~0", sum)
	}
	for i, x := range clusterRows {
		dec := decision(clusterRows, sol, kernel.Linear(), x)
		if (dec > 0) != (clusterLabels[i] > 0) {
			t.Errorf("sample %d misclassified, decision %v", i, dec)
		}
	}
}

func TestOneClassConstraint(t *testing.T) {
	rows := [][]float64{
		{0, 0}, {0.2, 0.1}, {-0.1, 0.3}, {0.1, -0.2}, {0.3, 0.2},
		{-0.2, -0.1}, {0.2, -0.3}, {-0.3, 0.1}, {0.1, 0.1}, {-0.1, -0.1},
	}
	m, err := kernel.Gaussian(0.5).Method()
	if err != nil {
		t.Fatalf("kernel: %v", err)
	}
	g := kernel.NewGram(rows, m, 0)

	nu := 0.3
	sol := solveOneClass(g, nu, DefaultSolverParams())

	upper := 1 / (nu * float64(len(rows)))
	sum := 0.0
	for i, a := range sol.Alpha {
		sum += a
		if a < -1e-12 || a > upper+1e-12 {
			t.Errorf("alpha[%d] = %v outside [0, %v]", i, a, upper)
		}
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("sum of alphas = %v, want 1", sum)
	}
}

func TestEpsilonSVRFlatTargets(t *testing.T) {
	// Constant targets inside the tube: the zero function plus bias is
	// optimal, so the solver terminates immediately with no support vectors
	// and the bias recovers the target level.
	rows := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{3, 3, 3, 3}

	k := precomputed(rows, kernel.Linear())
	sol := solveEpsilonSVR(k, y, 1, 0.5, DefaultSolverParams())

	if sol.Iterations != 0 {
		t.Errorf("Iterations = %d, want 0", sol.Iterations)
	}
	if sol.NSupport() != 0 {
		t.Errorf("NSupport() = %d, want 0", sol.NSupport())
	}
	if math.Abs(-sol.Rho-3) > 1e-12 {
		t.Errorf("recovered bias = %v, want 3", -sol.Rho)
	}
}

func TestEpsilonSVRLine(t *testing.T) {
	rows := make([][]float64, 10)
	y := make([]float64, 10)
	for i := range rows {
		rows[i] = []float64{float64(i)}
		y[i] = 2 * float64(i)
	}

	g := linearGram(t, rows)
	sol := solveEpsilonSVR(g, y, 10, 0.01, DefaultSolverParams())

	if sol.ExitReason != ReachedThreshold {
		t.Fatalf("ExitReason = %v, want ReachedThreshold", sol.ExitReason)
	}

	// Paired-variable constraint: the folded coefficients sum to zero.
	sum := 0.0
	for _, a := range sol.Alpha {
		sum += a
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("sum of folded alphas = %v, want ~0", sum)
	}

	for i, x := range rows {
		got := decision(rows, sol, kernel.Linear(), x)
		if math.Abs(got-y[i]) > 0.1 {
			t.Errorf("f(%v) = %v, want %v within 0.1", x[0], got, y[i])
		}
	}
}

func TestSolutionString(t *testing.T) {
	sol := &Solution{
		Alpha:      []float64{0.5, -0.5, 0},
		Obj:        -1.25,
		Iterations: 42,
		ExitReason: ReachedThreshold,
	}
	want := "Exited after 42 iterations with obj = -1.25 and 2 support vectors"
	if got := sol.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	sol.ExitReason = ReachedMaxIterations
	want = "Reached maximal iterations 42 with obj = -1.25 and 2 support vectors"
	if got := sol.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
