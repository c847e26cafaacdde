package svm

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/core/model"
	"github.com/YuminosukeSato/gosvm/kernel"
	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

func clusterData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		3, 3,
		3, 4,
		4, 3,
	})
	y := mat.NewDense(6, 1, []float64{-1, -1, -1, 1, 1, 1})
	return X, y
}

func TestSVCFitPredict(t *testing.T) {
	X, y := clusterData()

	clf := NewSVC().WithC(1).WithKernel(kernel.Linear())
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if !clf.IsFitted() {
		t.Error("IsFitted() = false after Fit")
	}
	if clf.NSupport() == 0 {
		t.Error("no support vectors after Fit")
	}
	if !strings.HasPrefix(clf.Summary(), "Exited after") {
		t.Errorf("Summary() = %q, want threshold exit", clf.Summary())
	}
	if clf.Weights == nil {
		t.Error("linear kernel should produce a collapsed weight vector")
	}

	score, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 1 {
		t.Errorf("Score = %v, want 1", score)
	}

	Xtest := mat.NewDense(2, 2, []float64{
		0.5, 0.5,
		3.5, 3.5,
	})
	pred, err := clf.Predict(Xtest)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pred.At(0, 0) != -1 || pred.At(1, 0) != 1 {
		t.Errorf("Predict = (%v, %v), want (-1, 1)", pred.At(0, 0), pred.At(1, 0))
	}

	dec, err := clf.DecisionFunction(X)
	if err != nil {
		t.Fatalf("DecisionFunction: %v", err)
	}
	for i := 0; i < dec.Len(); i++ {
		if (dec.AtVec(i) > 0) != (y.At(i, 0) > 0) {
			t.Errorf("sample %d: decision %v disagrees with label %v", i, dec.AtVec(i), y.At(i, 0))
		}
	}
}

func TestSVCClassWeights(t *testing.T) {
	X, y := clusterData()

	clf := NewSVC().WithPosNegC(10, 0.1).WithKernel(kernel.Linear())
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// Negative coefficients are bounded by CNeg, positive ones by CPos.
	for _, a := range clf.DualCoef {
		if a < 0 && math.Abs(a) > 0.1+1e-9 {
			t.Errorf("negative-class coefficient %v exceeds CNeg", a)
		}
		if a > 0 && a > 10+1e-9 {
			t.Errorf("positive-class coefficient %v exceeds CPos", a)
		}
	}
}

func TestSVCValidation(t *testing.T) {
	X, y := clusterData()

	var vErr *errors.ValidationError
	if err := NewSVC().WithC(0).Fit(X, y); !errors.As(err, &vErr) {
		t.Errorf("Fit with C=0: error = %v, want ValidationError", err)
	}
	if err := NewSVC().WithKernel(kernel.Gaussian(-2)).Fit(X, y); !errors.As(err, &vErr) {
		t.Errorf("Fit with negative gamma: error = %v, want ValidationError", err)
	}

	yBad := mat.NewDense(6, 2, nil)
	var valErr *errors.ValueError
	if err := NewSVC().Fit(X, yBad); !errors.As(err, &valErr) {
		t.Errorf("Fit with two-column y: error = %v, want ValueError", err)
	}

	yShort := mat.NewDense(3, 1, []float64{1, -1, 1})
	var dimErr *errors.DimensionError
	if err := NewSVC().Fit(X, yShort); !errors.As(err, &dimErr) {
		t.Errorf("Fit with short y: error = %v, want DimensionError", err)
	}

	XNaN := mat.NewDense(6, 2, nil)
	XNaN.Copy(X)
	XNaN.Set(2, 1, math.NaN())
	var numErr *errors.NumericalInstabilityError
	if err := NewSVC().Fit(XNaN, y); !errors.As(err, &numErr) {
		t.Errorf("Fit with NaN feature: error = %v, want NumericalInstabilityError", err)
	}
}

func TestSVCNotFitted(t *testing.T) {
	X, _ := clusterData()

	var nfErr *errors.NotFittedError
	if _, err := NewSVC().Predict(X); !errors.As(err, &nfErr) {
		t.Errorf("Predict before Fit: error = %v, want NotFittedError", err)
	}
	if _, err := NewSVC().DecisionFunction(X); !errors.As(err, &nfErr) {
		t.Errorf("DecisionFunction before Fit: error = %v, want NotFittedError", err)
	}
}

func TestSVCFeatureMismatch(t *testing.T) {
	X, y := clusterData()
	clf := NewSVC().WithKernel(kernel.Linear())
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	var dimErr *errors.DimensionError
	if _, err := clf.Predict(mat.NewDense(1, 3, []float64{1, 2, 3})); !errors.As(err, &dimErr) {
		t.Errorf("Predict with 3 features: error = %v, want DimensionError", err)
	}
}

func TestNuSVCFitPredict(t *testing.T) {
	X, y := clusterData()

	clf := NewNuSVC().WithNu(0.5).WithKernel(kernel.Linear())
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	score, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if score != 1 {
		t.Errorf("Score = %v, want 1", score)
	}

	// Nu lower-bounds the support-vector fraction.
	if got := clf.NSupport(); got < 3 {
		t.Errorf("NSupport() = %d, want >= nu*n = 3", got)
	}
}

func TestNuSVCInfeasible(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		0.5, 0.5,
		5, 5,
	})
	y := mat.NewDense(6, 1, []float64{-1, -1, -1, -1, -1, 1})

	var vErr *errors.ValidationError
	if err := NewNuSVC().WithNu(0.9).Fit(X, y); !errors.As(err, &vErr) {
		t.Errorf("Fit with infeasible nu: error = %v, want ValidationError", err)
	}
}

func TestNuSVCRange(t *testing.T) {
	X, y := clusterData()
	var vErr *errors.ValidationError
	for _, nu := range []float64{0, -0.5, 1.5} {
		if err := NewNuSVC().WithNu(nu).Fit(X, y); !errors.As(err, &vErr) {
			t.Errorf("Fit with nu=%v: error = %v, want ValidationError", nu, err)
		}
	}
}

func TestSVCGobRoundTrip(t *testing.T) {
	X, y := clusterData()

	clf := NewSVC().WithC(1).WithKernel(kernel.Gaussian(0.5))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	want, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	var buf bytes.Buffer
	if err := model.SaveModelToWriter(clf, &buf); err != nil {
		t.Fatalf("SaveModelToWriter: %v", err)
	}

	restored := NewSVC()
	if err := model.LoadModelFromReader(restored, &buf); err != nil {
		t.Fatalf("LoadModelFromReader: %v", err)
	}

	if !restored.IsFitted() {
		t.Fatal("restored model not fitted")
	}
	if restored.NSupport() != clf.NSupport() {
		t.Errorf("NSupport: restored %d, original %d", restored.NSupport(), clf.NSupport())
	}
	if restored.Kernel != clf.Kernel {
		t.Errorf("Kernel: restored %v, original %v", restored.Kernel, clf.Kernel)
	}

	got, err := restored.Predict(X)
	if err != nil {
		t.Fatalf("Predict after restore: %v", err)
	}
	for i := 0; i < 6; i++ {
		if got.At(i, 0) != want.At(i, 0) {
			t.Errorf("sample %d: restored prediction %v, original %v", i, got.At(i, 0), want.At(i, 0))
		}
	}
}

func TestOneClassSVM(t *testing.T) {
	// 20 points around the origin.
	rows := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		angle := 2 * math.Pi * float64(i) / 20
		r := 0.5 + 0.1*float64(i%3)
		rows = append(rows, r*math.Cos(angle), r*math.Sin(angle))
	}
	X := mat.NewDense(20, 2, rows)

	det := NewOneClassSVM().WithNu(0.2).WithKernel(kernel.Gaussian(0.5))
	if err := det.Fit(X); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// At least nu*n support vectors: each coefficient is capped at 1/(nu*n)
	// and they sum to one.
	if got := det.NSupport(); got < 4 {
		t.Errorf("NSupport() = %d, want >= 4", got)
	}

	pred, err := det.Predict(X)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	outliers := 0
	for i := 0; i < 20; i++ {
		if pred.At(i, 0) < 0 {
			outliers++
		}
	}
	// Roughly a nu fraction of the training set may fall outside.
	if outliers > 6 {
		t.Errorf("%d training points flagged as outliers, want <= 6", outliers)
	}

	far := mat.NewDense(1, 2, []float64{10, 10})
	predFar, err := det.Predict(far)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if predFar.At(0, 0) != -1 {
		t.Errorf("far point predicted %v, want -1", predFar.At(0, 0))
	}
}

func TestOneClassValidation(t *testing.T) {
	X, _ := clusterData()
	var vErr *errors.ValidationError
	if err := NewOneClassSVM().WithNu(0).Fit(X); !errors.As(err, &vErr) {
		t.Errorf("Fit with nu=0: error = %v, want ValidationError", err)
	}

	var nfErr *errors.NotFittedError
	if _, err := NewOneClassSVM().Predict(X); !errors.As(err, &nfErr) {
		t.Errorf("Predict before Fit: error = %v, want NotFittedError", err)
	}
}
