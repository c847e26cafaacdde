package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

func vec(values ...float64) *mat.VecDense {
	return mat.NewVecDense(len(values), values)
}

func TestMSE(t *testing.T) {
	got, err := MSE(vec(1, 2, 3), vec(1, 3, 5))
	if err != nil {
		t.Fatalf("MSE: %v", err)
	}
	// (0 + 1 + 4) / 3
	if want := 5.0 / 3.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("MSE = %v, want %v", got, want)
	}

	if _, err := MSE(vec(), vec()); err == nil {
		t.Error("MSE on empty vectors should fail")
	}
	if _, err := MSE(vec(1, 2), vec(1)); err == nil {
		t.Error("MSE with mismatched lengths should fail")
	}
}

func TestRMSEAndMAE(t *testing.T) {
	yTrue := vec(0, 0, 0, 0)
	yPred := vec(2, -2, 2, -2)

	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE: %v", err)
	}
	if math.Abs(rmse-2) > 1e-12 {
		t.Errorf("RMSE = %v, want 2", rmse)
	}

	mae, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAE: %v", err)
	}
	if math.Abs(mae-2) > 1e-12 {
		t.Errorf("MAE = %v, want 2", mae)
	}
}

func TestR2Score(t *testing.T) {
	perfect, err := R2Score(vec(1, 2, 3, 4), vec(1, 2, 3, 4))
	if err != nil {
		t.Fatalf("R2Score: %v", err)
	}
	if math.Abs(perfect-1) > 1e-12 {
		t.Errorf("R2Score for perfect fit = %v, want 1", perfect)
	}

	// Predicting the mean gives exactly zero.
	baseline, err := R2Score(vec(1, 2, 3, 4), vec(2.5, 2.5, 2.5, 2.5))
	if err != nil {
		t.Fatalf("R2Score: %v", err)
	}
	if math.Abs(baseline) > 1e-12 {
		t.Errorf("R2Score for mean predictor = %v, want 0", baseline)
	}

	if _, err := R2Score(vec(3, 3, 3), vec(1, 2, 3)); err == nil {
		t.Error("R2Score with constant yTrue should fail")
	}
}

func TestAccuracy(t *testing.T) {
	got, err := Accuracy(vec(1, 1, -1, -1), vec(1, -1, -1, -1))
	if err != nil {
		t.Fatalf("Accuracy: %v", err)
	}
	if math.Abs(got-0.75) > 1e-12 {
		t.Errorf("Accuracy = %v, want 0.75", got)
	}

	var dimErr *errors.DimensionError
	if _, err := Accuracy(vec(1, 1), vec(1)); !errors.As(err, &dimErr) {
		t.Errorf("Accuracy with mismatched lengths: error = %v, want DimensionError", err)
	}
}

func TestConfusion(t *testing.T) {
	c, err := Confusion(vec(1, 1, 1, -1, -1, -1), vec(1, 1, -1, -1, 1, -1))
	if err != nil {
		t.Fatalf("Confusion: %v", err)
	}
	want := ConfusionCounts{TruePositive: 2, TrueNegative: 2, FalsePositive: 1, FalseNegative: 1}
	if c != want {
		t.Errorf("Confusion = %+v, want %+v", c, want)
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	yTrue := vec(1, 1, 1, -1, -1, -1)
	yPred := vec(1, 1, -1, -1, 1, -1)

	p, err := Precision(yTrue, yPred)
	if err != nil {
		t.Fatalf("Precision: %v", err)
	}
	if math.Abs(p-2.0/3.0) > 1e-12 {
		t.Errorf("Precision = %v, want 2/3", p)
	}

	r, err := Recall(yTrue, yPred)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if math.Abs(r-2.0/3.0) > 1e-12 {
		t.Errorf("Recall = %v, want 2/3", r)
	}

	f1, err := F1Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("F1Score: %v", err)
	}
	if math.Abs(f1-2.0/3.0) > 1e-12 {
		t.Errorf("F1Score = %v, want 2/3", f1)
	}
}

func TestUndefinedMetrics(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(nil)

	// No positive predictions: precision is undefined and reported as 0.
	p, err := Precision(vec(1, -1), vec(-1, -1))
	if err != nil {
		t.Fatalf("Precision: %v", err)
	}
	if p != 0 {
		t.Errorf("Precision = %v, want 0", p)
	}
	var undef *errors.UndefinedMetricWarning
	if !errors.As(warned, &undef) {
		t.Errorf("warning = %v, want UndefinedMetricWarning", warned)
	}

	// No positive samples: recall is undefined.
	warned = nil
	r, err := Recall(vec(-1, -1), vec(1, -1))
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if r != 0 {
		t.Errorf("Recall = %v, want 0", r)
	}
	if !errors.As(warned, &undef) {
		t.Errorf("warning = %v, want UndefinedMetricWarning", warned)
	}
}
