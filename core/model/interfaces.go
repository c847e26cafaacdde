// Package model provides additional interfaces and types for machine learning models.
// This file complements the existing interfaces in estimator.go
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns a quality measure of the prediction on X against y,
	// accuracy for classifiers and R^2 for regressors.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// MarginScorer is the interface for models that expose a continuous
// decision value per sample in addition to the discrete prediction.
type MarginScorer interface {
	// DecisionFunction returns the signed distance to the decision
	// boundary for every row of X.
	DecisionFunction(X mat.Matrix) (*mat.VecDense, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Fitter
	Predictor
	Scorer
	MarginScorer
}
