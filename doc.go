// Package gosvm provides support vector machines for Go, trained with the
// SMO (sequential minimal optimization) algorithm over a cached kernel
// matrix.
//
// The library covers two-class classification (SVC, NuSVC), regression
// (SVR, NuSVR) and unsupervised outlier detection (OneClassSVM), each with
// a scikit-learn-like Fit/Predict/Score API on gonum matrices.
//
// # Installation
//
//	go get github.com/YuminosukeSato/gosvm
//
// # Quick Start
//
// Training a two-class classifier:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gosvm/kernel"
//	    "github.com/YuminosukeSato/gosvm/svm"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 2, []float64{
//	        0, 0,
//	        0, 1,
//	        2, 2,
//	        2, 3,
//	    })
//	    y := mat.NewDense(4, 1, []float64{-1, -1, 1, 1})
//
//	    clf := svm.NewSVC().WithC(1).WithKernel(kernel.Linear())
//	    if err := clf.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := clf.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Predictions:", pred)
//	}
//
// # Packages
//
//   - svm: the SMO solver and the five estimators
//   - kernel: kernel functions and the cached Gram matrix oracle
//   - metrics: evaluation metrics (accuracy, precision, recall, MSE, R²)
//   - preprocessing: feature scaling utilities
//   - core/model: shared estimator interfaces, state and gob persistence
//   - core/parallel: parallel processing utilities
//
// # Performance
//
// Kernel rows are computed lazily, cached with LRU eviction and filled in
// parallel for large datasets, so training scales to problems whose full
// Gram matrix would not fit in memory.
//
// # License
//
// gosvm is released under the MIT License.
package gosvm
