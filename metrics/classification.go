package metrics

import (
	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Accuracy は正解率（Accuracy）を計算する
// ラベルは符号で比較される（正 = 陽性クラス、それ以外 = 陰性クラス）
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if (yTrue.AtVec(i) > 0) == (yPred.AtVec(i) > 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionCounts は二値分類の混同行列の要素を保持する
type ConfusionCounts struct {
	TruePositive  int
	TrueNegative  int
	FalsePositive int
	FalseNegative int
}

// Confusion は符号ラベルの二値分類に対する混同行列を計算する
func Confusion(yTrue, yPred *mat.VecDense) (ConfusionCounts, error) {
	var c ConfusionCounts
	n := yTrue.Len()
	if n == 0 {
		return c, errors.NewValueError("Confusion", "empty vector")
	}
	if yPred.Len() != n {
		return c, errors.NewDimensionError("Confusion", n, yPred.Len(), 0)
	}

	for i := 0; i < n; i++ {
		truth := yTrue.AtVec(i) > 0
		pred := yPred.AtVec(i) > 0
		switch {
		case truth && pred:
			c.TruePositive++
		case !truth && !pred:
			c.TrueNegative++
		case !truth && pred:
			c.FalsePositive++
		default:
			c.FalseNegative++
		}
	}
	return c, nil
}

// Precision は適合率を計算する
// 陽性の予測が一つもない場合は UndefinedMetricWarning を発行して 0 を返す
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := Confusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	denom := c.TruePositive + c.FalsePositive
	if denom == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no positive predictions", 0))
		return 0, nil
	}
	return float64(c.TruePositive) / float64(denom), nil
}

// Recall は再現率を計算する
// 陽性のサンプルが一つもない場合は UndefinedMetricWarning を発行して 0 を返す
func Recall(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := Confusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	denom := c.TruePositive + c.FalseNegative
	if denom == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no positive samples", 0))
		return 0, nil
	}
	return float64(c.TruePositive) / float64(denom), nil
}

// F1Score は適合率と再現率の調和平均を計算する
func F1Score(yTrue, yPred *mat.VecDense) (float64, error) {
	p, err := Precision(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	r, err := Recall(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	if p+r == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("f1_score", "precision and recall are both zero", 0))
		return 0, nil
	}
	return 2 * p * r / (p + r), nil
}
