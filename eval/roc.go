package eval

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ErrSingleClass is returned for measures that are undefined when only one class is present.
var ErrSingleClass = errors.New("only one class present")

// ROCPoint is a single operating point of a receiver operating characteristic curve.
type ROCPoint struct {
	FPR       float64 `json:"fpr"`
	TPR       float64 `json:"tpr"`
	Threshold float64 `json:"threshold"`
}

// ROC computes the receiver operating characteristic curve of a set of scores, starting at (0, 0).
// The first threshold, which no score reaches, is reported as one more than the highest score.
func ROC(labels []int, scores []float64) ([]ROCPoint, error) {
	if _, _, _, err := binaryCurve(labels, scores); err != nil {
		return nil, err
	}
	var pos, neg int
	for _, l := range labels {
		if l == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, errors.Wrapf(ErrSingleClass, "%d positive and %d negative labels", pos, neg)
	}

	y := make([]float64, len(scores))
	copy(y, scores)
	classes := make([]bool, len(labels))
	for i, l := range labels {
		classes[i] = l == 1
	}
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, thresh := stat.ROC(nil, y, classes, nil)

	points := make([]ROCPoint, len(tpr))
	for i := range tpr {
		points[i] = ROCPoint{FPR: fpr[i], TPR: tpr[i], Threshold: thresh[i]}
	}
	if len(points) > 1 && math.IsInf(points[0].Threshold, 1) {
		points[0].Threshold = points[1].Threshold + 1
	}
	return points, nil
}

// AUC is the area under a ROC curve computed with the trapezoidal rule.
func AUC(points []ROCPoint) float64 {
	if len(points) < 2 {
		return 0
	}
	x := make([]float64, len(points))
	f := make([]float64, len(points))
	for i, p := range points {
		x[i], f[i] = p.FPR, p.TPR
	}
	return integrate.Trapezoidal(x, f)
}

// ROCAUC computes the area under the ROC curve of a set of scores.
func ROCAUC(labels []int, scores []float64) (float64, error) {
	points, err := ROC(labels, scores)
	if err != nil {
		return 0, err
	}
	return AUC(points), nil
}

// DropIntermediate removes points that lie on a straight line between their neighbours. These points do
// not change the shape of the curve or its area. The first and last points are always kept.
func DropIntermediate(points []ROCPoint) []ROCPoint {
	if len(points) <= 2 {
		return append([]ROCPoint(nil), points...)
	}
	const eps = 1e-12
	out := []ROCPoint{points[0]}
	for i := 1; i < len(points)-1; i++ {
		dFPR := (points[i+1].FPR - points[i].FPR) - (points[i].FPR - points[i-1].FPR)
		dTPR := (points[i+1].TPR - points[i].TPR) - (points[i].TPR - points[i-1].TPR)
		if math.Abs(dFPR) > eps || math.Abs(dTPR) > eps {
			out = append(out, points[i])
		}
	}
	return append(out, points[len(points)-1])
}
