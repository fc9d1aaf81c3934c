package eval

import (
	"math"

	"github.com/pkg/errors"
)

// DefaultMaxPoints is the number of points a precision-recall curve is reduced to before it is written out.
const DefaultMaxPoints = 1000

var (
	// ErrInvalidMaxPoints is returned when a curve is downsampled to a non-positive number of points.
	ErrInvalidMaxPoints = errors.New("max points must be positive")
	// ErrMalformedCurve is returned when the precision, recall and threshold sequences cannot be aligned.
	ErrMalformedCurve = errors.New("malformed curve")
)

// Point is a single operating point of a precision-recall curve.
type Point struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Threshold float64 `json:"threshold"`
}

// Curve is an ordered sequence of points, one per distinct decision threshold.
type Curve []Point

// Zip aligns point k with threshold k. Curve computations commonly append a final point (precision 1,
// recall 0) which has no threshold; that point is dropped. Any other mismatch in length, or a value
// that is not a finite number, is reported as ErrMalformedCurve.
func Zip(precision, recall, thresholds []float64) (Curve, error) {
	if len(precision) != len(recall) {
		return nil, errors.Wrapf(ErrMalformedCurve, "%d precision values but %d recall values", len(precision), len(recall))
	}
	if d := len(precision) - len(thresholds); d != 0 && d != 1 {
		return nil, errors.Wrapf(ErrMalformedCurve, "%d points but %d thresholds", len(precision), len(thresholds))
	}

	c := make(Curve, len(thresholds))
	for k, t := range thresholds {
		p, r := precision[k], recall[k]
		if !isRate(p) || !isRate(r) || !isFinite(t) {
			return nil, errors.Wrapf(ErrMalformedCurve, "point %d is (%v, %v, %v)", k, p, r, t)
		}
		c[k] = Point{Precision: p, Recall: r, Threshold: t}
	}
	return c, nil
}

// Stride is the skip interval used to reduce n points to at most maxPoints.
func Stride(n, maxPoints int) (int, error) {
	if maxPoints <= 0 {
		return 0, errors.Wrapf(ErrInvalidMaxPoints, "got %d", maxPoints)
	}
	if n <= maxPoints {
		return 1, nil
	}
	return (n + maxPoints - 1) / maxPoints, nil
}

// Downsample keeps every Stride(len(points), maxPoints)-th point starting at index 0. The result never has
// more than maxPoints points and is the input itself (as a copy) when the curve is already small enough.
// Points are selected by position only; nothing is interpolated or reordered.
//
// Downsampling is not idempotent: reducing 2500 points to 1000 yields 834 points, and reducing those 834
// again is a no-op only because 834 <= 1000.
func Downsample(points Curve, maxPoints int) (Curve, error) {
	n := len(points)
	stride, err := Stride(n, maxPoints)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return Curve{}, nil
	}

	out := make(Curve, 0, (n+stride-1)/stride)
	for i := 0; i < n; i += stride {
		out = append(out, points[i])
	}
	return out, nil
}

// Downsampler reduces curves to a configured number of points.
type Downsampler struct {
	MaxPoints int
}

// DownsampleMaxPoints sets the maximum number of points a downsampler keeps.
func DownsampleMaxPoints(maxPoints int) func(d *Downsampler) {
	return func(d *Downsampler) {
		d.MaxPoints = maxPoints
	}
}

// NewDownsampler creates a downsampler that keeps DefaultMaxPoints points unless configured otherwise.
func NewDownsampler(options ...func(d *Downsampler)) Downsampler {
	d := Downsampler{MaxPoints: DefaultMaxPoints}
	for _, option := range options {
		option(&d)
	}
	return d
}

// Downsample reduces points to at most d.MaxPoints points.
func (d Downsampler) Downsample(points Curve) (Curve, error) {
	return Downsample(points, d.MaxPoints)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isRate(v float64) bool {
	return isFinite(v) && v >= 0 && v <= 1
}
