package eval_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hscells/tagpipe/eval"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearCurve(n int) eval.Curve {
	c := make(eval.Curve, n)
	for i := range c {
		v := float64(i) / float64(n)
		c[i] = eval.Point{Precision: v, Recall: v, Threshold: v}
	}
	return c
}

func TestDownsample2500To1000(t *testing.T) {
	in := linearCurve(2500)
	out, err := eval.Downsample(in, 1000)
	require.NoError(t, err)

	stride, err := eval.Stride(len(in), 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, stride)
	require.Len(t, out, 834)
	assert.Equal(t, in[0], out[0])
	assert.Equal(t, in[3], out[1])
	assert.Equal(t, in[2499], out[833])
}

func TestDownsampleSmallCurveIsIdentity(t *testing.T) {
	in := linearCurve(500)
	out, err := eval.Downsample(in, 1000)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("downsampled curve differs (-in +out):\n%s", diff)
	}
}

func TestDownsampleSinglePoint(t *testing.T) {
	in := eval.Curve{{Precision: 0.5, Recall: 1, Threshold: 0.2}}
	for _, m := range []int{1, 2, 1000} {
		out, err := eval.Downsample(in, m)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestDownsampleEmpty(t *testing.T) {
	out, err := eval.Downsample(nil, 1000)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	out, err = eval.Downsample(eval.Curve{}, 1)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDownsampleRejectsNonPositiveMaxPoints(t *testing.T) {
	for _, m := range []int{0, -1} {
		_, err := eval.Downsample(linearCurve(10), m)
		assert.True(t, errors.Is(err, eval.ErrInvalidMaxPoints), "max points %d", m)
	}
	// The configuration error wins over the empty curve short circuit.
	_, err := eval.Downsample(nil, 0)
	assert.True(t, errors.Is(err, eval.ErrInvalidMaxPoints))
}

func TestStrideRejectsNonPositiveMaxPoints(t *testing.T) {
	for _, m := range []int{0, -3} {
		_, err := eval.Stride(5, m)
		assert.True(t, errors.Is(err, eval.ErrInvalidMaxPoints), "max points %d", m)
	}
}

func TestDownsampleKeepsEveryStridethPoint(t *testing.T) {
	for _, m := range []int{1, 2, 3, 7, 100, 1000} {
		for _, n := range []int{1, 2, 3, 10, 99, 100, 101, 999, 1000, 1001, 2500, 3001} {
			in := linearCurve(n)
			out, err := eval.Downsample(in, m)
			require.NoError(t, err)

			stride := int(math.Ceil(float64(n) / float64(m)))
			want := int(math.Ceil(float64(n) / float64(stride)))
			require.Len(t, out, want, "n=%d m=%d", n, m)
			require.LessOrEqual(t, len(out), m, "n=%d m=%d", n, m)
			for j := range out {
				require.Equal(t, in[j*stride], out[j], "n=%d m=%d j=%d", n, m, j)
			}
		}
	}
}

func TestDownsampleDoesNotMutateInput(t *testing.T) {
	in := linearCurve(50)
	before := append(eval.Curve(nil), in...)
	out, err := eval.Downsample(in, 10)
	require.NoError(t, err)
	out[0].Precision = 42
	assert.Equal(t, before, in)
}

func TestDownsampleIsNotIdempotentAcrossSizes(t *testing.T) {
	in := linearCurve(2500)

	once, err := eval.Downsample(in, 1000)
	require.NoError(t, err)
	again, err := eval.Downsample(once, 1000)
	require.NoError(t, err)
	assert.Equal(t, once, again, "a curve already below max points is left alone")

	direct, err := eval.Downsample(in, 500)
	require.NoError(t, err)
	chained, err := eval.Downsample(once, 500)
	require.NoError(t, err)
	assert.Len(t, direct, 500)
	assert.Len(t, chained, 417)
	assert.Equal(t, in[6], chained[1])
}

func TestNewDownsampler(t *testing.T) {
	assert.Equal(t, eval.DefaultMaxPoints, eval.NewDownsampler().MaxPoints)

	d := eval.NewDownsampler(eval.DownsampleMaxPoints(3))
	out, err := d.Downsample(linearCurve(10))
	require.NoError(t, err)
	assert.Len(t, out, 3)

	_, err = eval.NewDownsampler(eval.DownsampleMaxPoints(0)).Downsample(linearCurve(10))
	assert.True(t, errors.Is(err, eval.ErrInvalidMaxPoints))
}

func TestZipDropsTrailingPoint(t *testing.T) {
	c, err := eval.Zip([]float64{0.5, 0.75, 1}, []float64{1, 0.5, 0}, []float64{0.1, 0.6})
	require.NoError(t, err)
	assert.Equal(t, eval.Curve{
		{Precision: 0.5, Recall: 1, Threshold: 0.1},
		{Precision: 0.75, Recall: 0.5, Threshold: 0.6},
	}, c)
}

func TestZipEqualLengths(t *testing.T) {
	c, err := eval.Zip([]float64{0.5}, []float64{1}, []float64{0.3})
	require.NoError(t, err)
	assert.Equal(t, eval.Curve{{Precision: 0.5, Recall: 1, Threshold: 0.3}}, c)
}

func TestZipRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name                          string
		precision, recall, thresholds []float64
	}{
		{"recall length", []float64{1, 1}, []float64{0}, []float64{0.5}},
		{"too few thresholds", []float64{1, 1, 1}, []float64{0, 0, 0}, []float64{0.5}},
		{"too many thresholds", []float64{1}, []float64{0}, []float64{0.5, 0.6}},
		{"nan precision", []float64{math.NaN(), 1}, []float64{0, 0}, []float64{0.5}},
		{"infinite threshold", []float64{1, 1}, []float64{0, 0}, []float64{math.Inf(1)}},
		{"recall above one", []float64{1, 1}, []float64{1.5, 0}, []float64{0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval.Zip(tt.precision, tt.recall, tt.thresholds)
			assert.True(t, errors.Is(err, eval.ErrMalformedCurve), "got %v", err)
		})
	}
}
