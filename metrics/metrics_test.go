package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hscells/tagpipe/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := metrics.NewRecorder()
	r.Stage("evaluate", 1500*time.Millisecond)
	r.AddRows("evaluate", "test", 10)
	r.AddRows("evaluate", "test", 5)
	r.Score("test", "avg_prec", 0.75)

	assert.Equal(t, 1.5, testutil.ToFloat64(r.StageDuration.WithLabelValues("evaluate")))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.Rows.WithLabelValues("evaluate", "test")))
	assert.Equal(t, 0.75, testutil.ToFloat64(r.Scores.WithLabelValues("test", "avg_prec")))

	path := filepath.Join(t.TempDir(), "metrics", "tagpipe.prom")
	require.NoError(t, r.WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `tagpipe_rows_total{split="test",stage="evaluate"} 15`)
	assert.Contains(t, string(b), `tagpipe_stage_duration_seconds{stage="evaluate"} 1.5`)
}
