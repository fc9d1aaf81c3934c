package tagpipe_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hscells/tagpipe"
	"github.com/hscells/tagpipe/eval"
	"github.com/hscells/tagpipe/ledger"
	"github.com/hscells/tagpipe/output"
	"github.com/hscells/tagpipe/params"
	"github.com/hscells/tagpipe/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDump writes a posts dump where every other question is about pandas and tagged python.
func writeDump(t *testing.T, dir string, n int) string {
	t.Helper()
	lines := []string{`<?xml version="1.0" encoding="utf-8"?>`, `<posts>`}
	for i := 1; i <= n; i++ {
		if i%2 == 0 {
			lines = append(lines, fmt.Sprintf(`  <row Id="%d" Tags="&lt;python&gt;&lt;pandas&gt;" Title="pandas dataframe %d" Body="&lt;p&gt;numpy merge groupby&lt;/p&gt;" />`, i, i))
		} else {
			lines = append(lines, fmt.Sprintf(`  <row Id="%d" Tags="&lt;go&gt;" Title="goroutine channel %d" Body="&lt;p&gt;golang select deadlock&lt;/p&gt;" />`, i, i))
		}
	}
	lines = append(lines, `</posts>`)
	path := filepath.Join(dir, "Posts.xml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644))
	return path
}

func collect(c chan pipeline.Result) []pipeline.Result {
	var results []pipeline.Result
	for r := range c {
		results = append(results, r)
	}
	return results
}

func TestPipeline(t *testing.T) {
	dir := t.TempDir()
	posts := writeDump(t, dir, 120)

	p := params.Default()
	p.Prepare.Split = 0.3
	p.Featurize.MaxFeatures = 20
	p.Train.NEstimators = 5
	p.Evaluate.MaxPoints = 5
	p.Evaluate.ImportanceTop = 10

	ledgerPath := filepath.Join(dir, "runs.db")
	metricsPath := filepath.Join(dir, "textfile", "tagpipe.prom")
	pl := tagpipe.NewPipeline(posts, filepath.Join(dir, "work"),
		tagpipe.PipelineParams(p),
		tagpipe.PipelineLedger(ledgerPath),
		tagpipe.PipelineMetrics(metricsPath),
		tagpipe.PipelineTokenCache(filepath.Join(dir, "cache")),
	)

	c := make(chan pipeline.Result)
	go pl.Execute(context.Background(), c)
	results := collect(c)
	for _, r := range results {
		require.NoError(t, r.Error)
	}
	require.NotEmpty(t, results)
	assert.Equal(t, pipeline.Done, results[len(results)-1].Type)

	var stages []pipeline.Stage
	evaluations := make(map[string]map[string]float64)
	for _, r := range results {
		switch r.Type {
		case pipeline.StageDone:
			stages = append(stages, r.Stage)
		case pipeline.Evaluation:
			evaluations[r.Split] = r.Metrics
		}
	}
	assert.Equal(t, pipeline.Stages, stages)
	require.Contains(t, evaluations, "train")
	require.Contains(t, evaluations, "test")
	assert.Contains(t, evaluations["train"], "avg_prec")
	assert.Greater(t, evaluations["train"]["avg_prec"], 0.9)

	for _, split := range []string{"train", "test"} {
		b, err := os.ReadFile(output.PRCPath(pl.EvalDir(), split))
		require.NoError(t, err)
		var doc output.PRCDocument
		require.NoError(t, json.Unmarshal(b, &doc))
		assert.NotEmpty(t, doc.PRC)
		assert.LessOrEqual(t, len(doc.PRC), 5)
		assert.FileExists(t, output.ConfusionPath(pl.EvalDir(), split))
	}
	assert.FileExists(t, output.SummaryPath(pl.EvalDir()))
	assert.FileExists(t, output.ImportancePath(pl.EvalDir()))
	assert.FileExists(t, output.ReportPath(pl.EvalDir()))
	assert.FileExists(t, pl.ModelPath())
	assert.FileExists(t, metricsPath)

	l, err := ledger.Open(ledgerPath)
	require.NoError(t, err)
	defer l.Close()
	runs, err := l.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 5, runs[0].MaxPoints)
	assert.Len(t, runs[0].Splits, 2)
}

func TestPipelineStopsOnError(t *testing.T) {
	dir := t.TempDir()
	pl := tagpipe.NewPipeline(filepath.Join(dir, "Posts.xml"), dir, tagpipe.PipelineStages(pipeline.Evaluate))

	c := make(chan pipeline.Result)
	go pl.Execute(context.Background(), c)
	results := collect(c)
	require.Len(t, results, 1)
	assert.Equal(t, pipeline.Error, results[0].Type)
	assert.Equal(t, pipeline.Evaluate, results[0].Stage)
	assert.Error(t, results[0].Error)
}

func TestPipelineInvalidParams(t *testing.T) {
	p := params.Default()
	p.Evaluate.MaxPoints = 0
	pl := tagpipe.NewPipeline("Posts.xml", t.TempDir(), tagpipe.PipelineParams(p))

	c := make(chan pipeline.Result)
	go pl.Execute(context.Background(), c)
	results := collect(c)
	require.Len(t, results, 1)
	assert.True(t, strings.Contains(results[0].Error.Error(), "max_points"))
}

func TestEvaluateInvalidMaxPoints(t *testing.T) {
	_, err := tagpipe.Evaluate(context.Background(), "model.gob", "features", tagpipe.MaxPoints(0))
	assert.ErrorIs(t, err, eval.ErrInvalidMaxPoints)
}
