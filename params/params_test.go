package params_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hscells/tagpipe/params"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadKeepsDefaults(t *testing.T) {
	p, err := params.Read(strings.NewReader(`
featurize:
  max_features: 200
  ngrams: 2
evaluate:
  max_points: 250
`))
	require.NoError(t, err)

	want := params.Default()
	want.Featurize.MaxFeatures = 200
	want.Featurize.NGrams = 2
	want.Evaluate.MaxPoints = 250
	assert.Equal(t, want, p)
}

func TestReadEmpty(t *testing.T) {
	p, err := params.Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, params.Default(), p)
}

func TestLoadMissingFile(t *testing.T) {
	p, err := params.Load(filepath.Join(t.TempDir(), "params.yaml"))
	require.NoError(t, err)
	assert.Equal(t, params.Default(), p)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prepare:\n  split: 0.5\n  tag: <go>\ntrain:\n  n_est: 10\n"), 0644))
	p, err := params.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.Prepare.Split)
	assert.Equal(t, "<go>", p.Prepare.Tag)
	assert.Equal(t, 10, p.Train.NEstimators)
	assert.Equal(t, int64(20170426), p.Prepare.Seed)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(p *params.Params){
		"split":          func(p *params.Params) { p.Prepare.Split = 1.5 },
		"tag":            func(p *params.Params) { p.Prepare.Tag = "" },
		"max features":   func(p *params.Params) { p.Featurize.MaxFeatures = 0 },
		"ngrams":         func(p *params.Params) { p.Featurize.NGrams = 0 },
		"estimators":     func(p *params.Params) { p.Train.NEstimators = -1 },
		"max depth":      func(p *params.Params) { p.Train.MaxDepth = -1 },
		"max points":     func(p *params.Params) { p.Evaluate.MaxPoints = 0 },
		"importance top": func(p *params.Params) { p.Evaluate.ImportanceTop = -2 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := params.Default()
			mutate(&p)
			assert.True(t, errors.Is(p.Validate(), params.ErrInvalidParams))
		})
	}
	assert.NoError(t, params.Default().Validate())
}

func TestReadRejectsBadYAML(t *testing.T) {
	_, err := params.Read(strings.NewReader("evaluate: [1, 2"))
	assert.Error(t, err)

	_, err = params.Read(strings.NewReader("evaluate:\n  max_points: 0\n"))
	assert.True(t, errors.Is(err, params.ErrInvalidParams))
}
