package main

import (
	"bytes"
	"testing"

	"github.com/hscells/tagpipe/cmd"
	"github.com/stretchr/testify/assert"
)

func TestArgs(t *testing.T) {
	var a args
	var stdout, stderr bytes.Buffer
	exit, _ := cmd.ParseArgs(&a, []string{"--max-points", "50", "-f", "csv", "model.gob", "features"}, &stdout, &stderr)
	assert.False(t, exit)
	assert.Equal(t, "model.gob", a.Model)
	assert.Equal(t, "features", a.Features)
	if assert.NotNil(t, a.MaxPoints) {
		assert.Equal(t, 50, *a.MaxPoints)
	}
	assert.Equal(t, "csv", a.Format)
	assert.Equal(t, "eval", a.EvalDir)
}

func TestArgsCountMismatch(t *testing.T) {
	for _, positionals := range [][]string{{}, {"model.gob"}, {"model.gob", "features", "extra"}} {
		var a args
		var stdout, stderr bytes.Buffer
		exit, status := cmd.ParseArgs(&a, positionals, &stdout, &stderr)
		assert.True(t, exit, "%v", positionals)
		assert.Equal(t, 1, status, "%v", positionals)
		assert.Contains(t, stderr.String(), "Usage:")
		assert.Contains(t, stderr.String(), "MODEL_PATH")
		assert.Empty(t, stdout.String())
	}
}
