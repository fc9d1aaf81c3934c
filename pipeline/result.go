// Package pipeline describes what a running tagpipe pipeline reports.
package pipeline

import "time"

// Stage is a step of the pipeline.
type Stage string

const (
	// Prepare labels and splits the posts dump.
	Prepare Stage = "prepare"
	// Featurize turns posts into feature matrices.
	Featurize Stage = "featurize"
	// Train fits the classifier.
	Train Stage = "train"
	// Evaluate scores the classifier on every split.
	Evaluate Stage = "evaluate"
)

// Stages are all stages, in the order they run.
var Stages = []Stage{Prepare, Featurize, Train, Evaluate}

// ResultType is the type of result being returned through a pipeline channel.
type ResultType uint8

const (
	// StageDone indicates a stage has completed.
	StageDone ResultType = iota
	// Evaluation is the evaluation of one split.
	Evaluation
	// Error indicates an error was raised.
	Error
	// Done indicates the pipeline has completed.
	Done
)

func (t ResultType) String() string {
	switch t {
	case StageDone:
		return "stage"
	case Evaluation:
		return "evaluation"
	case Error:
		return "error"
	case Done:
		return "done"
	}
	return "unknown"
}

// Result is the output of a tagpipe pipeline.
type Result struct {
	Stage Stage
	// Split is set for evaluations and for stages that report rows per split.
	Split    string
	Metrics  map[string]float64
	Duration time.Duration
	Type     ResultType
	Error    error
}
