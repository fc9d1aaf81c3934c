package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hscells/tagpipe"
	"github.com/hscells/tagpipe/cmd"
	"github.com/hscells/tagpipe/eval"
	"github.com/hscells/tagpipe/output"
	"github.com/hscells/tagpipe/params"
	"github.com/rs/zerolog/log"
)

var (
	name    = "evaluate"
	version = "19.Oct.2026"
)

type args struct {
	cmd.Logging
	MaxPoints *int   `help:"most points written per precision-recall curve (default: evaluate.max_points, 1000)" arg:"--max-points"`
	Params    string `help:"path to params file" arg:"-p" default:"params.yaml"`
	EvalDir   string `help:"directory evaluation files are written to" arg:"-o" default:"eval"`
	Ledger    string `help:"record the run in this ledger database" arg:"-l"`
	Extended  bool   `help:"also compute precision, recall and f-measures at a 0.5 threshold" arg:"-e"`
	Plot      bool   `help:"plot the test precision curve in the terminal"`
	Format    string `help:"summary format: json, csv or table" arg:"-f" default:"table"`
	Model     string `help:"path to model file" arg:"positional,required" placeholder:"MODEL_PATH"`
	Features  string `help:"path to features directory" arg:"positional,required" placeholder:"FEATURES_DIR_PATH"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return cmd.Describe(name, version)
}

func main() {
	var args args
	cmd.MustParse(&args)
	cmd.SetupLogging(os.Stderr, args.Logging)

	p, err := params.Load(args.Params)
	if err != nil {
		cmd.Fatal(err, "could not load params")
	}
	if args.MaxPoints != nil {
		p.Evaluate.MaxPoints = *args.MaxPoints
	}

	format, err := output.Formatter(args.Format)
	if err != nil {
		cmd.Fatal(err, "bad --format")
	}

	evaluators := eval.DefaultEvaluators
	if args.Extended {
		evaluators = eval.ExtendedEvaluators
	}

	e, err := tagpipe.Evaluate(context.Background(), args.Model, args.Features,
		tagpipe.EvalDir(args.EvalDir),
		tagpipe.MaxPoints(p.Evaluate.MaxPoints),
		tagpipe.ImportanceTop(p.Evaluate.ImportanceTop),
		tagpipe.Evaluators(evaluators...),
		tagpipe.LedgerPath(args.Ledger))
	if err != nil {
		cmd.Fatal(err, "evaluation failed")
	}

	summary, err := format(e.Summary)
	if err != nil {
		cmd.Fatal(err, "could not format summary")
	}
	fmt.Println(summary)

	if args.Plot {
		for _, r := range e.Reports {
			if r.Split == "test" {
				fmt.Println(output.PlotPrecision(r.PRC, 60, 10))
			}
		}
	}
	if len(e.RunID) > 0 {
		log.Info().Str("run", e.RunID).Msg("evaluation recorded")
	}
}
