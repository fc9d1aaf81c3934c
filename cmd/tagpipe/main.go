package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/hscells/tagpipe"
	"github.com/hscells/tagpipe/cmd"
	"github.com/hscells/tagpipe/eval"
	"github.com/hscells/tagpipe/ledger"
	"github.com/hscells/tagpipe/output"
	"github.com/hscells/tagpipe/params"
	"github.com/hscells/tagpipe/pipeline"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	name    = "tagpipe"
	version = "19.Oct.2026"
)

type runCmd struct {
	Params   string   `help:"path to params file" arg:"-p" default:"params.yaml"`
	WorkDir  string   `help:"directory every stage writes under" arg:"-w" default:"."`
	Stages   []string `help:"only run these stages (prepare, featurize, train, evaluate)" arg:"-s,--stage,separate"`
	Ledger   string   `help:"record the evaluation in this ledger database" arg:"-l"`
	Metrics  string   `help:"write Prometheus metrics of the run to this file" arg:"-m"`
	Extended bool     `help:"also compute precision, recall and f-measures at a 0.5 threshold" arg:"-e"`
	Progress bool     `help:"show a progress bar while preparing posts"`
	NoCache  bool     `help:"do not cache tokens on disk" arg:"--no-cache"`
	Posts    string   `help:"path to the Posts.xml dump" arg:"positional" default:"data/data.xml" placeholder:"DATA_FILE"`
}

type runsCmd struct {
	Ledger  string `help:"path to ledger database" arg:"positional,required" placeholder:"LEDGER_PATH"`
	Split   string `help:"split to rank runs by" default:"test"`
	Measure string `help:"measure to rank runs by" default:"avg_prec"`
}

type args struct {
	cmd.Logging
	Run  *runCmd  `arg:"subcommand:run" help:"run the pipeline"`
	Runs *runsCmd `arg:"subcommand:runs" help:"list the runs recorded in a ledger"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return cmd.Describe(name, version)
}

func stages(names []string) ([]pipeline.Stage, error) {
	if len(names) == 0 {
		return pipeline.Stages, nil
	}
	var s []pipeline.Stage
	for _, n := range names {
		found := false
		for _, stage := range pipeline.Stages {
			if string(stage) == n {
				s = append(s, stage)
				found = true
			}
		}
		if !found {
			return nil, errors.Errorf("unknown stage %q", n)
		}
	}
	return s, nil
}

func run(ctx context.Context, a *runCmd) error {
	p, err := params.Load(a.Params)
	if err != nil {
		return err
	}
	s, err := stages(a.Stages)
	if err != nil {
		return err
	}

	options := []func(*tagpipe.Pipeline){
		tagpipe.PipelineParams(p),
		tagpipe.PipelineStages(s...),
		tagpipe.PipelineLedger(a.Ledger),
		tagpipe.PipelineMetrics(a.Metrics),
		tagpipe.PipelineProgress(a.Progress),
	}
	if a.Extended {
		options = append(options, tagpipe.PipelineEvaluators(eval.ExtendedEvaluators...))
	}
	if !a.NoCache {
		dir, err := os.UserCacheDir()
		if err != nil {
			return err
		}
		options = append(options, tagpipe.PipelineTokenCache(filepath.Join(dir, "tagpipe", "tokens")))
	}
	pl := tagpipe.NewPipeline(a.Posts, a.WorkDir, options...)

	c := make(chan pipeline.Result)
	go pl.Execute(ctx, c)

	var reports []eval.Report
	for r := range c {
		switch r.Type {
		case pipeline.Error:
			return errors.Wrap(r.Error, string(r.Stage))
		case pipeline.StageDone:
			e := log.Info().Str("stage", string(r.Stage)).Dur("took", r.Duration)
			for k, v := range r.Metrics {
				e = e.Float64(k, v)
			}
			e.Msg("stage done")
		case pipeline.Evaluation:
			reports = append(reports, eval.Report{Split: r.Split, Scores: r.Metrics})
		}
	}

	table, err := output.TableEvaluationFormatter(output.NewSummary(reports))
	if err != nil {
		return err
	}
	fmt.Print(table)
	return nil
}

func runs(ctx context.Context, a *runsCmd) error {
	l, err := ledger.Open(a.Ledger)
	if err != nil {
		return err
	}
	defer l.Close()
	rs, err := l.Runs(ctx)
	if err != nil {
		return err
	}

	best, _ := ledger.Best(rs, a.Split, a.Measure)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Run", "Created", "Model", "Max points", a.Split + " " + a.Measure, ""})
	for _, r := range rs {
		value := ""
		for _, s := range r.Splits {
			if v, ok := s.Scores[a.Measure]; ok && s.Split == a.Split {
				value = strconv.FormatFloat(v, 'f', 4, 64)
			}
		}
		mark := ""
		if r.ID == best.ID {
			mark = "*"
		}
		table.Append([]string{r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.ModelPath, strconv.Itoa(r.MaxPoints), value, mark})
	}
	table.Render()
	return nil
}

func main() {
	var args args
	cmd.MustParse(&args)
	cmd.SetupLogging(os.Stderr, args.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case args.Run != nil:
		err = run(ctx, args.Run)
	case args.Runs != nil:
		err = runs(ctx, args.Runs)
	default:
		fmt.Fprintln(os.Stderr, "error: a subcommand is required (run, runs)")
		os.Exit(1)
	}
	if err != nil {
		stop()
		cmd.Fatal(err, "tagpipe failed")
	}
}
