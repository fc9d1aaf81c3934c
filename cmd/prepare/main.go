package main

import (
	"os"

	"github.com/hscells/tagpipe/cmd"
	"github.com/hscells/tagpipe/params"
	"github.com/hscells/tagpipe/prepare"
	"github.com/rs/zerolog/log"
)

var (
	name    = "prepare"
	version = "19.Oct.2026"
)

type args struct {
	cmd.Logging
	Params   string `help:"path to params file" arg:"-p" default:"params.yaml"`
	Progress bool   `help:"show a progress bar"`
	Input    string `help:"path to the Posts.xml dump" arg:"positional,required" placeholder:"DATA_FILE"`
	Output   string `help:"directory train.tsv and test.tsv are written to" arg:"positional" default:"data/prepared" placeholder:"OUTPUT_DIR"`
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
	stats, err := prepare.File(args.Input, args.Output, p.Prepare, args.Progress)
	if err != nil {
		cmd.Fatal(err, "could not prepare posts")
	}
	log.Info().
		Int("train", stats.Train).
		Int("test", stats.Test).
		Int("skipped", stats.Skipped).
		Str("tag", p.Prepare.Tag).
		Msg("prepared posts")
}
