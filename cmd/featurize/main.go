package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hscells/tagpipe/cmd"
	"github.com/hscells/tagpipe/featurize"
	"github.com/hscells/tagpipe/params"
	"github.com/rs/zerolog/log"
)

var (
	name    = "featurize"
	version = "19.Oct.2026"
)

type args struct {
	cmd.Logging
	Params  string `help:"path to params file" arg:"-p" default:"params.yaml"`
	NoCache bool   `help:"do not cache tokens on disk" arg:"--no-cache"`
	Data    string `help:"directory holding train.tsv and test.tsv" arg:"positional,required" placeholder:"DATA_DIR_PATH"`
	Output  string `help:"directory features are written to" arg:"positional,required" placeholder:"FEATURES_DIR_PATH"`
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

	var cacheDir string
	if !args.NoCache {
		dir, err := os.UserCacheDir()
		if err != nil {
			cmd.Fatal(err, "could not find cache directory")
		}
		cacheDir = filepath.Join(dir, "tagpipe", "tokens")
	}

	stats, err := featurize.Run(context.Background(), args.Data, args.Output, p.Featurize, cacheDir)
	if err != nil {
		cmd.Fatal(err, "could not featurize posts")
	}
	log.Info().
		Int("train", stats.TrainRows).
		Int("test", stats.TestRows).
		Int("features", stats.Cols).
		Msg("featurized posts")
}
