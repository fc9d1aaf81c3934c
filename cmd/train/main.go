package main

import (
	"os"

	"github.com/hscells/tagpipe"
	"github.com/hscells/tagpipe/cmd"
	"github.com/hscells/tagpipe/params"
)

var (
	name    = "train"
	version = "19.Oct.2026"
)

type args struct {
	cmd.Logging
	Params   string `help:"path to params file" arg:"-p" default:"params.yaml"`
	Features string `help:"directory holding train.features" arg:"positional,required" placeholder:"FEATURES_DIR_PATH"`
	Model    string `help:"path the model is written to" arg:"positional,required" placeholder:"MODEL_PATH"`
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
	if _, err := tagpipe.Train(args.Features, args.Model, p.Train); err != nil {
		cmd.Fatal(err, "could not train model")
	}
}
