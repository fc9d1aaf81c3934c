// Package params loads the parameters of every pipeline stage from a YAML file.
package params

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidParams is returned when a parameter is out of range.
var ErrInvalidParams = errors.New("invalid params")

// Prepare configures how posts are labelled and split.
type Prepare struct {
	Split float64 `yaml:"split"`
	Seed  int64   `yaml:"seed"`
	Tag   string  `yaml:"tag"`
}

// Featurize configures the bag of words.
type Featurize struct {
	MaxFeatures int  `yaml:"max_features"`
	NGrams      int  `yaml:"ngrams"`
	Stem        bool `yaml:"stem"`
}

// Train configures the random forest.
type Train struct {
	NEstimators int `yaml:"n_est"`
	MaxDepth    int `yaml:"max_depth"`
}

// Evaluate configures the evaluation outputs.
type Evaluate struct {
	MaxPoints     int `yaml:"max_points"`
	ImportanceTop int `yaml:"importance_top"`
}

// Params holds the parameters of every stage.
type Params struct {
	Prepare   Prepare   `yaml:"prepare"`
	Featurize Featurize `yaml:"featurize"`
	Train     Train     `yaml:"train"`
	Evaluate  Evaluate  `yaml:"evaluate"`
}

// Default returns the parameters used when none are given.
func Default() Params {
	return Params{
		Prepare: Prepare{
			Split: 0.20,
			Seed:  20170426,
			Tag:   "<python>",
		},
		Featurize: Featurize{
			MaxFeatures: 100,
			NGrams:      1,
		},
		Train: Train{
			NEstimators: 50,
		},
		Evaluate: Evaluate{
			MaxPoints:     1000,
			ImportanceTop: 30,
		},
	}
}

// Read decodes parameters from r. Keys that are absent keep their default value.
func Read(r io.Reader) (Params, error) {
	p := Default()
	err := yaml.NewDecoder(r).Decode(&p)
	if err != nil && err != io.EOF {
		return p, errors.Wrap(err, "decoding params")
	}
	return p, p.Validate()
}

// Load reads parameters from a file. A missing file yields the defaults.
func Load(path string) (Params, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Params{}, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	p, err := Read(f)
	return p, errors.Wrap(err, path)
}

// Validate checks every parameter is in range.
func (p Params) Validate() error {
	switch {
	case p.Prepare.Split < 0 || p.Prepare.Split > 1:
		return errors.Wrapf(ErrInvalidParams, "prepare.split %v not in [0, 1]", p.Prepare.Split)
	case p.Prepare.Tag == "":
		return errors.Wrap(ErrInvalidParams, "prepare.tag is empty")
	case p.Featurize.MaxFeatures <= 0:
		return errors.Wrapf(ErrInvalidParams, "featurize.max_features %d must be positive", p.Featurize.MaxFeatures)
	case p.Featurize.NGrams <= 0:
		return errors.Wrapf(ErrInvalidParams, "featurize.ngrams %d must be positive", p.Featurize.NGrams)
	case p.Train.NEstimators <= 0:
		return errors.Wrapf(ErrInvalidParams, "train.n_est %d must be positive", p.Train.NEstimators)
	case p.Train.MaxDepth < 0:
		return errors.Wrapf(ErrInvalidParams, "train.max_depth %d must not be negative", p.Train.MaxDepth)
	case p.Evaluate.MaxPoints <= 0:
		return errors.Wrapf(ErrInvalidParams, "evaluate.max_points %d must be positive", p.Evaluate.MaxPoints)
	case p.Evaluate.ImportanceTop < 0:
		return errors.Wrapf(ErrInvalidParams, "evaluate.importance_top %d must not be negative", p.Evaluate.ImportanceTop)
	}
	return nil
}
