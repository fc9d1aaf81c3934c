package learning

import (
	"bufio"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const modelMagic = "tagpipe/forest"

var (
	// ErrUntrained is returned when a forest is used before it is trained.
	ErrUntrained = errors.New("forest is not trained")
	// ErrBadModel is returned when a model file cannot be read.
	ErrBadModel = errors.New("bad model")
)

// Forest is a random forest classifier.
type Forest struct {
	trees    int
	maxDepth int
	forest   *randomforest.Forest
}

// ForestTrees sets the number of trees.
func ForestTrees(n int) func(*Forest) {
	return func(f *Forest) {
		f.trees = n
	}
}

// ForestMaxDepth limits the depth of every tree. Zero leaves the depth to the library default.
func ForestMaxDepth(n int) func(*Forest) {
	return func(f *Forest) {
		f.maxDepth = n
	}
}

// NewForest creates an untrained forest of 100 trees.
func NewForest(options ...func(*Forest)) *Forest {
	f := &Forest{trees: 100}
	for _, option := range options {
		option(f)
	}
	return f
}

// Train fits the forest to rows x with classes y. Classes are numbered from zero.
func (f *Forest) Train(x [][]float64, y []int) error {
	if len(x) == 0 {
		return errors.New("no training rows")
	}
	if len(x) != len(y) {
		return errors.Errorf("%d rows but %d classes", len(x), len(y))
	}
	for i, c := range y {
		if c < 0 {
			return errors.Errorf("row %d: negative class %d", i, c)
		}
	}

	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: x, Class: y}
	if f.maxDepth > 0 {
		forest.MaxDepth = f.maxDepth
	}
	log.Info().Int("rows", len(x)).Int("features", len(x[0])).Int("trees", f.trees).Msg("training forest")
	forest.Train(f.trees)
	f.forest = forest
	return nil
}

// Predict returns the share of trees voting for each class. At least two classes are always
// returned, so a forest trained on a single class still gives a probability for class 1.
func (f *Forest) Predict(x []float64) ([]float64, error) {
	if f.forest == nil {
		return nil, ErrUntrained
	}
	if len(x) != f.forest.Features {
		return nil, errors.Errorf("row has %d features, forest was trained on %d", len(x), f.forest.Features)
	}
	p := f.forest.Vote(x)
	for len(p) < 2 {
		p = append(p, 0)
	}
	return p, nil
}

// Importance returns the mean decrease in impurity of each feature.
func (f *Forest) Importance() ([]float64, error) {
	if f.forest == nil {
		return nil, ErrUntrained
	}
	return f.forest.FeatureImportance, nil
}

type model struct {
	Magic  string
	Forest *randomforest.Forest
}

// Output writes the trained trees without the training data.
func (f *Forest) Output(w io.Writer) error {
	if f.forest == nil {
		return ErrUntrained
	}
	forest := *f.forest
	forest.Data = randomforest.ForestData{}
	return errors.Wrap(gob.NewEncoder(w).Encode(model{Magic: modelMagic, Forest: &forest}), "writing model")
}

// ReadForest reads a forest written by Output.
func ReadForest(r io.Reader) (*Forest, error) {
	var m model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(ErrBadModel, err.Error())
	}
	if m.Magic != modelMagic || m.Forest == nil {
		return nil, errors.Wrapf(ErrBadModel, "magic %q", m.Magic)
	}
	return &Forest{trees: len(m.Forest.Trees), maxDepth: m.Forest.MaxDepth, forest: m.Forest}, nil
}

// SaveForest writes f to path, creating its directory.
func SaveForest(path string, f *Forest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	if err := f.Output(w); err != nil {
		return errors.Wrap(err, path)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// LoadForest reads the forest at path.
func LoadForest(path string) (*Forest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := ReadForest(bufio.NewReader(file))
	return f, errors.Wrap(err, path)
}
