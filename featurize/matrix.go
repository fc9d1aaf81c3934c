package featurize

import (
	"bufio"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	// Magic starts every features file.
	Magic = "tagpipe/features"
	// Version is the features file format version.
	Version = 1

	// TrainFile is the name of the train features file.
	TrainFile = "train.features"
	// TestFile is the name of the test features file.
	TestFile = "test.features"
)

// ErrBadHeader is returned when a features file does not start with a valid header.
var ErrBadHeader = errors.New("bad features header")

// Header precedes the rows of a features file.
type Header struct {
	Magic        string
	Version      int
	Rows         int
	Cols         int
	FeatureNames []string
}

// Row is the id, label and sparse features of one post.
type Row struct {
	ID      int64
	Label   int
	Indices []int
	Values  []float64
}

// Dense expands the features of r into cols columns.
func (r Row) Dense(cols int) []float64 {
	x := make([]float64, cols)
	for k, j := range r.Indices {
		x[j] = r.Values[k]
	}
	return x
}

// Matrix holds the features of a split.
type Matrix struct {
	FeatureNames []string
	Rows         []Row
}

// Cols is the number of feature columns.
func (m Matrix) Cols() int {
	return len(m.FeatureNames)
}

// Labels returns the label of every row.
func (m Matrix) Labels() []int {
	labels := make([]int, len(m.Rows))
	for i, r := range m.Rows {
		labels[i] = r.Label
	}
	return labels
}

// Dense expands every row.
func (m Matrix) Dense() [][]float64 {
	x := make([][]float64, len(m.Rows))
	for i, r := range m.Rows {
		x[i] = r.Dense(m.Cols())
	}
	return x
}

func (m Matrix) validateRow(i int, r Row) error {
	if len(r.Indices) != len(r.Values) {
		return errors.Errorf("row %d: %d indices but %d values", i, len(r.Indices), len(r.Values))
	}
	prev := -1
	for _, j := range r.Indices {
		if j <= prev || j >= m.Cols() {
			return errors.Errorf("row %d: column %d out of order or range", i, j)
		}
		prev = j
	}
	return nil
}

// WriteMatrix writes a header followed by every row.
func WriteMatrix(w io.Writer, m Matrix) error {
	enc := gob.NewEncoder(w)
	err := enc.Encode(Header{
		Magic:        Magic,
		Version:      Version,
		Rows:         len(m.Rows),
		Cols:         m.Cols(),
		FeatureNames: m.FeatureNames,
	})
	if err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, r := range m.Rows {
		if err := m.validateRow(i, r); err != nil {
			return err
		}
		if err := enc.Encode(r); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}
	return nil
}

// ReadMatrix reads a matrix written by WriteMatrix.
func ReadMatrix(r io.Reader) (Matrix, error) {
	dec := gob.NewDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return Matrix{}, errors.Wrap(ErrBadHeader, err.Error())
	}
	if h.Magic != Magic || h.Version != Version {
		return Matrix{}, errors.Wrapf(ErrBadHeader, "magic %q version %d", h.Magic, h.Version)
	}
	if h.Cols != len(h.FeatureNames) || h.Rows < 0 {
		return Matrix{}, errors.Wrapf(ErrBadHeader, "%d rows, %d columns and %d feature names", h.Rows, h.Cols, len(h.FeatureNames))
	}

	m := Matrix{FeatureNames: h.FeatureNames, Rows: make([]Row, 0, h.Rows)}
	for i := 0; i < h.Rows; i++ {
		var row Row
		if err := dec.Decode(&row); err != nil {
			return Matrix{}, errors.Wrapf(err, "reading row %d of %d", i, h.Rows)
		}
		if err := m.validateRow(i, row); err != nil {
			return Matrix{}, err
		}
		m.Rows = append(m.Rows, row)
	}
	return m, nil
}

// SaveMatrix writes m to path, creating its directory.
func SaveMatrix(path string, m Matrix) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := WriteMatrix(w, m); err != nil {
		return errors.Wrap(err, path)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// LoadMatrix reads the matrix at path.
func LoadMatrix(path string) (Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return Matrix{}, err
	}
	defer f.Close()
	m, err := ReadMatrix(bufio.NewReader(f))
	return m, errors.Wrap(err, path)
}
