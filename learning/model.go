// Package learning trains and persists the classifier that predicts whether a post carries a tag.
package learning

import (
	"io"

	"github.com/pkg/errors"
)

// Classifier is an abstract representation of a machine learning model that can be trained on dense
// feature rows and predict class probabilities for new rows.
type Classifier interface {
	// Train must fit the model to rows x with classes y.
	Train(x [][]float64, y []int) error
	// Predict must return one probability per class, summing to 1.
	Predict(x []float64) ([]float64, error)
	// Importance must return the importance of each feature column.
	Importance() ([]float64, error)
	// Output must write the learned model.
	Output(w io.Writer) error
}

// PredictAll predicts the class probabilities of every row.
func PredictAll(c Classifier, x [][]float64) ([][]float64, error) {
	p := make([][]float64, len(x))
	for i, row := range x {
		var err error
		p[i], err = c.Predict(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
	}
	return p, nil
}
