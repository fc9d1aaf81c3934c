package featurize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TfIdf weights counts by inverse document frequency and normalises each row to unit length.
type TfIdf struct {
	IDF []float64
}

// FitTfIdf computes idf = ln(n/df) + 1 for each of the cols columns over the n vectors. A column no
// vector contains gets an idf of 1.
func FitTfIdf(vectors []Vector, cols int) TfIdf {
	df := make([]float64, cols)
	for _, v := range vectors {
		for _, j := range v.Indices {
			df[j]++
		}
	}
	n := float64(len(vectors))
	idf := make([]float64, cols)
	for j := range idf {
		if df[j] == 0 {
			idf[j] = 1
			continue
		}
		idf[j] = math.Log(n/df[j]) + 1
	}
	return TfIdf{IDF: idf}
}

// Transform returns weighted copies of vectors. Rows with no terms stay empty.
func (t TfIdf) Transform(vectors []Vector) []Vector {
	out := make([]Vector, len(vectors))
	for i, v := range vectors {
		values := make([]float64, len(v.Values))
		for k, j := range v.Indices {
			values[k] = v.Values[k] * t.IDF[j]
		}
		if norm := floats.Norm(values, 2); norm > 0 {
			floats.Scale(1/norm, values)
		}
		out[i] = Vector{Indices: append([]int(nil), v.Indices...), Values: values}
	}
	return out
}
