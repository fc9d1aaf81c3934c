package featurize

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hscells/tagpipe/params"
	"github.com/hscells/tagpipe/prepare"
	"github.com/hscells/tagpipe/preprocess"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const stemCacheSize = 1 << 16

// Stats describes the matrices written by Run.
type Stats struct {
	TrainRows int
	TestRows  int
	Cols      int
}

// NewVectorizerFromParams creates a vectorizer configured by p, caching tokens in cacheDir when it is
// not empty and in memory otherwise.
func NewVectorizerFromParams(p params.Featurize, cacheDir string) *Vectorizer {
	tokeniser := []func(*preprocess.Tokeniser){}
	if p.Stem {
		tokeniser = append(tokeniser, preprocess.TokeniserStemming(stemCacheSize))
	}
	options := []func(*Vectorizer){
		VectorizerMaxFeatures(p.MaxFeatures),
		VectorizerNGrams(p.NGrams),
		VectorizerTokeniser(preprocess.NewTokeniser(tokeniser...)),
	}
	if len(cacheDir) > 0 {
		options = append(options, VectorizerTokenCache(NewDiskvTokenCache(cacheDir, fmt.Sprintf("stem=%t", p.Stem))))
	} else {
		options = append(options, VectorizerTokenCache(NewMapTokenCache()))
	}
	return NewVectorizer(options...)
}

func matrix(posts []prepare.Post, vectors []Vector, names []string) Matrix {
	m := Matrix{FeatureNames: names, Rows: make([]Row, len(posts))}
	for i, p := range posts {
		m.Rows[i] = Row{ID: p.ID, Label: p.Label, Indices: vectors[i].Indices, Values: vectors[i].Values}
	}
	return m
}

func texts(posts []prepare.Post) []string {
	t := make([]string, len(posts))
	for i, p := range posts {
		t[i] = p.Text
	}
	return t
}

// Fit fits the vocabulary and idf weights on train and returns the train and test matrices.
func Fit(ctx context.Context, v *Vectorizer, train, test []prepare.Post) (Matrix, Matrix, error) {
	trainDocs, err := v.Analyse(ctx, texts(train))
	if err != nil {
		return Matrix{}, Matrix{}, errors.Wrap(err, "analysing train set")
	}
	testDocs, err := v.Analyse(ctx, texts(test))
	if err != nil {
		return Matrix{}, Matrix{}, errors.Wrap(err, "analysing test set")
	}

	v.Fit(trainDocs)
	trainCounts := v.Transform(trainDocs)
	tfidf := FitTfIdf(trainCounts, len(v.FeatureNames()))

	trainM := matrix(train, tfidf.Transform(trainCounts), v.FeatureNames())
	testM := matrix(test, tfidf.Transform(v.Transform(testDocs)), v.FeatureNames())
	return trainM, testM, nil
}

// Run reads the prepared sets in inDir and writes their features to outDir.
func Run(ctx context.Context, inDir, outDir string, p params.Featurize, cacheDir string) (Stats, error) {
	train, err := prepare.ReadPostsFile(filepath.Join(inDir, prepare.TrainFile))
	if err != nil {
		return Stats{}, err
	}
	test, err := prepare.ReadPostsFile(filepath.Join(inDir, prepare.TestFile))
	if err != nil {
		return Stats{}, err
	}
	log.Info().Int("train", len(train)).Int("test", len(test)).Msg("read prepared posts")

	trainM, testM, err := Fit(ctx, NewVectorizerFromParams(p, cacheDir), train, test)
	if err != nil {
		return Stats{}, err
	}

	for _, out := range []struct {
		name string
		m    Matrix
	}{{TrainFile, trainM}, {TestFile, testM}} {
		path := filepath.Join(outDir, out.name)
		if err := SaveMatrix(path, out.m); err != nil {
			return Stats{}, err
		}
		log.Info().Str("path", path).Int("rows", len(out.m.Rows)).Int("cols", out.m.Cols()).Msg("wrote features")
	}
	return Stats{TrainRows: len(trainM.Rows), TestRows: len(testM.Rows), Cols: trainM.Cols()}, nil
}
