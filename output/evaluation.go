// Package output provides different formats of output for evaluation runs.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/hscells/tagpipe/eval"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
)

// Summary holds the value of each measure for each split, e.g. summary["avg_prec"]["test"].
type Summary map[string]map[string]float64

// NewSummary collects the measures of each report.
func NewSummary(reports []eval.Report) Summary {
	s := Summary{}
	for _, r := range reports {
		for measure, v := range r.Scores {
			if _, ok := s[measure]; !ok {
				s[measure] = map[string]float64{}
			}
			s[measure][r.Split] = v
		}
	}
	return s
}

// Measures are the measure names in sorted order.
func (s Summary) Measures() []string {
	measures := make([]string, 0, len(s))
	for m := range s {
		measures = append(measures, m)
	}
	sort.Strings(measures)
	return measures
}

// Splits are the split names across all measures in sorted order.
func (s Summary) Splits() []string {
	seen := map[string]bool{}
	var splits []string
	for _, values := range s {
		for split := range values {
			if !seen[split] {
				seen[split] = true
				splits = append(splits, split)
			}
		}
	}
	sort.Strings(splits)
	return splits
}

func (s Summary) rows() (header []string, rows [][]string) {
	splits := s.Splits()
	header = append([]string{"Measure"}, splits...)
	for _, m := range s.Measures() {
		record := make([]string, len(splits)+1)
		record[0] = m
		for i, split := range splits {
			if v, ok := s[m][split]; ok {
				record[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		rows = append(rows, record)
	}
	return header, rows
}

// EvaluationFormatter is used in a pipeline to output evaluation results.
type EvaluationFormatter func(Summary) (string, error)

// Formatter returns the evaluation formatter called name: json, csv or table.
func Formatter(name string) (EvaluationFormatter, error) {
	switch name {
	case "json":
		return JsonEvaluationFormatter, nil
	case "csv":
		return CsvEvaluationFormatter, nil
	case "table":
		return TableEvaluationFormatter, nil
	}
	return nil, errors.Errorf("unknown format %q", name)
}

// JsonEvaluationFormatter outputs results in a JSON format.
func JsonEvaluationFormatter(results Summary) (string, error) {
	v, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// CsvEvaluationFormatter outputs results in CSV format, one row per measure and one column per split.
func CsvEvaluationFormatter(results Summary) (string, error) {
	b := bytes.NewBufferString("")
	w := csv.NewWriter(b)
	header, rows := results.rows()
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return b.String(), nil
}

// TableEvaluationFormatter outputs results as a text table for terminals.
func TableEvaluationFormatter(results Summary) (string, error) {
	b := bytes.NewBufferString("")
	table := tablewriter.NewWriter(b)
	header, rows := results.rows()
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
	return b.String(), nil
}
