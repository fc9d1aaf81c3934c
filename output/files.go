package output

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hscells/tagpipe/eval"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// PRCDocument is the on-disk shape of a downsampled precision-recall curve.
type PRCDocument struct {
	PRC eval.Curve `json:"prc"`
}

// ROCDocument is the on-disk shape of a ROC curve.
type ROCDocument struct {
	ROC []eval.ROCPoint `json:"roc"`
}

// PRCPath is where the precision-recall curve of a split is written.
func PRCPath(evalDir, split string) string {
	return filepath.Join(evalDir, "prc", split+".json")
}

// ROCPath is where the ROC curve of a split is written.
func ROCPath(evalDir, split string) string {
	return filepath.Join(evalDir, "live", "plots", "sklearn", "roc", split+".json")
}

// ConfusionPath is where the confusion pairs of a split are written.
func ConfusionPath(evalDir, split string) string {
	return filepath.Join(evalDir, "live", "plots", "sklearn", "cm", split+".json")
}

// SummaryPath is where the measures of all splits are written.
func SummaryPath(evalDir string) string {
	return filepath.Join(evalDir, "live", "metrics.json")
}

// ImportancePath is where the feature importance chart is written.
func ImportancePath(evalDir string) string {
	return filepath.Join(evalDir, "importance.png")
}

// ReportPath is where the HTML report is written.
func ReportPath(evalDir string) string {
	return filepath.Join(evalDir, "report.html")
}

// WriteFile writes b to path, creating parent directories as needed.
func WriteFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	return WriteFile(path, b)
}

// WritePRC writes the precision-recall curve of a split as {"prc": [...]}.
func WritePRC(evalDir, split string, c eval.Curve) (string, error) {
	if c == nil {
		c = eval.Curve{}
	}
	path := PRCPath(evalDir, split)
	return path, writeJSON(path, PRCDocument{PRC: c})
}

// WriteROC writes the ROC curve of a split as {"roc": [...]}.
func WriteROC(evalDir, split string, points []eval.ROCPoint) (string, error) {
	if points == nil {
		points = []eval.ROCPoint{}
	}
	path := ROCPath(evalDir, split)
	return path, writeJSON(path, ROCDocument{ROC: points})
}

// WriteConfusion writes the actual and predicted class of each observation of a split.
func WriteConfusion(evalDir, split string, pairs []eval.ConfusionPair) (string, error) {
	if pairs == nil {
		pairs = []eval.ConfusionPair{}
	}
	path := ConfusionPath(evalDir, split)
	return path, writeJSON(path, pairs)
}

// WriteSummary writes the measures of all splits with the given formatter.
func WriteSummary(path string, s Summary, formatter EvaluationFormatter) error {
	v, err := formatter(s)
	if err != nil {
		return errors.Wrap(err, "formatting summary")
	}
	return WriteFile(path, []byte(v))
}

// WriteReports writes the curves and confusion pairs of each report and the summary of all of them.
// A report without a ROC curve gets no ROC file.
func WriteReports(evalDir string, reports []eval.Report) (Summary, error) {
	for _, r := range reports {
		path, err := WritePRC(evalDir, r.Split, r.PRC)
		if err != nil {
			return nil, err
		}
		log.Info().Str("split", r.Split).Str("path", path).Int("points", len(r.PRC)).Msg("wrote precision-recall curve")

		if r.ROC != nil {
			if _, err := WriteROC(evalDir, r.Split, r.ROC); err != nil {
				return nil, err
			}
		}
		if _, err := WriteConfusion(evalDir, r.Split, r.Pairs); err != nil {
			return nil, err
		}
	}

	s := NewSummary(reports)
	return s, WriteSummary(SummaryPath(evalDir), s, JsonEvaluationFormatter)
}
