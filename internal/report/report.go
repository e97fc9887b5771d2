// Package report emits evaluation results as NDJSON: one prediction record
// per query followed by a single summary record.
package report

// Prediction is the per-query evaluation record.
type Prediction struct {
	Index     int   `json:"index"`
	Label     int   `json:"label"`
	Predicted int   `json:"predicted"`
	TopK      []int `json:"topk,omitempty"`
	Correct   bool  `json:"correct"`
}

// Summary is the final record of a run.
type Summary struct {
	Record      string  `json:"record"` // always "summary"
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	Accuracy    float64 `json:"accuracy"`
	K           int     `json:"k"`
	Temperature float64 `json:"temperature"`
	Classes     int     `json:"classes"`
}

// Writer is a destination for evaluation records.
type Writer interface {
	WritePrediction(p Prediction) error
	WriteSummary(s Summary) error
	Close() error
}

// New returns a Writer for dest: "stdout" (or "-") writes NDJSON to
// standard output, anything else is treated as a file path.
func New(dest string) (Writer, error) {
	if dest == "stdout" || dest == "-" {
		return newStdout(), nil
	}
	return newFile(dest)
}
