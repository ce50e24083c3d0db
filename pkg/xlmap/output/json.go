// Package output serializes run results.
package output

import (
	"encoding/json"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
)

// ToJSON serializes a batch result.
func ToJSON(result *models.BatchResult, pretty bool) ([]byte, error) {
	return marshal(result, pretty)
}

// FileToJSON serializes a single file result.
func FileToJSON(result *models.FileResult, pretty bool) ([]byte, error) {
	return marshal(result, pretty)
}

// ReportToJSON serializes an error report.
func ReportToJSON(report *models.ErrorReport, pretty bool) ([]byte, error) {
	return marshal(report, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
