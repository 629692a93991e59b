package bundle

import (
	"encoding/json"
	"fmt"

	"github.com/programme-lv/autograde/layout"
)

// Manifest is config.json, read by the grading service from inside the bundle.
type Manifest struct {
	Assignment      int64    `json:"assignment"`
	ModifiableFiles []string `json:"modifiable_files"`
	StudentTests    []string `json:"student_tests"`
	Timeout         int      `json:"timeout"`
	TotalPoints     int      `json:"total_points"`
}

func BuildManifest(src Source) Manifest {
	return Manifest{
		Assignment:      src.AssignmentID,
		ModifiableFiles: []string{layout.Base(src.AssignmentFile)},
		StudentTests:    []string{layout.Base(src.StudentTest)},
		Timeout:         src.Timeout,
		TotalPoints:     src.TotalPoints,
	}
}

// Encode renders the manifest with four space indentation.
func (m Manifest) Encode() ([]byte, error) {
	content, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return content, nil
}
