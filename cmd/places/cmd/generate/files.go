package generate

import (
	"path/filepath"

	"github.com/helgo/places/internal/appcontext"
	"github.com/helgo/places/internal/generate"
)

// requestsPath is the batch input file for kind.
func requestsPath(app appcontext.Interface, kind generate.Kind) string {
	return filepath.Join(app.Config().BatchDir, string(kind)+".jsonl")
}

// jobPath is where the submitted job for kind is recorded.
func jobPath(app appcontext.Interface, kind generate.Kind) string {
	return filepath.Join(app.Config().BatchDir, string(kind)+"-job.json")
}

// outputPath is the downloaded batch output for kind.
func outputPath(app appcontext.Interface, kind generate.Kind) string {
	return filepath.Join(app.Config().BatchDir, string(kind)+"-output.jsonl")
}
