package batch

import (
	"encoding/json"
	"os"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"

	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
)

// SaveJob writes job to path.
func SaveJob(path string, job *Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// LoadJob reads a job written by SaveJob.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("batch job", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if job.ID == "" {
		return nil, &errors.ValidationError{Field: "id", Message: "batch job has no id"}
	}
	return &job, nil
}

// Update copies the state of b into the job.
func (j *Job) Update(b openai.Batch) {
	j.Status = b.Status
	j.Completed = b.RequestCounts.Completed
	j.Failed = b.RequestCounts.Failed
	if b.RequestCounts.Total > 0 {
		j.Requests = b.RequestCounts.Total
	}
	if b.OutputFileID != nil {
		j.OutputFile = *b.OutputFileID
	}
}

// Done reports whether the job reached a terminal status.
func (j *Job) Done() bool {
	switch j.Status {
	case StatusCompleted, StatusFailed, StatusExpired, StatusCanceled, "canceled":
		return true
	}
	return false
}
