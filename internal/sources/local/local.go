// Package local replays source records from a snapshot file, so a build can
// be rerun without touching the network.
package local

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/helgo/places/pkg/constants"
	"github.com/helgo/places/pkg/errors"
	"github.com/helgo/places/pkg/sources"
)

// Snapshot is the on-disk record snapshot.
type Snapshot struct {
	Source  sources.ID       `json:"source"`
	Records []sources.Record `json:"records"`
}

// Source loads records from a snapshot file.
type Source struct {
	path string
	id   sources.ID
}

// Option configures a local source.
type Option func(*Source)

// WithPath sets the snapshot path.
func WithPath(path string) Option {
	return func(s *Source) {
		s.path = path
	}
}

// WithID overrides the source id the records are attributed to. By default
// the id stored in the snapshot is used.
func WithID(id sources.ID) Option {
	return func(s *Source) {
		s.id = id
	}
}

// New creates a new local source.
func New(opts ...Option) *Source {
	s := &Source{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the configured id, or the snapshot's id once Records ran.
func (s *Source) ID() sources.ID {
	return s.id
}

// Records reads the snapshot. Records whose origin is empty are attributed
// to the source id.
func (s *Source) Records(_ context.Context) ([]sources.Record, error) {
	snap, err := Load(s.path)
	if err != nil {
		return nil, err
	}
	if s.id == "" {
		s.id = snap.Source
	}
	if !s.id.IsValid() {
		return nil, &errors.ValidationError{Field: "source", Value: s.id, Message: "snapshot has no known source id"}
	}
	for i := range snap.Records {
		if snap.Records[i].Origin == "" {
			snap.Records[i].Origin = s.id
		}
	}
	return snap.Records, nil
}

// Load reads a snapshot file.
func Load(path string) (*Snapshot, error) {
	if path == "" {
		return nil, &errors.ValidationError{Field: "path", Message: "snapshot path is required"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("snapshot", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return &snap, nil
}

// Save writes records as a snapshot, replacing path atomically.
func Save(path string, id sources.ID, records []sources.Record) error {
	data, err := json.MarshalIndent(Snapshot{Source: id, Records: records}, "", "  ")
	if err != nil {
		return errors.WrapParse("json", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("chmod", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("move", path, err)
	}
	return nil
}
