/*
Package statefile reads and writes the household configuration as a YAML file.

The file is the human-editable source of truth: bills, payees, and options in
one document. Saves go through a temp file and rename so a crash mid-write
never leaves a truncated state file behind.
*/
package statefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/warp/cashflow-engine/schedule"
	"github.com/warp/cashflow-engine/store"
)

// Load reads and decodes a state file. A missing file is not an error; it
// yields an empty record set so a fresh install starts from nothing.
func Load(path string) (store.SnapshotRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return store.SnapshotRecord{}, nil
	}
	if err != nil {
		return store.SnapshotRecord{}, fmt.Errorf("read state file: %w", err)
	}

	var record store.SnapshotRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return store.SnapshotRecord{}, fmt.Errorf("parse state file %s: %w", path, err)
	}
	return record, nil
}

// LoadSnapshot loads a state file and converts it to an engine snapshot.
func LoadSnapshot(path string) (schedule.Snapshot, error) {
	record, err := Load(path)
	if err != nil {
		return schedule.Snapshot{}, err
	}
	return record.ToDomain()
}

// Save writes the record set atomically.
func Save(path string, record store.SnapshotRecord) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// SaveSnapshot converts an engine snapshot to wire form and saves it.
func SaveSnapshot(path string, snap schedule.Snapshot) error {
	return Save(path, store.SnapshotFromDomain(snap))
}
