// Package workdir owns the transient paths of the service: the uuid-keyed
// directories pipeline runs rasterize into and the scratch area uploads are
// saved to. Every run gets its own directory so concurrent runs never share
// paths. Removal is best-effort and only logged: cleanup failure must never
// mask a run's real outcome.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	runPrefix      = "run-"
	uploadsDirName = "uploads"
	uploadPrefix   = "upload_"
)

// Manager creates and removes transient paths under one base directory.
type Manager struct {
	base string
}

// NewManager ensures the base directory exists and returns a manager for it.
func NewManager(base string) (*Manager, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create work root %s: %w", base, err)
	}
	return &Manager{base: base}, nil
}

// UploadsDir returns the directory scratch uploads are saved to. The manager
// owns the work-root layout, so the sweeper knows every transient location.
func (m *Manager) UploadsDir() string {
	return filepath.Join(m.base, uploadsDirName)
}

// NewRun creates a fresh directory owned by exactly one pipeline run.
func (m *Manager) NewRun() (string, error) {
	dir := filepath.Join(m.base, runPrefix+uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}
	return dir, nil
}

// Remove deletes a run directory and whatever is left inside it. Failure is
// logged, never returned.
func (m *Manager) Remove(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("could not remove run directory")
	}
}

// Sweep removes run directories and scratch uploads last modified before
// maxAge ago, catching leftovers from processes killed before their own
// cleanup ran. Returns the number of entries removed.
func (m *Manager) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := m.sweepRuns(cutoff) + m.sweepUploads(cutoff)
	if removed > 0 {
		log.Info().Int("removed", removed).Str("dir", m.base).Msg("swept stale work entries")
	}
	return removed
}

func (m *Manager) sweepRuns(cutoff time.Time) int {
	entries, err := os.ReadDir(m.base)
	if err != nil {
		log.Warn().Err(err).Str("dir", m.base).Msg("sweep: could not read work root")
		return 0
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), runPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(m.base, e.Name())
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("sweep: could not remove run directory")
			continue
		}
		removed++
	}
	return removed
}

func (m *Manager) sweepUploads(cutoff time.Time) int {
	dir := m.UploadsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", dir).Msg("sweep: could not read uploads directory")
		}
		return 0
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), uploadPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("sweep: could not remove stale upload")
			continue
		}
		removed++
	}
	return removed
}
