// Package deletion removes video records together with their on-disk
// artifacts.
package deletion

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/columnfella/Transcripting-webapp/artifacts"
	"github.com/columnfella/Transcripting-webapp/store"
)

// Coordinator deletes records and their artifacts. The metadata mutation
// always commits before artifact removal is attempted: a crash mid-deletion
// leaves an orphaned file rather than a record pointing at nothing, and files
// are easier to garbage-collect later than broken references.
type Coordinator struct {
	Store     *store.Store
	Artifacts *artifacts.Manager
	Log       *logrus.Logger
}

// NewCoordinator wires a Coordinator.
func NewCoordinator(st *store.Store, mgr *artifacts.Manager, log *logrus.Logger) *Coordinator {
	return &Coordinator{Store: st, Artifacts: mgr, Log: log}
}

// DeleteOne removes the record with the given id, then best-effort deletes
// its video, thumbnail and report files. Returns store.ErrVideoNotFound when
// the id is unknown; a second call for the same id fails the same way.
func (c *Coordinator) DeleteOne(id string) error {
	rec, err := c.Store.Remove(id)
	if err != nil {
		return err
	}
	c.Artifacts.DeleteArtifacts(rec)
	c.Log.Infof("Deleted video %s (including thumbnail and report)", id)
	return nil
}

// BatchResult describes one id's outcome within a batch deletion.
type BatchResult struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// DeleteMany applies DeleteOne independently per id. Per-id failures are
// collected; the batch never aborts.
func (c *Coordinator) DeleteMany(ids []string) (deleted int, failures []BatchResult) {
	for _, id := range ids {
		if err := c.DeleteOne(id); err != nil {
			failures = append(failures, BatchResult{ID: id, Error: err.Error()})
			continue
		}
		deleted++
	}
	return deleted, failures
}

// DeleteAll clears every record and removes video and thumbnail files in one
// pass. Report documents are intentionally left on disk; only DeleteOne
// removes those.
func (c *Coordinator) DeleteAll() (int, error) {
	cleared, err := c.Store.Reset()
	if err != nil {
		return 0, fmt.Errorf("clear metadata: %w", err)
	}
	for _, rec := range cleared {
		c.Artifacts.DeleteMediaArtifacts(rec)
	}
	c.Log.Infof("Deleted all %d videos and thumbnails", len(cleared))
	return len(cleared), nil
}
