// Package snapshot holds the rule table currently used for classification.
// A snapshot is built once from store rows and swapped in atomically, so
// readers never see a partially loaded table.
package snapshot

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/TimurManjosov/gotiers/internal/engine"
	"github.com/TimurManjosov/gotiers/internal/rules"
)

// ErrVersionDowngrade is returned by Update when the new table declares a
// lower version than the current one.
var ErrVersionDowngrade = errors.New("rule table version downgrade")

// Snapshot is an immutable, classified-ready rule table plus its metadata.
type Snapshot struct {
	ETag     string    `json:"etag"`
	Version  string    `json:"version,omitempty"`
	LoadID   string    `json:"loadId"`
	LoadedAt time.Time `json:"loadedAt"`
	Rules    int       `json:"rules"`
	Enabled  int       `json:"enabled"`
	Genes    int       `json:"genes"`

	version    *semver.Version
	classifier *engine.Classifier
}

// Classifier returns the classifier over this snapshot's table.
func (s *Snapshot) Classifier() *engine.Classifier {
	return s.classifier
}

// Table returns the snapshot's rule table.
func (s *Snapshot) Table() *engine.Table {
	return s.classifier.Table()
}

var (
	current  atomic.Pointer[Snapshot]
	updateMu sync.Mutex
)

// Load returns the current snapshot, or an empty one if none was stored yet.
func Load() *Snapshot {
	if s := current.Load(); s != nil {
		return s
	}
	return Build(nil)
}

// Build groups rows into a table and computes the snapshot metadata.
func Build(rows []rules.Rule) *Snapshot {
	table := engine.NewTable(rows)
	version := tableVersion(rows)

	s := &Snapshot{
		ETag:       computeETag(rows),
		LoadID:     uuid.NewString(),
		LoadedAt:   time.Now().UTC(),
		Rules:      table.Len(),
		Enabled:    table.EnabledCount(),
		Genes:      len(table.Genes()),
		version:    version,
		classifier: engine.NewClassifier(table),
	}
	if version != nil {
		s.Version = version.String()
	}
	return s
}

// Update makes s the current snapshot and notifies subscribers. A table whose
// version is lower than the current one is rejected unless allowDowngrade is set.
func Update(s *Snapshot, allowDowngrade bool) error {
	updateMu.Lock()
	defer updateMu.Unlock()

	if prev := current.Load(); prev != nil && !allowDowngrade {
		if prev.version != nil && s.version != nil && s.version.LessThan(prev.version) {
			return fmt.Errorf("%w: %s is older than current %s", ErrVersionDowngrade, s.Version, prev.Version)
		}
	}

	current.Store(s)
	publishUpdate(Event{ETag: s.ETag, Version: s.Version, Rules: s.Rules})
	return nil
}

// tableVersion returns the highest valid version declared by any row.
// Rows with an empty or malformed Version cell are ignored.
func tableVersion(rows []rules.Rule) *semver.Version {
	var best *semver.Version
	for _, r := range rows {
		if r.Version == "" {
			continue
		}
		v, err := rules.ParseVersion(r.Version)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

// computeETag hashes every cell of every row in table order. The table is
// order-sensitive, so reordering rows changes the ETag.
func computeETag(rows []rules.Rule) string {
	d := xxhash.New()
	for _, r := range rows {
		for _, c := range rules.Columns {
			_, _ = d.WriteString(r.Field(c))
			_, _ = d.WriteString("\x1f")
		}
		_, _ = d.WriteString("\x1e")
	}
	return fmt.Sprintf(`W/"%016x"`, d.Sum64())
}
