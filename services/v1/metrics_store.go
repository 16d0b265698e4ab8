package v1

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"statuspage-cron/models"
)

// MetricsStore holds the latest snapshot and the latest error of every source.
//
// A successful commit clears the error of its source. A reported error leaves
// the last good snapshot of its source in place; readers can tell it is stale
// by the error being present.
type MetricsStore struct {
	mu        sync.RWMutex
	snapshots map[string]models.Snapshot
	errors    map[string]models.SourceError
}

func NewMetricsStore() *MetricsStore {
	return &MetricsStore{
		snapshots: make(map[string]models.Snapshot),
		errors:    make(map[string]models.SourceError),
	}
}

// Commit replaces the snapshot of label.
func (m *MetricsStore) Commit(label string, snapshot models.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[label] = snapshot
	delete(m.errors, label)
}

// ReportError replaces the error of label.
func (m *MetricsStore) ReportError(label string, sourceErr models.SourceError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[label] = sourceErr
}

// Retain drops everything about labels not in keep and returns the dropped labels, sorted.
func (m *MetricsStore) Retain(keep []string) []string {
	wanted := make(map[string]bool, len(keep))
	for _, l := range keep {
		wanted[l] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := map[string]bool{}
	for label := range m.snapshots {
		if !wanted[label] {
			delete(m.snapshots, label)
			removed[label] = true
		}
	}
	for label := range m.errors {
		if !wanted[label] {
			delete(m.errors, label)
			removed[label] = true
		}
	}

	out := make([]string, 0, len(removed))
	for label := range removed {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

func (m *MetricsStore) Snapshots() map[string]models.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.snapshots)
}

func (m *MetricsStore) Snapshot(label string) (models.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[label]
	return s, ok
}

func (m *MetricsStore) Errors() map[string]models.SourceError {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.errors)
}

// StatusOfAllResources flattens every current snapshot into resource id -> status.
func (m *MetricsStore) StatusOfAllResources() map[string]models.ResourceStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]models.ResourceStatus)
	for _, s := range m.snapshots {
		maps.Copy(out, s.Statuses())
	}
	return out
}

// Resource looks a resource id up across all snapshots.
func (m *MetricsStore) Resource(id string) (models.Resource, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.snapshots {
		if r, ok := s.Resource(id); ok {
			return r, true
		}
	}
	return models.Resource{}, false
}

func (m *MetricsStore) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.snapshots) == 0 && len(m.errors) == 0 {
		return "Metrics: empty"
	}

	labels := make([]string, 0, len(m.snapshots))
	for label := range m.snapshots {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var sb strings.Builder
	sb.WriteString("Metrics:\n")
	for _, label := range labels {
		s := m.snapshots[label]
		fmt.Fprintf(&sb, "Source %s:\n", label)
		for _, id := range s.IDs() {
			r, _ := s.Resource(id)
			fmt.Fprintf(&sb, "\t%s: %s\n", id, r.Status)
		}
	}

	errLabels := make([]string, 0, len(m.errors))
	for label := range m.errors {
		errLabels = append(errLabels, label)
	}
	sort.Strings(errLabels)
	for _, label := range errLabels {
		fmt.Fprintf(&sb, "Error %s: %v\n", label, m.errors[label].Cause)
	}
	return sb.String()
}
