package v1

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statuspage-cron/models"
)

func snapshotOf(label string, statuses map[string]models.Status) models.Snapshot {
	resources := make(map[string]models.Resource, len(statuses))
	for id, s := range statuses {
		resources[id] = models.Resource{ID: id, Status: s}
	}
	return models.NewSnapshot(label, time.Unix(0, 0), resources)
}

func TestMetricsStoreStartsEmpty(t *testing.T) {
	m := NewMetricsStore()
	assert.Empty(t, m.Snapshots())
	assert.Empty(t, m.Errors())
	assert.Empty(t, m.StatusOfAllResources())
	assert.Equal(t, "Metrics: empty", m.String())
}

func TestMetricsStoreCommitReplacesWholeSnapshot(t *testing.T) {
	m := NewMetricsStore()
	m.Commit("one", snapshotOf("one", map[string]models.Status{"one/a": models.Operational, "one/b": models.Operational}))
	m.Commit("one", snapshotOf("one", map[string]models.Status{"one/c": models.MajorOutage}))

	assert.Equal(t, map[string]models.ResourceStatus{"one/c": models.MajorOutage}, m.StatusOfAllResources())
}

func TestMetricsStoreFlattensAllSources(t *testing.T) {
	m := NewMetricsStore()
	m.Commit("one", snapshotOf("one", map[string]models.Status{"one/a": models.Operational}))
	m.Commit("two", snapshotOf("two", map[string]models.Status{"two/a": models.PartialOutage}))

	assert.Equal(t, map[string]models.ResourceStatus{
		"one/a": models.Operational,
		"two/a": models.PartialOutage,
	}, m.StatusOfAllResources())

	r, ok := m.Resource("two/a")
	require.True(t, ok)
	assert.Equal(t, models.PartialOutage, r.Status)

	_, ok = m.Resource("three/a")
	assert.False(t, ok)
}

func TestMetricsStoreErrorKeepsLastGoodSnapshot(t *testing.T) {
	m := NewMetricsStore()
	m.Commit("one", snapshotOf("one", map[string]models.Status{"one/a": models.Operational}))
	m.ReportError("one", models.SourceError{SourceLabel: "one", Cause: errors.New("Can't do")})

	_, ok := m.Snapshot("one")
	assert.True(t, ok)
	assert.Contains(t, m.Errors(), "one")
	assert.Len(t, m.StatusOfAllResources(), 1)
}

func TestMetricsStoreCommitClearsError(t *testing.T) {
	m := NewMetricsStore()
	m.ReportError("one", models.SourceError{SourceLabel: "one", Cause: errors.New("Can't do")})
	m.ReportError("two", models.SourceError{SourceLabel: "two", Cause: errors.New("Can't do")})
	m.Commit("one", snapshotOf("one", nil))

	errs := m.Errors()
	assert.NotContains(t, errs, "one")
	assert.Contains(t, errs, "two")
}

func TestMetricsStoreRetain(t *testing.T) {
	m := NewMetricsStore()
	m.Commit("one", snapshotOf("one", map[string]models.Status{"one/a": models.Operational}))
	m.Commit("two", snapshotOf("two", map[string]models.Status{"two/a": models.Operational}))
	m.ReportError("three", models.SourceError{SourceLabel: "three"})

	removed := m.Retain([]string{"two"})
	assert.Equal(t, []string{"one", "three"}, removed)
	assert.Equal(t, map[string]models.ResourceStatus{"two/a": models.Operational}, m.StatusOfAllResources())
	assert.Empty(t, m.Errors())
}

func TestMetricsStoreReadsAreCopies(t *testing.T) {
	m := NewMetricsStore()
	m.Commit("one", snapshotOf("one", map[string]models.Status{"one/a": models.Operational}))

	snaps := m.Snapshots()
	delete(snaps, "one")
	assert.Len(t, m.Snapshots(), 1)
}

func TestMetricsStoreString(t *testing.T) {
	m := NewMetricsStore()
	m.Commit("one", snapshotOf("one", map[string]models.Status{"one/a": models.Operational}))
	m.ReportError("two", models.SourceError{SourceLabel: "two", Cause: errors.New("Can't do")})

	out := m.String()
	assert.Contains(t, out, "Source one:")
	assert.Contains(t, out, "one/a: OPERATIONAL")
	assert.Contains(t, out, "Error two: Can't do")
}

func TestMetricsStoreConcurrentAccess(t *testing.T) {
	m := NewMetricsStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Commit("one", snapshotOf("one", map[string]models.Status{"one/a": models.Operational, "one/b": models.MajorOutage}))
		}()
		go func() {
			defer wg.Done()
			statuses := m.StatusOfAllResources()
			// Either the pre-commit (empty) or the complete snapshot, never half of it.
			assert.Contains(t, []int{0, 2}, len(statuses))
		}()
	}
	wg.Wait()
}
