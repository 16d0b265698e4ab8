package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"
)

// Resource is one locally addressable health entry, built from a component or
// from a whole component group.
type Resource struct {
	ID          string
	Status      ResourceStatus
	Description string
}

type resourceJSON struct {
	ID          string   `json:"resourceId"`
	Status      string   `json:"status"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

func (r Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(resourceJSON{
		ID:          r.ID,
		Status:      r.Status.String(),
		Category:    r.Status.Category(),
		Description: r.Description,
	})
}

// ResourceID joins the non-empty parts with "/".
func ResourceID(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

// Snapshot is the complete set of resources of one source as of one fetch.
// It is read-only once built.
type Snapshot struct {
	sourceLabel string
	fetchedAt   time.Time
	resources   map[string]Resource
}

// NewSnapshot copies resources, so the caller may keep using its map.
func NewSnapshot(sourceLabel string, fetchedAt time.Time, resources map[string]Resource) Snapshot {
	return Snapshot{
		sourceLabel: sourceLabel,
		fetchedAt:   fetchedAt,
		resources:   maps.Clone(resources),
	}
}

func (s Snapshot) SourceLabel() string  { return s.sourceLabel }
func (s Snapshot) FetchedAt() time.Time { return s.fetchedAt }
func (s Snapshot) Len() int             { return len(s.resources) }

// Resources returns a copy of the resource table.
func (s Snapshot) Resources() map[string]Resource {
	out := maps.Clone(s.resources)
	if out == nil {
		out = map[string]Resource{}
	}
	return out
}

func (s Snapshot) Resource(id string) (Resource, bool) {
	r, ok := s.resources[id]
	return r, ok
}

// Statuses maps resource id to status.
func (s Snapshot) Statuses() map[string]ResourceStatus {
	out := make(map[string]ResourceStatus, len(s.resources))
	for id, r := range s.resources {
		out[id] = r.Status
	}
	return out
}

// IDs returns the resource ids in lexical order.
func (s Snapshot) IDs() []string {
	ids := make([]string, 0, len(s.resources))
	for id := range s.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SourceLabel string              `json:"sourceLabel"`
		FetchedAt   time.Time           `json:"fetchedAt"`
		Resources   map[string]Resource `json:"resources"`
	}{
		SourceLabel: s.sourceLabel,
		FetchedAt:   s.fetchedAt,
		Resources:   s.Resources(),
	})
}

// SourceError records why the last update of a source failed.
type SourceError struct {
	SourceLabel string
	Message     string
	Cause       error
	At          time.Time
}

func (e SourceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.SourceLabel, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.SourceLabel, e.Message, e.Cause)
}

func (e SourceError) Unwrap() error {
	return e.Cause
}

func (e SourceError) MarshalJSON() ([]byte, error) {
	cause := ""
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return json.Marshal(struct {
		SourceLabel string    `json:"sourceLabel"`
		Message     string    `json:"message"`
		Cause       string    `json:"cause"`
		At          time.Time `json:"at"`
	}{
		SourceLabel: e.SourceLabel,
		Message:     e.Message,
		Cause:       cause,
		At:          e.At,
	})
}
