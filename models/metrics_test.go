package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceID(t *testing.T) {
	assert.Equal(t, "label/page/group/component", ResourceID("label", "page", "group", "component"))
	assert.Equal(t, "label/page/component", ResourceID("label", "page", "", "component"))
	assert.Equal(t, "Second One/Squirrel", ResourceID("Second One", "Squirrel"))
}

func TestSnapshotIsDetachedFromInput(t *testing.T) {
	in := map[string]Resource{
		"one/a": {ID: "one/a", Status: Operational},
	}
	snap := NewSnapshot("one", time.Unix(0, 0), in)

	in["one/b"] = Resource{ID: "one/b", Status: MajorOutage}
	assert.Equal(t, 1, snap.Len())

	out := snap.Resources()
	delete(out, "one/a")
	_, ok := snap.Resource("one/a")
	assert.True(t, ok)
}

func TestSnapshotJSON(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	snap := NewSnapshot("one", at, map[string]Resource{
		"one/g": {ID: "one/g", Status: CategoryDegraded, Description: ""},
		"one/a": {ID: "one/a", Status: Operational, Description: "Some desc"},
	})

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"sourceLabel": "one",
		"fetchedAt": "2024-05-01T10:00:00Z",
		"resources": {
			"one/a": {"resourceId": "one/a", "status": "OPERATIONAL", "category": "UP", "description": "Some desc"},
			"one/g": {"resourceId": "one/g", "status": "DEGRADED", "category": "DEGRADED", "description": ""}
		}
	}`, string(data))
	assert.Equal(t, []string{"one/a", "one/g"}, snap.IDs())
}

func TestSourceError(t *testing.T) {
	cause := errors.New("Can't do")
	e := SourceError{SourceLabel: "one", Message: "Failed obtaining metrics from source", Cause: cause}

	assert.True(t, errors.Is(e, cause))
	assert.Equal(t, "one: Failed obtaining metrics from source: Can't do", e.Error())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cause":"Can't do"`)
}
