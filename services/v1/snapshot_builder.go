package v1

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"statuspage-cron/client"
	"statuspage-cron/models"
)

// SchemaVersion selects how pages are read and how resource ids are built.
type SchemaVersion string

const (
	// SchemaV1 reads components only and publishes "label/component".
	SchemaV1 SchemaVersion = "v1"
	// SchemaV2 also reads component groups and publishes "label/page/component",
	// "label/page/group/component" and "label/page/group" for the group itself.
	SchemaV2 SchemaVersion = "v2"
)

// ParseSchemaVersion accepts "v1" and "v2".
func ParseSchemaVersion(raw string) (SchemaVersion, error) {
	switch v := SchemaVersion(raw); v {
	case SchemaV1, SchemaV2:
		return v, nil
	default:
		return "", fmt.Errorf("unknown schema version %q", raw)
	}
}

func (v SchemaVersion) grouped() bool {
	return v == SchemaV2
}

var ErrEmptyGroup = errors.New("component group has no known components")

// SnapshotBuilder turns what one source reports into a Snapshot.
type SnapshotBuilder struct {
	schema SchemaVersion
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewSnapshotBuilder(schema SchemaVersion, log logrus.FieldLogger) *SnapshotBuilder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SnapshotBuilder{schema: schema, log: log, now: time.Now}
}

// Build fetches the selected pages of source through sp. Any failed call fails
// the whole build. No selected page on the remote side is an empty snapshot,
// not an error.
func (b *SnapshotBuilder) Build(ctx context.Context, source models.Source, sp client.StatusPage) (models.Snapshot, error) {
	fetchedAt := b.now()

	pages, err := sp.ListPages(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}

	resources := make(map[string]models.Resource)
	add := func(r models.Resource) {
		if _, exists := resources[r.ID]; exists {
			b.log.WithFields(logrus.Fields{
				"source":   source.Label,
				"resource": r.ID,
			}).Warn("Duplicate resource id, keeping the first one")
			return
		}
		resources[r.ID] = r
	}

	for _, page := range pages {
		if !slices.Contains(source.Pages, page.Name) {
			continue
		}

		components, err := sp.ListComponents(ctx, page)
		if err != nil {
			return models.Snapshot{}, err
		}

		if !b.schema.grouped() {
			for _, c := range components {
				add(models.Resource{
					ID:          models.ResourceID(source.Label, b.name(source, c.ID, c.Name)),
					Status:      c.Status,
					Description: c.Description,
				})
			}
			continue
		}

		groups, err := sp.ListComponentGroups(ctx, page)
		if err != nil {
			return models.Snapshot{}, err
		}
		if err := b.addPage(source, page, components, groups, add); err != nil {
			return models.Snapshot{}, err
		}
	}

	return models.NewSnapshot(source.Label, fetchedAt, resources), nil
}

func (b *SnapshotBuilder) addPage(
	source models.Source,
	page models.Page,
	components []models.Component,
	groups []models.ComponentGroup,
	add func(models.Resource),
) error {
	byID := make(map[string]models.Component, len(components))
	for _, c := range components {
		byID[c.ID] = c
	}

	// statuspage.io also lists each group as a component of its own; those are
	// published as the group aggregate below.
	handled := make(map[string]bool, len(components))
	for _, g := range groups {
		handled[g.ID] = true
	}

	for _, g := range groups {
		groupName := b.name(source, g.ID, g.Name)

		members := make([]models.Component, 0, len(g.ComponentIDs))
		statuses := make([]models.Status, 0, len(g.ComponentIDs))
		for _, id := range g.ComponentIDs {
			c, ok := byID[id]
			if !ok {
				continue
			}
			handled[id] = true
			members = append(members, c)
			statuses = append(statuses, c.Status)
		}
		if len(statuses) == 0 {
			return fmt.Errorf("%w: page %q group %q", ErrEmptyGroup, page.Name, groupName)
		}

		// The aggregate goes first so no member can take its id.
		add(models.Resource{
			ID:     models.ResourceID(source.Label, page.Name, groupName),
			Status: Compact(statuses),
		})
		for _, c := range members {
			add(models.Resource{
				ID:          models.ResourceID(source.Label, page.Name, groupName, b.name(source, c.ID, c.Name)),
				Status:      c.Status,
				Description: c.Description,
			})
		}
	}

	for _, c := range components {
		if handled[c.ID] {
			continue
		}
		add(models.Resource{
			ID:          models.ResourceID(source.Label, page.Name, b.name(source, c.ID, c.Name)),
			Status:      c.Status,
			Description: c.Description,
		})
	}
	return nil
}

// name falls back to the id for components and groups reported without a name.
func (b *SnapshotBuilder) name(source models.Source, id, name string) string {
	if name != "" {
		return name
	}
	b.log.WithFields(logrus.Fields{
		"source": source.Label,
		"id":     id,
	}).Warn("Unnamed component, using its id")
	return id
}
