package models

import (
	"encoding/json"
	"strings"
)

// ResourceStatus is what a published Resource reports: either a full fidelity
// Status or, for compacted groups, only a Category.
type ResourceStatus interface {
	Category() Category
	String() string
}

// Status is a statuspage.io component status.
type Status string

/*
Status severity:

   OPERATIONAL < UNDER_MAINTENANCE < DEGRADED_PERFORMANCE < PARTIAL_OUTAGE < MAJOR_OUTAGE < UNKNOWN

The order lives in statusRank, not in the declaration order of the constants below.
Anything that compares statuses (group compaction, AtLeast) goes through Rank.
*/

const (
	Operational         Status = "OPERATIONAL"
	UnderMaintenance    Status = "UNDER_MAINTENANCE"
	DegradedPerformance Status = "DEGRADED_PERFORMANCE"
	PartialOutage       Status = "PARTIAL_OUTAGE"
	MajorOutage         Status = "MAJOR_OUTAGE"
	Unknown             Status = "UNKNOWN"
)

var statusRank = map[Status]int{
	Operational:         0,
	UnderMaintenance:    1,
	DegradedPerformance: 2,
	PartialOutage:       3,
	MajorOutage:         4,
	Unknown:             5,
}

var statusCategory = map[Status]Category{
	Operational:         CategoryUp,
	UnderMaintenance:    CategoryDown,
	DegradedPerformance: CategoryDegraded,
	PartialOutage:       CategoryDegraded,
	MajorOutage:         CategoryDown,
	Unknown:             CategoryDown,
}

// Statuses lists every known status from the healthiest to the least healthy.
func Statuses() []Status {
	return []Status{Operational, UnderMaintenance, DegradedPerformance, PartialOutage, MajorOutage, Unknown}
}

// ParseStatus reads a status the way statuspage.io reports it ("major_outage").
// Matching is case insensitive. Empty or unrecognized values become Unknown.
func ParseStatus(value string) Status {
	s := Status(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := statusRank[s]; !ok {
		return Unknown
	}
	return s
}

// Rank is the severity of the status, 0 being the healthiest.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return statusRank[Unknown]
}

func (s Status) Category() Category {
	if c, ok := statusCategory[s]; ok {
		return c
	}
	return CategoryDown
}

func (s Status) String() string {
	return string(s)
}

// AtLeast reports whether s is as healthy as required, or healthier.
func (s Status) AtLeast(required Status) bool {
	return s.Rank() <= required.Rank()
}

// UnmarshalJSON never fails: anything unexpected is Unknown.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = Unknown
		return nil
	}
	*s = ParseStatus(raw)
	return nil
}

// Category is the coarse Up/Degraded/Down view of a status.
type Category string

const (
	CategoryUp       Category = "UP"
	CategoryDegraded Category = "DEGRADED"
	CategoryDown     Category = "DOWN"
)

var categoryRank = map[Category]int{
	CategoryUp:       0,
	CategoryDegraded: 1,
	CategoryDown:     2,
}

func (c Category) Category() Category {
	return c
}

func (c Category) String() string {
	return string(c)
}

// Rank is the severity of the category, 0 being the healthiest.
func (c Category) Rank() int {
	if r, ok := categoryRank[c]; ok {
		return r
	}
	return categoryRank[CategoryDown]
}

// Satisfies reports whether the status falls in the required category or a healthier one.
func Satisfies(status ResourceStatus, required Category) bool {
	return status.Category().Rank() <= required.Rank()
}
