package v1

import (
	"context"
	"sync"

	"statuspage-cron/client"
	"statuspage-cron/models"
)

// fixtureClient serves canned pages. Pages are listed in the order given.
type fixtureClient struct {
	pages      []models.Page
	components map[string][]models.Component
	groups     map[string][]models.ComponentGroup

	pagesErr      error
	componentsErr error
	groupsErr     error

	mu     sync.Mutex
	closed int
}

func (f *fixtureClient) ListPages(ctx context.Context) ([]models.Page, error) {
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	return f.pages, ctx.Err()
}

func (f *fixtureClient) ListComponents(ctx context.Context, page models.Page) ([]models.Component, error) {
	if f.componentsErr != nil {
		return nil, f.componentsErr
	}
	return f.components[page.ID], ctx.Err()
}

func (f *fixtureClient) ListComponentGroups(ctx context.Context, page models.Page) ([]models.ComponentGroup, error) {
	if f.groupsErr != nil {
		return nil, f.groupsErr
	}
	return f.groups[page.ID], ctx.Err()
}

func (f *fixtureClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fixtureClient) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// sharedFixture mirrors two pages: one healthy component, and three with outages.
func sharedFixture() *fixtureClient {
	return &fixtureClient{
		pages: []models.Page{
			{ID: "oneId", Name: "oneName"},
			{ID: "twoId", Name: "twoName"},
		},
		components: map[string][]models.Component{
			"oneId": {
				{ID: "deadbeef", Name: "Component #1", Description: "Some desc", Status: models.Operational},
			},
			"twoId": {
				{ID: "hexcat", Name: "down-component", Description: "it is down, alright", Status: models.MajorOutage},
				{ID: "lizard", Name: "some-other-component", Description: "", Status: models.DegradedPerformance},
				{ID: "squirrel", Name: "Squirrel", Description: "", Status: models.MajorOutage},
			},
		},
	}
}

// groupedFixture has one page with two groups and one ungrouped component.
func groupedFixture() *fixtureClient {
	return &fixtureClient{
		pages: []models.Page{
			{ID: "p1", Name: "MyPage"},
			{ID: "p2", Name: "OtherPage"},
		},
		components: map[string][]models.Component{
			"p1": {
				{ID: "foo", Name: "Foo", Status: models.Operational},
				{ID: "a", Name: "aaaa", Description: "Operational Resource", Status: models.Operational},
				{ID: "b", Name: "bbbb", Description: "Another Operational Resource", Status: models.Operational},
				{ID: "c", Name: "cccc", Description: "Degraded Resource", Status: models.DegradedPerformance},
				{ID: "e", Name: "eeee", Description: "Major Outage Resource", Status: models.MajorOutage},
				{ID: "x", Name: "loner", Description: "Not in a group", Status: models.PartialOutage},
			},
			"p2": {
				{ID: "z", Name: "zzzz", Status: models.MajorOutage},
			},
		},
		groups: map[string][]models.ComponentGroup{
			"p1": {
				{ID: "foo", Name: "Foo", ComponentIDs: []string{"a", "b"}},
				{ID: "bar", Name: "Bar", ComponentIDs: []string{"c", "e", "missing"}},
			},
		},
	}
}

func fixedFactory(sp client.StatusPage) client.Factory {
	return client.FactoryFunc(func(string, string) client.StatusPage {
		return sp
	})
}

func mustSource(label string, pages ...string) models.Source {
	s, err := models.NewSource(label, pages, "", "")
	if err != nil {
		panic(err)
	}
	return s
}
