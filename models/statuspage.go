package models

import (
	"encoding/json"
	"fmt"
)

// Page is a statuspage.io page. See https://developer.statuspage.io/#tag/pages
type Page struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Component is a statuspage.io component. See https://developer.statuspage.io/#tag/components
type Component struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// UnmarshalJSON fills in Unknown when the status field is missing altogether.
func (c *Component) UnmarshalJSON(data []byte) error {
	type plain Component
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = Unknown
	}
	*c = Component(p)
	return nil
}

func (c Component) String() string {
	return fmt.Sprintf("Component{id='%s', name='%s', status=%s}", c.ID, c.Name, c.Status)
}

// ComponentGroup is a statuspage.io component group. See https://developer.statuspage.io/#tag/component-groups
type ComponentGroup struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ComponentIDs []string `json:"components"`
}
