package v1

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"statuspage-cron/client"
	"statuspage-cron/models"
)

const (
	textNoPages  = "No pages configured!"
	textNoAPIKey = "No API key provided, make sure desired pages are available without authentication."
)

type ConnectionKind string

const (
	ConnectionOK    ConnectionKind = "ok"
	ConnectionError ConnectionKind = "error"
)

// ConnectionResult is what an operator sees after checking a source definition.
type ConnectionResult struct {
	Kind    ConnectionKind `json:"kind"`
	Message string         `json:"message"`
}

// CheckConnection verifies that a source definition reaches its provider and
// that every configured page exists there. Unlike an update, missing pages
// are reported as an error here.
func CheckConnection(ctx context.Context, factory client.Factory, url, apiKey, pages string) ConnectionResult {
	if factory == nil {
		factory = client.DefaultFactory
	}

	source, err := models.NewSource("connection-check", []string{pages}, url, apiKey)
	if err != nil {
		return ConnectionResult{Kind: ConnectionError, Message: textNoPages}
	}

	sp := factory.Create(source.URL, source.APIKey)
	defer sp.Close()

	actual, err := sp.ListPages(ctx)
	if err != nil {
		return ConnectionResult{Kind: ConnectionError, Message: "Verification failed: " + err.Error()}
	}

	names := make([]string, 0, len(actual))
	for _, p := range actual {
		names = append(names, p.Name)
	}

	var missing []string
	for _, p := range source.Pages {
		if !slices.Contains(names, p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return ConnectionResult{
			Kind: ConnectionError,
			Message: fmt.Sprintf("Some configured pages [%s] do not exist: [%s]",
				strings.Join(source.Pages, ", "), strings.Join(missing, ", ")),
		}
	}

	var sb strings.Builder
	sb.WriteString("Connected!")
	if source.Anonymous() {
		sb.WriteString(" " + textNoAPIKey)
	}
	sb.WriteString(" Existing pages: " + strings.Join(names, ", "))
	return ConnectionResult{Kind: ConnectionOK, Message: sb.String()}
}
