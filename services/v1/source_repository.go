package v1

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"statuspage-cron/models"
)

// SourceRepository yields the active set of sources. It is asked again at
// every tick, so configuration changes apply without a restart.
type SourceRepository interface {
	Sources(ctx context.Context) (models.Sources, error)
}

// StaticSourceRepository always returns the same sources.
type StaticSourceRepository models.Sources

func (s StaticSourceRepository) Sources(context.Context) (models.Sources, error) {
	return models.Sources(s), nil
}

// pageList accepts either a YAML list of page names or one string holding
// page names separated by line breaks.
type pageList []string

func (p *pageList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*p = pageList{value.Value}
		return nil
	}
	var pages []string
	if err := value.Decode(&pages); err != nil {
		return err
	}
	*p = pages
	return nil
}

type sourceEntry struct {
	Label  string   `yaml:"label"`
	Pages  pageList `yaml:"pages"`
	URL    string   `yaml:"url"`
	APIKey string   `yaml:"apiKey"`
}

type sourcesFile struct {
	Sources []sourceEntry `yaml:"sources"`
}

// FileSourceRepository reads sources from a YAML file:
//
//	sources:
//	  - label: upstream
//	    pages: [foo]
//	    apiKey: foobar
//	  - label: proxy
//	    pages: proxypage
//	    url: https://acme.com
type FileSourceRepository struct {
	path string
}

func NewFileSourceRepository(path string) *FileSourceRepository {
	return &FileSourceRepository{path: path}
}

func (r *FileSourceRepository) Sources(context.Context) (models.Sources, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a YAML sources document.
func ParseSources(data []byte) (models.Sources, error) {
	var doc sourcesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	sources := make(models.Sources, 0, len(doc.Sources))
	for i, e := range doc.Sources {
		s, err := models.NewSource(e.Label, e.Pages, e.URL, e.APIKey)
		if err != nil {
			return nil, fmt.Errorf("source #%d: %w", i+1, err)
		}
		sources = append(sources, s)
	}
	if err := sources.Validate(); err != nil {
		return nil, err
	}
	return sources, nil
}

const createSourcesTable = `
	CREATE TABLE IF NOT EXISTS statuspage_sources (
		label   TEXT PRIMARY KEY,
		pages   TEXT NOT NULL,
		url     TEXT,
		api_key TEXT
	)`

// PostgresSourceRepository reads sources from the statuspage_sources table.
// Page names are stored in one column, separated by line breaks.
type PostgresSourceRepository struct {
	db *sql.DB
}

func NewPostgresSourceRepository(db *sql.DB) *PostgresSourceRepository {
	return &PostgresSourceRepository{db: db}
}

// EnsureSchema creates the table when it does not exist yet.
func (r *PostgresSourceRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSourcesTable); err != nil {
		return fmt.Errorf("create statuspage_sources: %w", err)
	}
	return nil
}

func (r *PostgresSourceRepository) Sources(ctx context.Context) (models.Sources, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT label, pages, url, api_key FROM statuspage_sources ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources models.Sources
	for rows.Next() {
		var (
			label, pages string
			url, apiKey  sql.NullString
		)
		if err := rows.Scan(&label, &pages, &url, &apiKey); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		s, err := models.NewSource(label, []string{pages}, url.String, apiKey.String)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// ReplaceSources swaps the whole table content in one transaction.
func (r *PostgresSourceRepository) ReplaceSources(ctx context.Context, sources models.Sources) error {
	if err := sources.Validate(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM statuspage_sources`); err != nil {
		return fmt.Errorf("clear sources: %w", err)
	}
	for _, s := range sources {
		var apiKey sql.NullString
		if !s.Anonymous() {
			apiKey = sql.NullString{String: s.APIKey, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO statuspage_sources (label, pages, url, api_key) VALUES ($1, $2, $3, $4)`,
			s.Label, strings.Join(s.Pages, "\n"), s.URL, apiKey,
		)
		if err != nil {
			return fmt.Errorf("insert source %q: %w", s.Label, err)
		}
	}
	return tx.Commit()
}

// Seed replaces the stored sources with those read from another repository.
func (r *PostgresSourceRepository) Seed(ctx context.Context, from SourceRepository) (int, error) {
	sources, err := from.Sources(ctx)
	if err != nil {
		return 0, err
	}
	if err := r.ReplaceSources(ctx, sources); err != nil {
		return 0, err
	}
	return len(sources), nil
}
