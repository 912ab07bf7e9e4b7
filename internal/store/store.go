// Package store persists assembled articles and their catalog manifest in a
// SQLite database. The pipeline treats it as an opaque keyed store: full
// records are stored as JSON documents with a few indexed columns alongside.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"trendpress/internal/core"
)

// Store is the SQLite-backed article store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the store under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "trendpress.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// initialize creates the necessary tables.
func (s *Store) initialize() error {
	articlesTable := `
	CREATE TABLE IF NOT EXISTS articles (
		slug TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		tier TEXT NOT NULL,
		summary TEXT,
		published_at DATETIME,
		document TEXT NOT NULL
	);`

	manifestTable := `
	CREATE TABLE IF NOT EXISTS manifest (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		published_at DATETIME,
		total_sources INTEGER NOT NULL,
		sidebar TEXT
	);`

	for _, stmt := range []string{articlesTable, manifestTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// SaveArticle upserts an assembled article and its manifest row. The slug is
// the stable key; regenerating a topic replaces the previous record.
func (s *Store) SaveArticle(article core.Article) error {
	document, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("failed to marshal article: %w", err)
	}

	query, args, err := sq.Insert("articles").
		Options("OR REPLACE").
		Columns("slug", "id", "title", "category", "tier", "summary", "published_at", "document").
		Values(article.Slug, article.ID, article.Title, article.Category,
			string(article.Tier), article.Summary, article.PublishedAt, string(document)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}

	return s.saveManifest(article)
}

func (s *Store) saveManifest(article core.Article) error {
	manifest := manifestRow(article)
	sidebar, err := json.Marshal(manifest.SidebarSections)
	if err != nil {
		return fmt.Errorf("failed to marshal sidebar: %w", err)
	}

	query, args, err := sq.Insert("manifest").
		Options("OR REPLACE").
		Columns("slug", "title", "published_at", "total_sources", "sidebar").
		Values(manifest.Slug, manifest.Title, manifest.PublishedAt,
			manifest.TotalSources, string(sidebar)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build manifest insert: %w", err)
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}

// manifestRow projects an article to its catalog manifest entry.
func manifestRow(article core.Article) core.Manifest {
	var sidebar []string
	for _, sec := range article.Sections {
		sidebar = append(sidebar, sec.Heading)
	}
	if article.Outline != nil {
		sidebar = append(sidebar, "Hooks", "Platform Tips", "Steps")
	}
	return core.Manifest{
		Slug:            article.Slug,
		Title:           article.Title,
		PublishedAt:     article.PublishedAt,
		TotalSources:    len(article.AllSources),
		SidebarSections: sidebar,
	}
}

// GetArticleBySlug retrieves one full article record.
func (s *Store) GetArticleBySlug(slug string) (*core.Article, error) {
	query, args, err := sq.Select("document").
		From("articles").
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var document string
	if err := s.db.QueryRow(query, args...).Scan(&document); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("article not found: %s", slug)
		}
		return nil, fmt.Errorf("failed to query article: %w", err)
	}

	var article core.Article
	if err := json.Unmarshal([]byte(document), &article); err != nil {
		return nil, fmt.Errorf("failed to unmarshal article: %w", err)
	}
	return &article, nil
}

// ListManifest returns the catalog manifest, newest first.
func (s *Store) ListManifest() ([]core.Manifest, error) {
	query, args, err := sq.Select("slug", "title", "published_at", "total_sources", "sidebar").
		From("manifest").
		OrderBy("published_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query manifest: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var manifests []core.Manifest
	for rows.Next() {
		var m core.Manifest
		var publishedAt time.Time
		var sidebar string
		if err := rows.Scan(&m.Slug, &m.Title, &publishedAt, &m.TotalSources, &sidebar); err != nil {
			return nil, fmt.Errorf("failed to scan manifest row: %w", err)
		}
		m.PublishedAt = publishedAt
		if sidebar != "" {
			if err := json.Unmarshal([]byte(sidebar), &m.SidebarSections); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sidebar: %w", err)
			}
		}
		manifests = append(manifests, m)
	}
	return manifests, rows.Err()
}

// ListSummaries returns the search corpus: one summary record per persisted
// article.
func (s *Store) ListSummaries() ([]core.SummaryRecord, error) {
	query, args, err := sq.Select("slug", "title", "summary", "category").
		From("articles").
		OrderBy("published_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []core.SummaryRecord
	for rows.Next() {
		var r core.SummaryRecord
		var summary sql.NullString
		if err := rows.Scan(&r.Slug, &r.Title, &summary, &r.Category); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		r.Summary = summary.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
