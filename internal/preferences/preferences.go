// Package preferences supplies the site's ordered interest category ids.
package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Static serves ids fixed at startup, typically from config.yml.
type Static struct {
	ids []string
}

// NewStatic creates a Static store. Ids are trimmed and blanks dropped.
func NewStatic(ids []string) *Static {
	return &Static{ids: clean(ids)}
}

// CategoryIDs returns a copy of the configured ids.
func (s *Static) CategoryIDs(context.Context) ([]string, error) {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

// Postgres reads the ids from the site_preferences table.
type Postgres struct {
	db     *sqlx.DB
	siteID string
}

// NewPostgres creates a store for one site.
func NewPostgres(db *sqlx.DB, siteID string) *Postgres {
	return &Postgres{db: db, siteID: siteID}
}

// CategoryIDs returns the site's ids. A site without a preferences row has
// no interest categories.
func (p *Postgres) CategoryIDs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `SELECT category_ids FROM site_preferences WHERE site_id = $1`

	err := p.db.QueryRowxContext(ctx, query, p.siteID).Scan(pq.Array(&ids))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get site preferences for %s: %w", p.siteID, err)
	}

	return clean(ids), nil
}

// SetCategoryIDs replaces the site's ids.
func (p *Postgres) SetCategoryIDs(ctx context.Context, ids []string) error {
	query := `
		INSERT INTO site_preferences (site_id, category_ids, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (site_id) DO UPDATE
		SET category_ids = EXCLUDED.category_ids, updated_at = NOW()
	`

	if _, err := p.db.ExecContext(ctx, query, p.siteID, pq.Array(clean(ids))); err != nil {
		return fmt.Errorf("set site preferences for %s: %w", p.siteID, err)
	}

	return nil
}

func clean(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
