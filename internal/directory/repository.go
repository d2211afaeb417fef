package directory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Repository reads the profiles directory
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new directory repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SearchByUsername returns up to limit profiles whose username contains
// query, case-insensitively
func (r *Repository) SearchByUsername(ctx context.Context, query string, limit int) ([]Profile, error) {
	stmt := `
		SELECT id, username, email, avatar_url
		FROM profiles
		WHERE username ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY username
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, stmt, escapeLike(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Email, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes query match literally inside an ILIKE pattern
func escapeLike(query string) string {
	return likeEscaper.Replace(query)
}
