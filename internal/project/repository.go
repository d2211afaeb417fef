package project

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Repository handles project data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new project repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateProject inserts a new project
func (r *Repository) CreateProject(ctx context.Context, p *Project) (*Project, error) {
	query := `
		INSERT INTO projects (title, description, founder_id, start_date, theme_color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, description, founder_id, start_date, theme_color, script_url, created_at
	`

	project := &Project{}
	err := r.db.QueryRowContext(ctx, query, p.Title, p.Description, p.FounderID, p.StartDate, p.ThemeColor).Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.FounderID,
		&project.StartDate,
		&project.ThemeColor,
		&project.ScriptURL,
		&project.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// SetScriptURL links an uploaded script to a project
func (r *Repository) SetScriptURL(ctx context.Context, projectID, scriptURL string) error {
	query := `UPDATE projects SET script_url = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, projectID, scriptURL)
	if err != nil {
		return fmt.Errorf("failed to set script url: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("project not found")
	}

	return nil
}

// characterColumns is the number of values bound per character row
const characterColumns = 6

// CreateCharacters inserts all characters in a single statement
func (r *Repository) CreateCharacters(ctx context.Context, characters []Character) error {
	if len(characters) == 0 {
		return nil
	}

	query, args := characterInsert(characters)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create characters: %w", err)
	}

	return nil
}

func characterInsert(characters []Character) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(`INSERT INTO project_characters (project_id, character_name, description, image_ref_url, video_ref_url, assigned_profile_id) VALUES `)

	args := make([]interface{}, 0, len(characters)*characterColumns)
	for i, c := range characters {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * characterColumns
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, c.ProjectID, c.Name, c.Description, c.ImageRefURL, c.VideoRefURL, c.AssignedProfileID)
	}

	return b.String(), args
}
