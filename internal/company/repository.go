package company

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles company data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new company repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateCompany inserts a new company owned by founderID
func (r *Repository) CreateCompany(ctx context.Context, name, founderID string) (*Company, error) {
	query := `
		INSERT INTO companies (name, founder_id)
		VALUES ($1, $2)
		RETURNING id, name, founder_id, image_url, created_at
	`

	company := &Company{}
	err := r.db.QueryRowContext(ctx, query, name, founderID).Scan(
		&company.ID,
		&company.Name,
		&company.FounderID,
		&company.ImageURL,
		&company.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	return company, nil
}

// SetImageURL links an uploaded logo to a company
func (r *Repository) SetImageURL(ctx context.Context, companyID, imageURL string) error {
	query := `UPDATE companies SET image_url = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, companyID, imageURL)
	if err != nil {
		return fmt.Errorf("failed to set company image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("company not found")
	}

	return nil
}

// AddMember inserts a company membership
func (r *Repository) AddMember(ctx context.Context, m *Member) (*Member, error) {
	query := `
		INSERT INTO company_members (company_id, profile_id, role, is_active, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, company_id, profile_id, role, is_active, joined_at
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, m.CompanyID, m.ProfileID, m.Role, m.IsActive, m.JoinedAt).Scan(
		&member.ID,
		&member.CompanyID,
		&member.ProfileID,
		&member.Role,
		&member.IsActive,
		&member.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// CreateInvitation inserts an invitation and reads back its generated token
func (r *Repository) CreateInvitation(ctx context.Context, inv *Invitation) (*Invitation, error) {
	query := `
		INSERT INTO company_invitations (company_id, inviter_id, email, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, company_id, inviter_id, email, role, token, created_at
	`

	created := &Invitation{}
	err := r.db.QueryRowContext(ctx, query, inv.CompanyID, inv.InviterID, inv.Email, inv.Role).Scan(
		&created.ID,
		&created.CompanyID,
		&created.InviterID,
		&created.Email,
		&created.Role,
		&created.Token,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return created, nil
}
