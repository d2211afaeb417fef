package company

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/directory"
	"github.com/fkhayef/ensamble/internal/upload"
)

// MinNameLength is the shortest accepted normalized company name
const MinNameLength = 3

// Invitee is a staged, not yet persisted invitation candidate
type Invitee struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Draft is a company being founded. It lives only in memory until Found.
type Draft struct {
	Name     string              `json:"name"`
	Image    *upload.File        `json:"image,omitempty"`
	Search   directory.ResultSet `json:"search"`
	Invitees []Invitee           `json:"invitees"`
}

var (
	ErrNoSelection   = apperr.New(apperr.InvalidInput, "", "Select a user first.")
	ErrNoPublicEmail = apperr.New(apperr.InvalidInput, "", "The user has no public email.")
	ErrAlreadyStaged = apperr.New(apperr.InvalidInput, "", "This user is already on the list.")
	ErrInvalidName   = apperr.New(apperr.InvalidInput, "Invalid name", "The company name is required.")
	ErrInvalidRole   = apperr.New(apperr.InvalidInput, "", "Choose Actor, Técnico or Asistente de Dirección.")
	ErrNotInResults  = apperr.New(apperr.InvalidInput, "", "That user is not in the current results.")
)

// NormalizeName trims and upper-cases a company name
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ValidateName fails with InvalidInput when the normalized name is too short
func ValidateName(name string) (string, error) {
	normalized := NormalizeName(name)
	if utf8.RuneCountInString(normalized) < MinNameLength {
		return "", ErrInvalidName
	}
	return normalized, nil
}

// Stage appends p to the pending invitees. Users without an email, or
// whose email is already staged, are rejected and the list is unchanged.
// On success the search and selection are cleared.
func (d *Draft) Stage(p directory.Profile, role Role) error {
	email := p.PublicEmail()
	if email == "" {
		return ErrNoPublicEmail
	}
	for _, inv := range d.Invitees {
		if inv.Email == email {
			return ErrAlreadyStaged
		}
	}

	d.Invitees = append(d.Invitees, Invitee{
		UserID:    p.ID,
		Username:  p.Username,
		Email:     email,
		Role:      role,
		AvatarURL: p.Avatar(),
	})
	d.Search.Reset()
	return nil
}

// StageSelected stages the profile picked from the search results
func (d *Draft) StageSelected(role Role) error {
	if d.Search.Selected == nil {
		return ErrNoSelection
	}
	return d.Stage(*d.Search.Selected, role)
}

// Unstage removes the invitee at index
func (d *Draft) Unstage(index int) error {
	if index < 0 || index >= len(d.Invitees) {
		return apperr.New(apperr.InvalidInput, "", fmt.Sprintf("No invitee at position %d.", index))
	}
	d.Invitees = append(d.Invitees[:index:index], d.Invitees[index+1:]...)
	return nil
}
