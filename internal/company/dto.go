package company

import (
	"slices"

	"github.com/fkhayef/ensamble/internal/directory"
	"github.com/fkhayef/ensamble/internal/feedback"
	"github.com/fkhayef/ensamble/internal/upload"
)

// UpdateNameRequest represents the request to rename a draft
type UpdateNameRequest struct {
	Name string `json:"name" validate:"max=120"`
}

// SearchRequest represents a directory search for the invitee picker
type SearchRequest struct {
	Query string `json:"query" validate:"max=100"`
}

// SelectRequest picks a profile from the current search results
type SelectRequest struct {
	ProfileID string `json:"profile_id" validate:"required"`
}

// StageRequest stages the selected profile with a role
type StageRequest struct {
	Role string `json:"role"`
}

// DraftResponse represents a company draft in API responses
type DraftResponse struct {
	ID string `json:"id"`
	// Name is what the company will be founded as
	Name     string              `json:"name"`
	RawName  string              `json:"raw_name"`
	Image    *upload.File        `json:"image,omitempty"`
	Search   directory.ResultSet `json:"search"`
	Invitees []Invitee           `json:"invitees"`
}

// CommitResponse is returned when a company is founded
type CommitResponse struct {
	*Result
	Outcome feedback.Outcome `json:"outcome"`
}

// ToResponse copies the draft so it can be encoded after its lock is released
func (d *Draft) ToResponse(id string) *DraftResponse {
	search := d.Search
	search.Results = slices.Clone(d.Search.Results)
	if d.Search.Selected != nil {
		selected := *d.Search.Selected
		search.Selected = &selected
	}

	invitees := slices.Clone(d.Invitees)
	if invitees == nil {
		invitees = []Invitee{}
	}

	var image *upload.File
	if d.Image != nil {
		img := *d.Image
		image = &img
	}

	return &DraftResponse{
		ID:       id,
		Name:     NormalizeName(d.Name),
		RawName:  d.Name,
		Image:    image,
		Search:   search,
		Invitees: invitees,
	}
}
