package project

import (
	"slices"
	"time"

	"github.com/fkhayef/ensamble/internal/feedback"
	"github.com/fkhayef/ensamble/internal/upload"
)

// DateLayout is the wire format of the production start date
const DateLayout = "2006-01-02"

// SkipScriptRequest toggles the skip-script flag
type SkipScriptRequest struct {
	Skip bool `json:"skip"`
}

// ConceptRequest represents the concept step fields
type ConceptRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// ProductionRequest represents the production step fields
type ProductionRequest struct {
	StartDate  string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	ThemeColor string `json:"theme_color" validate:"omitempty,hexcolor"`
}

// OpenCharacterRequest opens the character builder; an index edits that character
type OpenCharacterRequest struct {
	Index *int `json:"index,omitempty" validate:"omitempty,min=0"`
}

// ScratchRequest represents the scratch character fields
type ScratchRequest struct {
	Name        string `json:"name" validate:"max=120"`
	Description string `json:"description" validate:"max=2000"`
	PhotoRefURL string `json:"photo_ref_url" validate:"omitempty,url"`
	VideoRefURL string `json:"video_ref_url" validate:"omitempty,url"`
}

// SearchRequest represents a directory search for the character builder
type SearchRequest struct {
	Query string `json:"query" validate:"max=100"`
}

// AttachRequest links a searched profile to the scratch character; an
// empty profile id unlinks it
type AttachRequest struct {
	ProfileID string `json:"profile_id"`
}

// DraftResponse represents a project draft in API responses
type DraftResponse struct {
	ID         string       `json:"id"`
	Step       Step         `json:"step"`
	StepName   string       `json:"step_name"`
	Locked     bool         `json:"locked"`
	SkipScript bool         `json:"skip_script"`
	Script     *upload.File `json:"script,omitempty"`

	Title       string           `json:"title"`
	Description string           `json:"description"`
	Characters  []DraftCharacter `json:"characters"`
	Team        []string         `json:"team"`
	StartDate   string           `json:"start_date,omitempty"`
	ThemeColor  string           `json:"theme_color"`
	Confirming  bool             `json:"confirming"`

	Builder CharacterBuilder `json:"builder"`
}

// LaunchResponse is returned when a project is launched
type LaunchResponse struct {
	Project *Project         `json:"project"`
	Outcome feedback.Outcome `json:"outcome"`
}

// ToResponse copies the draft so it can be encoded after its lock is released
func (d *Draft) ToResponse(id string) *DraftResponse {
	resp := &DraftResponse{
		ID:          id,
		Step:        d.Step,
		StepName:    d.Step.String(),
		Locked:      d.Locked(),
		SkipScript:  d.SkipScript,
		Title:       d.Title,
		Description: d.Description,
		Characters:  make([]DraftCharacter, len(d.Characters)),
		Team:        slices.Clone(d.Team),
		ThemeColor:  d.ThemeColor,
		Confirming:  d.Confirming,
		Builder:     d.Builder.snapshot(),
	}

	if d.Script != nil {
		script := *d.Script
		resp.Script = &script
	}
	if d.StartDate != nil {
		resp.StartDate = d.StartDate.Format(DateLayout)
	}
	for i, c := range d.Characters {
		resp.Characters[i] = c.clone()
	}
	if resp.Team == nil {
		resp.Team = []string{}
	}

	return resp
}

func (c DraftCharacter) clone() DraftCharacter {
	if c.Profile != nil {
		p := *c.Profile
		c.Profile = &p
	}
	return c
}

func (b CharacterBuilder) snapshot() CharacterBuilder {
	b.Scratch = b.Scratch.clone()
	if b.EditIndex != nil {
		i := *b.EditIndex
		b.EditIndex = &i
	}
	b.Search.Results = slices.Clone(b.Search.Results)
	if b.Search.Selected != nil {
		p := *b.Search.Selected
		b.Search.Selected = &p
	}
	return b
}

// parseDate reads an optional start date
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

