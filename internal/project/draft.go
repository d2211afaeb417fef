package project

import (
	"time"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/upload"
)

// Step is a wizard step
type Step int

const (
	StepScript Step = iota
	StepConcept
	StepCast
	StepProduction
)

var stepNames = [...]string{"script", "concept", "cast", "production"}

func (s Step) String() string {
	if s < StepScript || s > StepProduction {
		return "unknown"
	}
	return stepNames[s]
}

// DefaultThemeColor is the theme color of a new draft
const DefaultThemeColor = "#dc2626"

// Draft is a project being built across the wizard steps. It lives only in
// memory until Launch.
type Draft struct {
	Step       Step         `json:"step"`
	SkipScript bool         `json:"skip_script"`
	Script     *upload.File `json:"script,omitempty"`

	Title       string           `json:"title"`
	Description string           `json:"description"`
	Characters  []DraftCharacter `json:"characters"`

	// Team is shown by the wizard but never persisted
	Team []string `json:"team"`

	StartDate  *time.Time `json:"start_date,omitempty"`
	ThemeColor string     `json:"theme_color"`
	Confirming bool       `json:"confirming"`

	Builder CharacterBuilder `json:"builder"`
}

var (
	ErrScriptRequired = apperr.New(apperr.InvalidInput, "", "Attach a script or choose to skip it.")
	ErrSkipWithScript = apperr.New(apperr.InvalidInput, "", "Remove the attached script before skipping it.")
	ErrNotFinalStep   = apperr.New(apperr.InvalidInput, "", "Complete the production step first.")
	ErrNotConfirming  = apperr.New(apperr.InvalidInput, "", "Confirm the launch first.")
)

// NewDraft creates an empty draft at the script step
func NewDraft() *Draft {
	return &Draft{ThemeColor: DefaultThemeColor}
}

// Locked reports whether the current step blocks advancing
func (d *Draft) Locked() bool {
	return d.Step == StepScript && d.Script == nil && !d.SkipScript
}

// Advance moves to the next step, staying on the last one
func (d *Draft) Advance() error {
	if d.Locked() {
		return ErrScriptRequired
	}
	if d.Step < StepProduction {
		d.Step++
	}
	return nil
}

// Back moves to the previous step, staying on the first one
func (d *Draft) Back() {
	if d.Step > StepScript {
		d.Step--
	}
}

// AttachScript validates f and attaches it. An attached script always
// clears the skip flag; a rejected file leaves the draft unchanged.
func (d *Draft) AttachScript(f *upload.File) error {
	if err := upload.ValidateScript(f); err != nil {
		return err
	}
	d.Script = f
	d.SkipScript = false
	return nil
}

// RemoveScript detaches the script
func (d *Draft) RemoveScript() {
	d.Script = nil
}

// SetSkip sets the skip-script flag. It cannot be set while a script is attached.
func (d *Draft) SetSkip(skip bool) error {
	if skip && d.Script != nil {
		return ErrSkipWithScript
	}
	d.SkipScript = skip
	return nil
}

// Finish opens the launch confirmation from the production step
func (d *Draft) Finish() error {
	if d.Step != StepProduction {
		return ErrNotFinalStep
	}
	d.Confirming = true
	return nil
}

// Confirm closes an open launch confirmation, failing when none is open
func (d *Draft) Confirm() error {
	if !d.Confirming {
		return ErrNotConfirming
	}
	d.Confirming = false
	return nil
}
