// Package feedback turns orchestration outcomes into notices and
// navigation for the presentation layer.
package feedback

import (
	"encoding/json"
	"time"

	"github.com/fkhayef/ensamble/internal/apperr"
)

const (
	// RouteDashboard is where both flows land after a successful commit
	RouteDashboard = "/dashboard"

	// LaunchGracePeriod lets the operator read the launch confirmation
	LaunchGracePeriod = 1500 * time.Millisecond
	// ErrorBannerTTL is how long a transient error banner stays up
	ErrorBannerTTL = 3 * time.Second
)

// Kind is the tone of a notice
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Style is how a notice is rendered
type Style string

const (
	// StyleModal blocks until explicitly dismissed
	StyleModal Style = "modal"
	// StyleBanner is transient and may dismiss itself
	StyleBanner Style = "banner"
)

// Notice is a status message for the operator
type Notice struct {
	Kind         Kind          `json:"kind"`
	Style        Style         `json:"style"`
	Title        string        `json:"title,omitempty"`
	Message      string        `json:"message"`
	DismissAfter time.Duration `json:"-"`
}

// MarshalJSON encodes DismissAfter in milliseconds
func (n Notice) MarshalJSON() ([]byte, error) {
	type plain Notice
	return json.Marshal(struct {
		plain
		DismissAfterMS int64 `json:"dismiss_after_ms,omitempty"`
	}{plain(n), n.DismissAfter.Milliseconds()})
}

// Navigation asks the presentation layer to move to Route after Delay
type Navigation struct {
	Route string        `json:"route"`
	Delay time.Duration `json:"-"`
}

// MarshalJSON encodes Delay in milliseconds
func (n Navigation) MarshalJSON() ([]byte, error) {
	type plain Navigation
	return json.Marshal(struct {
		plain
		DelayMS int64 `json:"delay_ms"`
	}{plain(n), n.Delay.Milliseconds()})
}

// Outcome is what the operator sees after an action
type Outcome struct {
	Notice     *Notice     `json:"notice,omitempty"`
	Navigation *Navigation `json:"navigation,omitempty"`
}

// Alert is a blocking message for rejected staging actions
func Alert(message string) Outcome {
	return Outcome{Notice: &Notice{Kind: KindError, Style: StyleModal, Message: message}}
}

// CompanyFounded navigates away immediately
func CompanyFounded() Outcome {
	return Outcome{Navigation: &Navigation{Route: RouteDashboard}}
}

// CompanyFailed renders err as a blocking dialog
func CompanyFailed(err error) Outcome {
	e := apperr.As(err)
	message := e.Message
	if message == "" {
		message = "Something went wrong."
	}
	return Outcome{Notice: &Notice{Kind: KindError, Style: StyleModal, Title: e.Title, Message: message}}
}

// ProjectLaunched confirms the launch and navigates after the grace period
func ProjectLaunched() Outcome {
	return Outcome{
		Notice:     &Notice{Kind: KindSuccess, Style: StyleBanner, Message: "PROJECT LAUNCHED SUCCESSFULLY"},
		Navigation: &Navigation{Route: RouteDashboard, Delay: LaunchGracePeriod},
	}
}

// ProjectFailed renders err as a self-dismissing banner; the wizard stays
func ProjectFailed(err error) Outcome {
	message := apperr.As(err).Message
	if message == "" {
		message = "ERROR LAUNCHING PROJECT"
	}
	return Outcome{Notice: &Notice{Kind: KindError, Style: StyleBanner, Message: message, DismissAfter: ErrorBannerTTL}}
}

// Rejected renders a wizard-step rejection, such as a refused file, as a
// self-dismissing banner
func Rejected(err error) Outcome {
	return Outcome{Notice: &Notice{Kind: KindError, Style: StyleBanner, Message: apperr.As(err).Message, DismissAfter: ErrorBannerTTL}}
}
