package company

import "time"

// Role is a company member role, stored as shown to operators
type Role string

const (
	RoleDirector          Role = "Director"
	RoleActor             Role = "Actor"
	RoleTechnician        Role = "Técnico"
	RoleAssistantDirector Role = "Asistente de Dirección"
)

// InviteeRoles are the roles an invitee can be staged with
var InviteeRoles = []Role{RoleActor, RoleTechnician, RoleAssistantDirector}

var roleAliases = map[string]Role{
	"Actor":                  RoleActor,
	"Técnico":                RoleTechnician,
	"Technician":             RoleTechnician,
	"Asistente de Dirección": RoleAssistantDirector,
	"Assistant Director":     RoleAssistantDirector,
}

// ParseInviteeRole resolves a role name, accepting English aliases. An
// empty name defaults to Actor.
func ParseInviteeRole(name string) (Role, bool) {
	if name == "" {
		return RoleActor, true
	}
	r, ok := roleAliases[name]
	return r, ok
}

// Company represents a persisted troupe
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FounderID string    `json:"founder_id"`
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Member represents a user's membership in a company
type Member struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	ProfileID string    `json:"profile_id"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Invitation is a pending invite to join a company; the backend generates Token
type Invitation struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	InviterID string    `json:"inviter_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
