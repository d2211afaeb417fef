package directory

// Profile is a platform user as exposed by the public directory
type Profile struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     *string `json:"email,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// PublicEmail returns the profile email, or "" when the user has none
func (p Profile) PublicEmail() string {
	if p.Email == nil {
		return ""
	}
	return *p.Email
}

// Avatar returns the avatar URL, or "" when the user has none
func (p Profile) Avatar() string {
	if p.AvatarURL == nil {
		return ""
	}
	return *p.AvatarURL
}
