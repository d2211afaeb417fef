package project

import "time"

// Project represents a persisted production
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FounderID   string     `json:"founder_id"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	ThemeColor  string     `json:"theme_color"`
	ScriptURL   *string    `json:"script_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Character represents a persisted project role
type Character struct {
	ID                string  `json:"id"`
	ProjectID         string  `json:"project_id"`
	Name              string  `json:"character_name"`
	Description       string  `json:"description"`
	ImageRefURL       string  `json:"image_ref_url"`
	VideoRefURL       string  `json:"video_ref_url"`
	AssignedProfileID *string `json:"assigned_profile_id,omitempty"`
}
