package project

import (
	"fmt"
	"strings"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/directory"
)

// LinkedProfile is a platform user cast as a character
type LinkedProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// DraftCharacter is a role staged on a draft project
type DraftCharacter struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	PhotoRefURL string         `json:"photo_ref_url"`
	VideoRefURL string         `json:"video_ref_url"`
	Profile     *LinkedProfile `json:"profile,omitempty"`
}

// ScratchFields are the editable text fields of the scratch character
type ScratchFields struct {
	Name        string
	Description string
	PhotoRefURL string
	VideoRefURL string
}

// CharacterBuilder edits one character at a time. While EditIndex is set
// the scratch character replaces that position on confirm; otherwise it
// is appended.
type CharacterBuilder struct {
	Open      bool                `json:"open"`
	Scratch   DraftCharacter      `json:"scratch"`
	EditIndex *int                `json:"edit_index,omitempty"`
	Search    directory.ResultSet `json:"search"`
}

var (
	ErrBuilderClosed     = apperr.New(apperr.InvalidInput, "", "Open the character builder first.")
	ErrBuilderOpen       = apperr.New(apperr.InvalidInput, "", "Close the character builder first.")
	ErrCharacterNameless = apperr.New(apperr.InvalidInput, "", "The character needs a name.")
	ErrProfileNotFound   = apperr.New(apperr.InvalidInput, "", "That user is not in the current results.")
)

func errNoCharacter(index int) error {
	return apperr.New(apperr.InvalidInput, "", fmt.Sprintf("No character at position %d.", index))
}

// reset closes the builder and forgets the scratch character and position
func (b *CharacterBuilder) reset() {
	b.Open = false
	b.Scratch = DraftCharacter{}
	b.EditIndex = nil
	b.Search.Reset()
}

// OpenForCreate opens the builder with a blank character
func (d *Draft) OpenForCreate() {
	d.Builder.reset()
	d.Builder.Open = true
}

// OpenForEdit opens the builder pre-filled from the character at index
func (d *Draft) OpenForEdit(index int) error {
	if index < 0 || index >= len(d.Characters) {
		return errNoCharacter(index)
	}

	d.Builder.reset()
	d.Builder.Open = true
	d.Builder.Scratch = d.Characters[index]
	if p := d.Characters[index].Profile; p != nil {
		linked := *p
		d.Builder.Scratch.Profile = &linked
	}
	d.Builder.EditIndex = &index
	return nil
}

// UpdateScratch replaces the scratch text fields. Names are upper-cased.
func (d *Draft) UpdateScratch(f ScratchFields) error {
	if !d.Builder.Open {
		return ErrBuilderClosed
	}
	d.Builder.Scratch.Name = strings.ToUpper(f.Name)
	d.Builder.Scratch.Description = f.Description
	d.Builder.Scratch.PhotoRefURL = f.PhotoRefURL
	d.Builder.Scratch.VideoRefURL = f.VideoRefURL
	return nil
}

// AttachProfile links the profile with id from the builder's search results
// to the scratch character
func (d *Draft) AttachProfile(id string) error {
	if !d.Builder.Open {
		return ErrBuilderClosed
	}
	p, ok := d.Builder.Search.Select(id)
	if !ok {
		return ErrProfileNotFound
	}

	d.Builder.Scratch.Profile = &LinkedProfile{ID: p.ID, Username: p.Username, AvatarURL: p.Avatar()}
	d.Builder.Search.Reset()
	return nil
}

// DetachProfile unlinks the scratch character from any profile
func (d *Draft) DetachProfile() error {
	if !d.Builder.Open {
		return ErrBuilderClosed
	}
	d.Builder.Scratch.Profile = nil
	return nil
}

// ConfirmCharacter stores the scratch character, replacing the remembered
// position or appending, and closes the builder
func (d *Draft) ConfirmCharacter() error {
	if !d.Builder.Open {
		return ErrBuilderClosed
	}
	if strings.TrimSpace(d.Builder.Scratch.Name) == "" {
		return ErrCharacterNameless
	}

	c := d.Builder.Scratch
	if i := d.Builder.EditIndex; i != nil && *i < len(d.Characters) {
		d.Characters[*i] = c
	} else {
		d.Characters = append(d.Characters, c)
	}

	d.Builder.reset()
	return nil
}

// CancelCharacter closes the builder without storing anything
func (d *Draft) CancelCharacter() {
	d.Builder.reset()
}

// RemoveCharacter removes the character at index. Positions shift, so this
// is refused while the builder is open.
func (d *Draft) RemoveCharacter(index int) error {
	if d.Builder.Open {
		return ErrBuilderOpen
	}
	if index < 0 || index >= len(d.Characters) {
		return errNoCharacter(index)
	}
	d.Characters = append(d.Characters[:index:index], d.Characters[index+1:]...)
	return nil
}
