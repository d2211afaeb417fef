package company

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/directory"
)

func strPtr(s string) *string { return &s }

func profile(id, username, email string) directory.Profile {
	p := directory.Profile{ID: id, Username: username}
	if email != "" {
		p.Email = strPtr(email)
	}
	return p
}

func TestValidateName(t *testing.T) {
	name, err := ValidateName("  hamlet  ")
	require.NoError(t, err)
	assert.Equal(t, "HAMLET", name)

	_, err = ValidateName("ab")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = ValidateName("   ab   ")
	assert.True(t, errors.Is(err, apperr.Kind(apperr.InvalidInput)))

	name, err = ValidateName("ñoño")
	require.NoError(t, err)
	assert.Equal(t, "ÑOÑO", name)
}

func TestDraft_StageDuplicateEmailLeavesListUnchanged(t *testing.T) {
	d := &Draft{}
	require.NoError(t, d.Stage(profile("u-1", "ofelia", "ofelia@example.com"), RoleActor))
	require.NoError(t, d.Stage(profile("u-2", "laertes", "laertes@example.com"), RoleTechnician))
	before := append([]Invitee(nil), d.Invitees...)

	err := d.Stage(profile("u-3", "ofelia2", "ofelia@example.com"), RoleAssistantDirector)
	assert.ErrorIs(t, err, ErrAlreadyStaged)
	assert.Equal(t, before, d.Invitees)
}

func TestDraft_StageWithoutEmailNeverMutates(t *testing.T) {
	d := &Draft{Invitees: []Invitee{{UserID: "u-1", Email: "ofelia@example.com", Role: RoleActor}}}
	before := append([]Invitee(nil), d.Invitees...)

	err := d.Stage(profile("u-2", "horacio", ""), RoleActor)
	assert.ErrorIs(t, err, ErrNoPublicEmail)
	assert.Equal(t, before, d.Invitees)
}

func TestDraft_StageSelectedClearsSearch(t *testing.T) {
	d := &Draft{}
	assert.ErrorIs(t, d.StageSelected(RoleActor), ErrNoSelection)

	seq, _ := d.Search.Begin("ofe")
	d.Search.Deliver(seq, []directory.Profile{profile("u-1", "ofelia", "ofelia@example.com")})
	_, ok := d.Search.Select("u-1")
	require.True(t, ok)

	require.NoError(t, d.StageSelected(RoleTechnician))
	require.Len(t, d.Invitees, 1)
	assert.Equal(t, Invitee{UserID: "u-1", Username: "ofelia", Email: "ofelia@example.com", Role: RoleTechnician}, d.Invitees[0])
	assert.Nil(t, d.Search.Selected)
	assert.Empty(t, d.Search.Results)
	assert.Empty(t, d.Search.Query)
}

func TestDraft_Unstage(t *testing.T) {
	d := &Draft{Invitees: []Invitee{{Email: "a@x"}, {Email: "b@x"}, {Email: "c@x"}}}

	require.NoError(t, d.Unstage(1))
	assert.Equal(t, []Invitee{{Email: "a@x"}, {Email: "c@x"}}, d.Invitees)

	assert.Error(t, d.Unstage(2))
	assert.Error(t, d.Unstage(-1))
	assert.Len(t, d.Invitees, 2)
}

func TestParseInviteeRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"", RoleActor, true},
		{"Actor", RoleActor, true},
		{"Technician", RoleTechnician, true},
		{"Técnico", RoleTechnician, true},
		{"Assistant Director", RoleAssistantDirector, true},
		{"Director", "", false},
		{"Producer", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseInviteeRole(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
