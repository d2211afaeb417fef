package company

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/identity"
	"github.com/fkhayef/ensamble/internal/objectstore"
	"github.com/fkhayef/ensamble/internal/objectstore/objectstoretest"
	"github.com/fkhayef/ensamble/internal/upload"
	"github.com/fkhayef/ensamble/pkg/log"
)

// fakeStore records every write in order
type fakeStore struct {
	calls []string

	companyErr    error
	imageErr      error
	memberErr     error
	invitationErr map[string]error

	company     *Company
	imageURL    string
	members     []*Member
	invitations []*Invitation
}

func (f *fakeStore) CreateCompany(_ context.Context, name, founderID string) (*Company, error) {
	f.calls = append(f.calls, "company")
	if f.companyErr != nil {
		return nil, f.companyErr
	}
	f.company = &Company{ID: "c-1", Name: name, FounderID: founderID}
	return f.company, nil
}

func (f *fakeStore) SetImageURL(_ context.Context, companyID, imageURL string) error {
	f.calls = append(f.calls, "image_url")
	if f.imageErr != nil {
		return f.imageErr
	}
	f.imageURL = imageURL
	return nil
}

func (f *fakeStore) AddMember(_ context.Context, m *Member) (*Member, error) {
	f.calls = append(f.calls, "member")
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	created := *m
	created.ID = "m-1"
	f.members = append(f.members, &created)
	return &created, nil
}

func (f *fakeStore) CreateInvitation(_ context.Context, inv *Invitation) (*Invitation, error) {
	f.calls = append(f.calls, "invitation:"+inv.Email)
	if err := f.invitationErr[inv.Email]; err != nil {
		return nil, err
	}
	created := *inv
	created.Token = fmt.Sprintf("tok-%d", len(f.invitations)+1)
	f.invitations = append(f.invitations, &created)
	return &created, nil
}

var founderCtx = identity.WithIdentity(context.Background(), identity.Identity{ID: "founder-1", Email: "hamlet@example.com"})

func newTestService(store *fakeStore, objects *objectstoretest.Fake) *Service {
	svc := NewService(store, objects, "https://ensamble.app/", log.Nop(), nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func stagedDraft() *Draft {
	return &Draft{
		Name: "  hamlet  ",
		Invitees: []Invitee{
			{UserID: "u-1", Email: "ofelia@example.com", Role: RoleActor},
			{UserID: "u-2", Email: "laertes@example.com", Role: RoleTechnician},
		},
	}
}

func TestService_Found(t *testing.T) {
	store := &fakeStore{}
	objects := &objectstoretest.Fake{}
	svc := newTestService(store, objects)

	d := stagedDraft()
	d.Image = upload.NewFile("crest.png", "image/png", []byte("png-bytes"))

	res, err := svc.Found(founderCtx, d)
	require.NoError(t, err)

	assert.Equal(t, []string{"company", "image_url", "member", "invitation:ofelia@example.com", "invitation:laertes@example.com"}, store.calls)
	assert.Equal(t, "HAMLET", res.Company.Name)
	assert.Equal(t, "founder-1", res.Company.FounderID)

	uploads := objects.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, objectstore.BucketCompanyImages, uploads[0].Bucket)
	assert.Equal(t, "c-1/logo.png", uploads[0].Path)
	assert.True(t, uploads[0].Opts.Overwrite)
	assert.Equal(t, "image/png", uploads[0].Opts.ContentType)
	assert.Equal(t, "https://storage.test/company_images/c-1/logo.png", store.imageURL)
	require.NotNil(t, res.Company.ImageURL)

	require.Len(t, store.members, 1)
	director := store.members[0]
	assert.Equal(t, RoleDirector, director.Role)
	assert.Equal(t, "founder-1", director.ProfileID)
	assert.True(t, director.IsActive)
	assert.Equal(t, 2026, director.JoinedAt.Year())

	require.Len(t, res.Invitations, 2)
	assert.Equal(t, "https://ensamble.app/invitacion/confirmar?token=tok-1", res.Invitations[0].URL)
	assert.Equal(t, RoleTechnician, res.Invitations[1].Role)
	assert.Equal(t, "founder-1", store.invitations[1].InviterID)
}

func TestService_FoundInvalidNameMakesNoCalls(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &objectstoretest.Fake{})

	_, err := svc.Found(founderCtx, &Draft{Name: " ab "})
	assert.True(t, errors.Is(err, apperr.Kind(apperr.InvalidInput)))
	assert.Empty(t, store.calls)
}

func TestService_FoundWithoutIdentity(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &objectstoretest.Fake{})

	_, err := svc.Found(context.Background(), stagedDraft())
	assert.Equal(t, apperr.SessionExpired, apperr.CategoryOf(err))
	assert.Empty(t, store.calls)
}

func TestService_FoundDuplicateName(t *testing.T) {
	store := &fakeStore{companyErr: fmt.Errorf("failed to create company: %w", &pq.Error{Code: "23505", Message: "duplicate key"})}
	objects := &objectstoretest.Fake{}
	svc := newTestService(store, objects)

	d := stagedDraft()
	d.Image = upload.NewFile("crest.png", "image/png", []byte("png"))

	_, err := svc.Found(founderCtx, d)
	e := apperr.As(err)
	assert.Equal(t, apperr.DuplicateEntity, e.Category)
	assert.Equal(t, "You already founded a company with that name. Try another stage name.", e.Message)
	assert.Equal(t, []string{"company"}, store.calls)
	assert.Empty(t, objects.Uploads(), "no upload when the insert failed")
}

func TestService_FoundUnexpectedInsertError(t *testing.T) {
	store := &fakeStore{companyErr: fmt.Errorf("failed to create company: %w", &pq.Error{Code: "42501", Message: "permission denied for table companies"})}
	svc := newTestService(store, &objectstoretest.Fake{})

	_, err := svc.Found(founderCtx, stagedDraft())
	e := apperr.As(err)
	assert.Equal(t, apperr.Unexpected, e.Category)
	assert.Equal(t, "permission denied for table companies", e.Message)
}

func TestService_FoundImageFailureIsSwallowed(t *testing.T) {
	store := &fakeStore{}
	objects := &objectstoretest.Fake{Err: errors.New("bucket unavailable")}
	svc := newTestService(store, objects)

	d := stagedDraft()
	d.Image = upload.NewFile("crest.png", "image/png", []byte("png"))

	res, err := svc.Found(founderCtx, d)
	require.NoError(t, err)
	assert.Nil(t, res.Company.ImageURL)
	assert.Equal(t, []string{"company", "member", "invitation:ofelia@example.com", "invitation:laertes@example.com"}, store.calls)
}

func TestService_FoundDirectorFailureStops(t *testing.T) {
	store := &fakeStore{memberErr: errors.New("connection reset")}
	svc := newTestService(store, &objectstoretest.Fake{})

	_, err := svc.Found(founderCtx, stagedDraft())
	assert.Equal(t, apperr.Unexpected, apperr.CategoryOf(err))
	assert.Equal(t, []string{"company", "member"}, store.calls)
}

func TestService_FoundInvitationFailureAbortsLoop(t *testing.T) {
	store := &fakeStore{invitationErr: map[string]error{
		"ofelia@example.com": &pq.Error{Code: "23505", Message: "duplicate key"},
	}}
	svc := newTestService(store, &objectstoretest.Fake{})

	_, err := svc.Found(founderCtx, stagedDraft())
	assert.Equal(t, apperr.DuplicateEntity, apperr.CategoryOf(err))
	assert.Equal(t, []string{"company", "member", "invitation:ofelia@example.com"}, store.calls)
}

func TestService_ConfirmationURLEscapesToken(t *testing.T) {
	svc := newTestService(&fakeStore{}, &objectstoretest.Fake{})
	assert.Equal(t, "https://ensamble.app/invitacion/confirmar?token=a%2Bb%2F%3D", svc.ConfirmationURL("a+b/="))
}
