package project

import (
	"context"
	"errors"
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

	projectErr    error
	scriptErr     error
	charactersErr error

	project    *Project
	scriptURL  string
	characters [][]Character
}

func (f *fakeStore) CreateProject(_ context.Context, p *Project) (*Project, error) {
	f.calls = append(f.calls, "project")
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	created := *p
	created.ID = "p-1"
	f.project = &created
	return &created, nil
}

func (f *fakeStore) SetScriptURL(_ context.Context, _, scriptURL string) error {
	f.calls = append(f.calls, "script_url")
	if f.scriptErr != nil {
		return f.scriptErr
	}
	f.scriptURL = scriptURL
	return nil
}

func (f *fakeStore) CreateCharacters(_ context.Context, characters []Character) error {
	f.calls = append(f.calls, "characters")
	if f.charactersErr != nil {
		return f.charactersErr
	}
	f.characters = append(f.characters, characters)
	return nil
}

var founderCtx = identity.WithIdentity(context.Background(), identity.Identity{ID: "founder-1"})

var launchTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore, objects *objectstoretest.Fake) *Service {
	svc := NewService(store, objects, log.Nop(), nil)
	svc.now = func() time.Time { return launchTime }
	return svc
}

func readyDraft() *Draft {
	d := NewDraft()
	d.Title = "hamlet"
	d.Description = "A prince and a ghost"
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	d.StartDate = &start
	d.Script = script()
	d.Characters = []DraftCharacter{
		{Name: "HAMLET", Description: "prince", PhotoRefURL: "https://ref.test/h.jpg", Profile: &LinkedProfile{ID: "u-1", Username: "ofelia"}},
		{Name: "GHOST", VideoRefURL: "https://ref.test/g.mp4"},
	}
	return d
}

func TestService_LaunchHappyPath(t *testing.T) {
	store := &fakeStore{}
	objects := &objectstoretest.Fake{}
	svc := newTestService(store, objects)

	p, err := svc.Launch(founderCtx, readyDraft())
	require.NoError(t, err)

	assert.Equal(t, []string{"project", "script_url", "characters"}, store.calls)
	assert.Equal(t, "HAMLET", store.project.Title)
	assert.Equal(t, "founder-1", store.project.FounderID)
	assert.Equal(t, DefaultThemeColor, store.project.ThemeColor)

	uploads := objects.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, objectstore.BucketProjectScripts, uploads[0].Bucket)
	assert.Equal(t, "p-1/script_1772366400000.pdf", uploads[0].Path)
	assert.False(t, uploads[0].Opts.Overwrite)
	assert.Equal(t, upload.TypePDF, uploads[0].Opts.ContentType)
	assert.Equal(t, pdf, uploads[0].Body)

	require.NotNil(t, p.ScriptURL)
	assert.Equal(t, "https://storage.test/project_scripts/p-1/script_1772366400000.pdf", *p.ScriptURL)

	require.Len(t, store.characters, 1, "characters go in one batch")
	batch := store.characters[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "p-1", batch[0].ProjectID)
	assert.Equal(t, "https://ref.test/h.jpg", batch[0].ImageRefURL)
	require.NotNil(t, batch[0].AssignedProfileID)
	assert.Equal(t, "u-1", *batch[0].AssignedProfileID)
	assert.Nil(t, batch[1].AssignedProfileID)
	assert.Equal(t, "https://ref.test/g.mp4", batch[1].VideoRefURL)
}

func TestService_LaunchOversizedScriptMakesNoCalls(t *testing.T) {
	store := &fakeStore{}
	objects := &objectstoretest.Fake{}
	svc := newTestService(store, objects)

	d := readyDraft()
	d.Script = &upload.File{Name: "huge.pdf", ContentType: upload.TypePDF, Size: 12 << 20}
	before := d.ToResponse("draft")

	_, err := svc.Launch(founderCtx, d)
	assert.True(t, errors.Is(err, apperr.Kind(apperr.FileTooLarge)))
	assert.Empty(t, store.calls)
	assert.Empty(t, objects.Uploads())
	assert.Equal(t, before, d.ToResponse("draft"))
}

func TestService_LaunchWithoutIdentity(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &objectstoretest.Fake{})

	_, err := svc.Launch(context.Background(), readyDraft())
	assert.Equal(t, apperr.SessionExpired, apperr.CategoryOf(err))
	assert.Empty(t, store.calls)
}

func TestService_LaunchUploadFailureAborts(t *testing.T) {
	store := &fakeStore{}
	objects := &objectstoretest.Fake{Err: apperr.ParseBackendError(400, []byte(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`))}
	svc := newTestService(store, objects)

	_, err := svc.Launch(founderCtx, readyDraft())
	e := apperr.As(err)
	assert.Equal(t, apperr.UploadFailed, e.Category)
	assert.Equal(t, "The resource already exists", e.Message)
	assert.Equal(t, []string{"project"}, store.calls, "no link and no characters after a failed upload")
}

func TestService_LaunchProjectInsertFailure(t *testing.T) {
	store := &fakeStore{projectErr: &pq.Error{Code: "23502", Message: `null value in column "title"`}}
	objects := &objectstoretest.Fake{}
	svc := newTestService(store, objects)

	_, err := svc.Launch(founderCtx, readyDraft())
	e := apperr.As(err)
	assert.Equal(t, apperr.Unexpected, e.Category)
	assert.Equal(t, `null value in column "title"`, e.Message)
	assert.Empty(t, objects.Uploads())
}

func TestService_LaunchCharacterFailure(t *testing.T) {
	store := &fakeStore{charactersErr: errors.New("insert or update violates foreign key")}
	svc := newTestService(store, &objectstoretest.Fake{})

	_, err := svc.Launch(founderCtx, readyDraft())
	assert.Equal(t, apperr.Unexpected, apperr.CategoryOf(err))
	assert.Equal(t, []string{"project", "script_url", "characters"}, store.calls)
}

func TestService_LaunchMinimal(t *testing.T) {
	store := &fakeStore{}
	objects := &objectstoretest.Fake{}
	svc := newTestService(store, objects)

	d := NewDraft()
	d.SkipScript = true

	_, err := svc.Launch(founderCtx, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"project"}, store.calls)
	assert.Empty(t, objects.Uploads())
}

func TestCharacterInsert(t *testing.T) {
	query, args := characterInsert([]Character{
		{ProjectID: "p-1", Name: "HAMLET"},
		{ProjectID: "p-1", Name: "GHOST", AssignedProfileID: strPtr("u-1")},
	})

	assert.Contains(t, query, "VALUES ($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)")
	require.Len(t, args, 12)
	assert.Equal(t, "GHOST", args[7])
}
