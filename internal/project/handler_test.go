package project

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/ensamble/internal/directory"
	"github.com/fkhayef/ensamble/internal/objectstore/objectstoretest"
	"github.com/fkhayef/ensamble/internal/session"
	"github.com/fkhayef/ensamble/pkg/log"
	"github.com/fkhayef/ensamble/pkg/middleware"
)

type stubDirectory struct {
	profiles []directory.Profile
}

func (s *stubDirectory) SearchByUsername(context.Context, string, int) ([]directory.Profile, error) {
	return s.profiles, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *fakeStore
	objects *objectstoretest.Fake
}

func newTestAPI(t *testing.T) *testAPI {
	store := &fakeStore{}
	objects := &objectstoretest.Fake{}
	dir := directory.NewService(&stubDirectory{profiles: []directory.Profile{
		{ID: "u-1", Username: "ofelia"},
	}}, log.Nop(), nil)

	h := NewHandler(session.NewStore[Draft](time.Hour), newTestService(store, objects), dir, nil, log.Nop())
	return &testAPI{t: t, handler: middleware.TestUserMiddleware(h.Routes()), store: store, objects: objects}
}

func (a *testAPI) send(r *http.Request) (int, envelope) {
	a.t.Helper()
	r.Header.Set("X-Test-User-ID", "founder-1")

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (a *testAPI) do(method, path, body string) (int, envelope) {
	a.t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	return a.send(r)
}

func (a *testAPI) draft(env envelope) DraftResponse {
	a.t.Helper()
	var d DraftResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &d))
	return d
}

func (a *testAPI) createDraft() string {
	status, env := a.do(http.MethodPost, "/drafts", "")
	require.Equal(a.t, http.StatusCreated, status)
	return a.draft(env).ID
}

func scriptUpload(t *testing.T, path, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="script"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPut, path, body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestHandler_LaunchFlow(t *testing.T) {
	api := newTestAPI(t)
	base := "/drafts/" + api.createDraft()

	status, env := api.do(http.MethodPost, base+"/advance", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"notice":{"kind":"error","style":"banner","message":"Attach a script or choose to skip it.","dismiss_after_ms":3000}}`, string(env.Data))

	status, env = api.send(scriptUpload(t, base+"/script", "hamlet.pdf", "application/pdf", pdf))
	require.Equal(t, http.StatusOK, status)
	d := api.draft(env)
	require.NotNil(t, d.Script)
	assert.False(t, d.Locked)

	status, _ = api.do(http.MethodPost, base+"/advance", "")
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodPut, base+"/concept", `{"title":"hamlet","description":"A prince"}`)
	require.Equal(t, http.StatusOK, status)
	api.do(http.MethodPost, base+"/advance", "")

	// Cast two characters, linking the first to a profile
	api.do(http.MethodPost, base+"/characters/open", "")
	api.do(http.MethodPut, base+"/characters/scratch", `{"name":"hamlet"}`)
	status, env = api.do(http.MethodPost, base+"/characters/search", `{"query":"ofe"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"username":"ofelia"`)
	status, _ = api.do(http.MethodPost, base+"/characters/attach", `{"profile_id":"u-1"}`)
	require.Equal(t, http.StatusOK, status)
	api.do(http.MethodPost, base+"/characters/confirm", "")

	api.do(http.MethodPost, base+"/characters/open", "")
	api.do(http.MethodPut, base+"/characters/scratch", `{"name":"ghost","video_ref_url":"https://ref.test/g.mp4"}`)
	status, env = api.do(http.MethodPost, base+"/characters/confirm", "")
	require.Equal(t, http.StatusOK, status)
	d = api.draft(env)
	require.Len(t, d.Characters, 2)
	assert.Equal(t, "HAMLET", d.Characters[0].Name)
	require.NotNil(t, d.Characters[0].Profile)

	api.do(http.MethodPost, base+"/advance", "")
	status, env = api.do(http.MethodPut, base+"/production", `{"start_date":"2026-06-01","theme_color":"#112233"}`)
	require.Equal(t, http.StatusOK, status)
	d = api.draft(env)
	assert.Equal(t, StepProduction, d.Step)
	assert.Equal(t, "2026-06-01", d.StartDate)

	status, _ = api.do(http.MethodPost, base+"/launch", "")
	assert.Equal(t, http.StatusBadRequest, status, "launch needs the confirmation open")

	status, env = api.do(http.MethodPost, base+"/finish", "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, api.draft(env).Confirming)

	status, env = api.do(http.MethodPost, base+"/launch", "")
	require.Equal(t, http.StatusCreated, status)

	var res LaunchResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "HAMLET", res.Project.Title)
	assert.Equal(t, "#112233", res.Project.ThemeColor)
	assert.Contains(t, string(env.Data), `"message":"PROJECT LAUNCHED SUCCESSFULLY"`)
	assert.Contains(t, string(env.Data), `"navigation":{"route":"/dashboard","delay_ms":1500}`)

	assert.Len(t, api.objects.Uploads(), 1)
	require.Len(t, api.store.characters, 1)
	assert.Len(t, api.store.characters[0], 2)

	status, _ = api.do(http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHandler_ScriptRejectedAtIntake(t *testing.T) {
	api := newTestAPI(t)
	base := "/drafts/" + api.createDraft()

	status, env := api.send(scriptUpload(t, base+"/script", "cover.png", "image/png", []byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, http.StatusUnsupportedMediaType, status)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", env.Error.Code)

	status, env = api.do(http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, api.draft(env).Script)
}

func TestHandler_LaunchFailureKeepsDraft(t *testing.T) {
	api := newTestAPI(t)
	api.store.projectErr = assert.AnError
	base := "/drafts/" + api.createDraft()

	api.do(http.MethodPut, base+"/skip-script", `{"skip":true}`)
	for i := 0; i < 3; i++ {
		api.do(http.MethodPost, base+"/advance", "")
	}
	api.do(http.MethodPost, base+"/finish", "")

	status, env := api.do(http.MethodPost, base+"/launch", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(env.Data), `"style":"banner"`)
	assert.Contains(t, string(env.Data), `"dismiss_after_ms":3000`)

	status, env = api.do(http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, StepProduction, api.draft(env).Step)
}

func TestHandler_InvalidProduction(t *testing.T) {
	api := newTestAPI(t)
	base := "/drafts/" + api.createDraft()

	status, env := api.do(http.MethodPut, base+"/production", `{"theme_color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "theme_color must be a hex color", env.Error.Message)

	status, _ = api.do(http.MethodPut, base+"/production", `{"start_date":"01/06/2026"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}
