package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()

	r.Commit("company", "ok")
	r.Commit("company", "DUPLICATE_ENTITY")
	r.Commit("company", "ok")
	r.Search("stale")
	r.SwallowedUpload("company_images")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.commits.WithLabelValues("company", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commits.WithLabelValues("company", "DUPLICATE_ENTITY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.searches.WithLabelValues("stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.swallowed.WithLabelValues("company_images")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Commit("project", "ok")
		r.Search("accepted")
		r.SwallowedUpload("x")
		r.DraftCreated("project")
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.DraftCreated("project")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ensamble_drafts_created_total{flow="project"} 1`)
}
