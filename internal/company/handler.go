package company

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/directory"
	"github.com/fkhayef/ensamble/internal/feedback"
	"github.com/fkhayef/ensamble/internal/identity"
	"github.com/fkhayef/ensamble/internal/metrics"
	"github.com/fkhayef/ensamble/internal/session"
	"github.com/fkhayef/ensamble/internal/upload"
	"github.com/fkhayef/ensamble/pkg/request"
	"github.com/fkhayef/ensamble/pkg/response"
)

// Handler handles HTTP requests for company drafts
type Handler struct {
	drafts    *session.Store[Draft]
	service   *Service
	directory *directory.Service
	metrics   *metrics.Recorder
	log       *zap.SugaredLogger
}

// NewHandler creates a new company handler
func NewHandler(drafts *session.Store[Draft], service *Service, dir *directory.Service, m *metrics.Recorder, log *zap.SugaredLogger) *Handler {
	return &Handler{drafts: drafts, service: service, directory: dir, metrics: m, log: log}
}

// Routes returns the router for company endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/drafts", h.CreateDraft)
	r.Route("/drafts/{id}", func(r chi.Router) {
		r.Get("/", h.GetDraft)
		r.Delete("/", h.DiscardDraft)
		r.Put("/name", h.UpdateName)
		r.Put("/image", h.AttachImage)
		r.Delete("/image", h.RemoveImage)

		// Invitee roster
		r.Post("/search", h.Search)
		r.Post("/select", h.Select)
		r.Post("/invitees", h.Stage)
		r.Delete("/invitees/{index}", h.Unstage)

		r.Post("/commit", h.Commit)
	})

	return r
}

// CreateDraft handles POST /companies/drafts
// @Summary      Start a company draft
// @Description  Open an empty in-memory company draft for the current user
// @Tags         companies
// @Produce      json
// @Success      201 {object} response.APIResponse{data=DraftResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /companies/drafts [post]
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	founder, err := identity.Current(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	d := &Draft{}
	id := h.drafts.Create(founder.ID, d)
	h.metrics.DraftCreated("company")

	response.JSON(w, http.StatusCreated, d.ToResponse(id))
}

// GetDraft handles GET /companies/drafts/{id}
// @Summary      Get a company draft
// @Tags         companies
// @Produce      json
// @Param        id path string true "Draft ID"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /companies/drafts/{id} [get]
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(*Draft) error { return nil })
}

// DiscardDraft handles DELETE /companies/drafts/{id}
func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	founder, err := identity.Current(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	if err := h.drafts.Delete(chi.URLParam(r, "id"), founder.ID); err != nil {
		h.fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Draft discarded"})
}

// UpdateName handles PUT /companies/drafts/{id}/name
// @Summary      Rename a company draft
// @Description  The name is trimmed and upper-cased when the company is founded
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID"
// @Param        request body UpdateNameRequest true "Company name"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /companies/drafts/{id}/name [put]
func (h *Handler) UpdateName(w http.ResponseWriter, r *http.Request) {
	var req UpdateNameRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		d.Name = req.Name
		return nil
	})
}

// AttachImage handles PUT /companies/drafts/{id}/image
// @Summary      Attach a company image
// @Description  Multipart field "image"; images only, at most 10MB
// @Tags         companies
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Draft ID"
// @Param        image formData file true "Company logo"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Failure      413 {object} response.APIResponse
// @Failure      415 {object} response.APIResponse
// @Router       /companies/drafts/{id}/image [put]
func (h *Handler) AttachImage(w http.ResponseWriter, r *http.Request) {
	img, err := upload.FormFile(w, r, "image", upload.MaxImageSize)
	if err == nil {
		err = upload.ValidateImage(img)
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		d.Image = img
		return nil
	})
}

// RemoveImage handles DELETE /companies/drafts/{id}/image
func (h *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *Draft) error {
		d.Image = nil
		return nil
	})
}

// Search handles POST /companies/drafts/{id}/search
// @Summary      Search users to invite
// @Description  Fewer than 3 characters clears the results without a lookup
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID"
// @Param        request body SearchRequest true "Search text"
// @Success      200 {object} response.APIResponse{data=[]directory.Profile}
// @Router       /companies/drafts/{id}/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	founder, err := identity.Current(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	var req SearchRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	results, err := h.directory.SearchInto(r.Context(), req.Query, func(fn func(*directory.ResultSet)) error {
		return h.drafts.With(id, founder.ID, func(d *Draft) error {
			fn(&d.Search)
			return nil
		})
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	if results == nil {
		results = []directory.Profile{}
	}

	response.JSON(w, http.StatusOK, results)
}

// Select handles POST /companies/drafts/{id}/select
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		if _, ok := d.Search.Select(req.ProfileID); !ok {
			return ErrNotInResults
		}
		return nil
	})
}

// Stage handles POST /companies/drafts/{id}/invitees
// @Summary      Stage the selected user
// @Description  Adds the selected user with a role; users without an email or already staged are rejected
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID"
// @Param        request body StageRequest true "Invitee role"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Failure      400 {object} response.APIResponse{data=feedback.Outcome}
// @Router       /companies/drafts/{id}/invitees [post]
func (h *Handler) Stage(w http.ResponseWriter, r *http.Request) {
	var req StageRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	role, ok := ParseInviteeRole(req.Role)
	if !ok {
		h.fail(w, ErrInvalidRole)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		return d.StageSelected(role)
	})
}

// Unstage handles DELETE /companies/drafts/{id}/invitees/{index}
func (h *Handler) Unstage(w http.ResponseWriter, r *http.Request) {
	index, err := request.IndexParam(r, "index")
	if err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		return d.Unstage(index)
	})
}

// Commit handles POST /companies/drafts/{id}/commit
// @Summary      Found the company
// @Description  Creates the company, its Director membership and one invitation per staged invitee. Writes are sequential and not rolled back on failure.
// @Tags         companies
// @Produce      json
// @Param        id path string true "Draft ID"
// @Success      201 {object} response.APIResponse{data=CommitResponse}
// @Failure      400 {object} response.APIResponse{data=feedback.Outcome}
// @Failure      401 {object} response.APIResponse{data=feedback.Outcome}
// @Failure      409 {object} response.APIResponse{data=feedback.Outcome}
// @Failure      500 {object} response.APIResponse{data=feedback.Outcome}
// @Router       /companies/drafts/{id}/commit [post]
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	founder, err := identity.Current(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	id := chi.URLParam(r, "id")

	var result *Result
	// The draft is spent once its company exists
	err = h.drafts.Consume(id, founder.ID, func(d *Draft) error {
		var err error
		result, err = h.service.Found(r.Context(), d)
		return err
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, CommitResponse{Result: result, Outcome: feedback.CompanyFounded()})
}

// mutate applies fn to the caller's draft and responds with the draft state
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(*Draft) error) {
	founder, err := identity.Current(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	id := chi.URLParam(r, "id")

	var view *DraftResponse
	err = h.drafts.With(id, founder.ID, func(d *Draft) error {
		if err := fn(d); err != nil {
			return err
		}
		view = d.ToResponse(id)
		return nil
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, view)
}

// fail writes err; company-flow errors carry a blocking dialog
func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		response.NotFound(w, "Draft not found")
		return
	}
	if apperr.CategoryOf(err) == apperr.Unexpected {
		h.log.Errorw("company request failed", "error", err)
	}
	response.Failure(w, err, feedback.CompanyFailed(err))
}
