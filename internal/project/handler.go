package project

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

// Handler handles HTTP requests for project drafts
type Handler struct {
	drafts    *session.Store[Draft]
	service   *Service
	directory *directory.Service
	metrics   *metrics.Recorder
	log       *zap.SugaredLogger
}

// NewHandler creates a new project handler
func NewHandler(drafts *session.Store[Draft], service *Service, dir *directory.Service, m *metrics.Recorder, log *zap.SugaredLogger) *Handler {
	return &Handler{drafts: drafts, service: service, directory: dir, metrics: m, log: log}
}

// Routes returns the router for project endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/drafts", h.CreateDraft)
	r.Route("/drafts/{id}", func(r chi.Router) {
		r.Get("/", h.GetDraft)
		r.Delete("/", h.DiscardDraft)

		// Wizard steps
		r.Put("/script", h.AttachScript)
		r.Delete("/script", h.RemoveScript)
		r.Put("/skip-script", h.SkipScript)
		r.Post("/advance", h.Advance)
		r.Post("/back", h.Back)
		r.Put("/concept", h.UpdateConcept)
		r.Put("/production", h.UpdateProduction)

		// Character builder
		r.Post("/characters/open", h.OpenCharacter)
		r.Put("/characters/scratch", h.UpdateScratch)
		r.Post("/characters/search", h.SearchArtists)
		r.Post("/characters/attach", h.AttachProfile)
		r.Post("/characters/confirm", h.ConfirmCharacter)
		r.Post("/characters/cancel", h.CancelCharacter)
		r.Delete("/characters/{index}", h.RemoveCharacter)

		r.Post("/finish", h.Finish)
		r.Post("/launch", h.Launch)
	})

	return r
}

// CreateDraft handles POST /projects/drafts
// @Summary      Start a project draft
// @Description  Open an empty in-memory project draft at the script step
// @Tags         projects
// @Produce      json
// @Success      201 {object} response.APIResponse{data=DraftResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /projects/drafts [post]
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	founder, err := identity.Current(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	d := NewDraft()
	id := h.drafts.Create(founder.ID, d)
	h.metrics.DraftCreated("project")

	response.JSON(w, http.StatusCreated, d.ToResponse(id))
}

// GetDraft handles GET /projects/drafts/{id}
// @Summary      Get a project draft
// @Tags         projects
// @Produce      json
// @Param        id path string true "Draft ID"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /projects/drafts/{id} [get]
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(*Draft) error { return nil })
}

// DiscardDraft handles DELETE /projects/drafts/{id}
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

// AttachScript handles PUT /projects/drafts/{id}/script
// @Summary      Attach the script
// @Description  Multipart field "script"; PDF or Word, at most 10MB. Clears the skip-script flag.
// @Tags         projects
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Draft ID"
// @Param        script formData file true "Script file"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Failure      413 {object} response.APIResponse{data=feedback.Outcome}
// @Failure      415 {object} response.APIResponse{data=feedback.Outcome}
// @Router       /projects/drafts/{id}/script [put]
func (h *Handler) AttachScript(w http.ResponseWriter, r *http.Request) {
	script, err := upload.FormFile(w, r, "script", upload.MaxScriptSize)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		return d.AttachScript(script)
	})
}

// RemoveScript handles DELETE /projects/drafts/{id}/script
func (h *Handler) RemoveScript(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *Draft) error {
		d.RemoveScript()
		return nil
	})
}

// SkipScript handles PUT /projects/drafts/{id}/skip-script
func (h *Handler) SkipScript(w http.ResponseWriter, r *http.Request) {
	var req SkipScriptRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		return d.SetSkip(req.Skip)
	})
}

// Advance handles POST /projects/drafts/{id}/advance
// @Summary      Go to the next step
// @Description  Refused on the script step until a script is attached or skipped
// @Tags         projects
// @Produce      json
// @Param        id path string true "Draft ID"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Failure      400 {object} response.APIResponse{data=feedback.Outcome}
// @Router       /projects/drafts/{id}/advance [post]
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *Draft) error {
		return d.Advance()
	})
}

// Back handles POST /projects/drafts/{id}/back
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *Draft) error {
		d.Back()
		return nil
	})
}

// UpdateConcept handles PUT /projects/drafts/{id}/concept
func (h *Handler) UpdateConcept(w http.ResponseWriter, r *http.Request) {
	var req ConceptRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		d.Title = req.Title
		d.Description = req.Description
		return nil
	})
}

// UpdateProduction handles PUT /projects/drafts/{id}/production
// @Summary      Set the production schedule
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID"
// @Param        request body ProductionRequest true "Start date (YYYY-MM-DD) and theme color"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Failure      400 {object} response.APIResponse{data=feedback.Outcome}
// @Router       /projects/drafts/{id}/production [put]
func (h *Handler) UpdateProduction(w http.ResponseWriter, r *http.Request) {
	var req ProductionRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		h.fail(w, apperr.Wrap(apperr.InvalidInput, "Invalid request", "start_date must be a date as 2006-01-02", err))
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		d.StartDate = startDate
		if req.ThemeColor != "" {
			d.ThemeColor = req.ThemeColor
		}
		return nil
	})
}

// OpenCharacter handles POST /projects/drafts/{id}/characters/open
// @Summary      Open the character builder
// @Description  Without an index the builder starts blank; with one it edits that character in place
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID"
// @Param        request body OpenCharacterRequest false "Character position to edit"
// @Success      200 {object} response.APIResponse{data=DraftResponse}
// @Router       /projects/drafts/{id}/characters/open [post]
func (h *Handler) OpenCharacter(w http.ResponseWriter, r *http.Request) {
	var req OpenCharacterRequest
	if r.ContentLength != 0 {
		if err := request.Decode(w, r, &req); err != nil {
			h.fail(w, err)
			return
		}
	}

	h.mutate(w, r, func(d *Draft) error {
		if req.Index == nil {
			d.OpenForCreate()
			return nil
		}
		return d.OpenForEdit(*req.Index)
	})
}

// UpdateScratch handles PUT /projects/drafts/{id}/characters/scratch
func (h *Handler) UpdateScratch(w http.ResponseWriter, r *http.Request) {
	var req ScratchRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		return d.UpdateScratch(ScratchFields{
			Name:        req.Name,
			Description: req.Description,
			PhotoRefURL: req.PhotoRefURL,
			VideoRefURL: req.VideoRefURL,
		})
	})
}

// SearchArtists handles POST /projects/drafts/{id}/characters/search
// @Summary      Search artists to cast
// @Description  Fewer than 3 characters clears the results without a lookup
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Draft ID"
// @Param        request body SearchRequest true "Search text"
// @Success      200 {object} response.APIResponse{data=[]directory.Profile}
// @Router       /projects/drafts/{id}/characters/search [post]
func (h *Handler) SearchArtists(w http.ResponseWriter, r *http.Request) {
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
			if !d.Builder.Open {
				return ErrBuilderClosed
			}
			fn(&d.Builder.Search)
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

// AttachProfile handles POST /projects/drafts/{id}/characters/attach
func (h *Handler) AttachProfile(w http.ResponseWriter, r *http.Request) {
	var req AttachRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		if req.ProfileID == "" {
			return d.DetachProfile()
		}
		return d.AttachProfile(req.ProfileID)
	})
}

// ConfirmCharacter handles POST /projects/drafts/{id}/characters/confirm
func (h *Handler) ConfirmCharacter(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *Draft) error {
		return d.ConfirmCharacter()
	})
}

// CancelCharacter handles POST /projects/drafts/{id}/characters/cancel
func (h *Handler) CancelCharacter(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *Draft) error {
		d.CancelCharacter()
		return nil
	})
}

// RemoveCharacter handles DELETE /projects/drafts/{id}/characters/{index}
func (h *Handler) RemoveCharacter(w http.ResponseWriter, r *http.Request) {
	index, err := request.IndexParam(r, "index")
	if err != nil {
		h.fail(w, err)
		return
	}

	h.mutate(w, r, func(d *Draft) error {
		return d.RemoveCharacter(index)
	})
}

// Finish handles POST /projects/drafts/{id}/finish
func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(d *Draft) error {
		return d.Finish()
	})
}

// Launch handles POST /projects/drafts/{id}/launch
// @Summary      Launch the project
// @Description  Requires an open confirmation. Creates the project, uploads the script and inserts all characters at once. Writes are sequential and not rolled back on failure; the draft is kept for another attempt.
// @Tags         projects
// @Produce      json
// @Param        id path string true "Draft ID"
// @Success      201 {object} response.APIResponse{data=LaunchResponse}
// @Failure      400 {object} response.APIResponse{data=feedback.Outcome}
// @Failure      401 {object} response.APIResponse{data=feedback.Outcome}
// @Failure      413 {object} response.APIResponse{data=feedback.Outcome}
// @Failure      502 {object} response.APIResponse{data=feedback.Outcome}
// @Failure      500 {object} response.APIResponse{data=feedback.Outcome}
// @Router       /projects/drafts/{id}/launch [post]
func (h *Handler) Launch(w http.ResponseWriter, r *http.Request) {
	founder, err := identity.Current(r.Context())
	if err != nil {
		h.launchFailed(w, err)
		return
	}

	id := chi.URLParam(r, "id")

	var project *Project
	err = h.drafts.Consume(id, founder.ID, func(d *Draft) error {
		if err := d.Confirm(); err != nil {
			return err
		}
		var err error
		project, err = h.service.Launch(r.Context(), d)
		return err
	})
	if err != nil {
		h.launchFailed(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, LaunchResponse{Project: project, Outcome: feedback.ProjectLaunched()})
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

// fail writes a rejected wizard action as a transient banner
func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		response.NotFound(w, "Draft not found")
		return
	}
	if apperr.CategoryOf(err) == apperr.Unexpected {
		h.log.Errorw("project request failed", "error", err)
	}
	response.Failure(w, err, feedback.Rejected(err))
}

func (h *Handler) launchFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		response.NotFound(w, "Draft not found")
		return
	}
	response.Failure(w, err, feedback.ProjectFailed(err))
}
