package directory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/ensamble/pkg/response"
)

// Handler handles HTTP requests for directory lookups
type Handler struct {
	service *Service
}

// NewHandler creates a new directory handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for directory endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/search", h.Search)

	return r
}

// Search handles GET /profiles/search
// @Summary      Search profiles
// @Description  Case-insensitive partial match on username, at most 5 results; fewer than 3 characters returns nothing
// @Tags         profiles
// @Produce      json
// @Param        q query string true "Partial username"
// @Success      200 {object} response.APIResponse{data=[]Profile}
// @Router       /profiles/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.Problem(w, err)
		return
	}
	if profiles == nil {
		profiles = []Profile{}
	}

	response.JSON(w, http.StatusOK, profiles)
}
