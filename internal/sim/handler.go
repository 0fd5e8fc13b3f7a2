// AngelaMos | 2026
// handler.go

package sim

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
	"github.com/AcolyteGlobal/SimProj-BE/internal/ledger"
	"github.com/AcolyteGlobal/SimProj-BE/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/sims", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{phoneNumber}", h.Get)

		r.With(adminOnly).Post("/", h.Create)
		r.With(adminOnly).Patch("/{phoneNumber}/status", h.UpdateStatus)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSIMRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sim, err := h.service.Intake(r.Context(), req, middleware.GetActor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToSIMResponse(sim))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListSIMsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
	}

	switch params.Status {
	case "", ledger.SIMAvailable, ledger.SIMAssigned, ledger.SIMInactive, ledger.SIMOutOfService:
	default:
		core.BadRequest(w, "status must be one of: available assigned inactive out_of_service")
		return
	}

	rows, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(w, ToSIMResponseList(rows), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sim, err := h.service.Get(r.Context(), chi.URLParam(r, "phoneNumber"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToSIMResponse(sim))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sim, err := h.service.SetStatus(
		r.Context(),
		chi.URLParam(r, "phoneNumber"),
		req.Status,
		middleware.GetActor(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToSIMResponse(sim))
}

func writeError(w http.ResponseWriter, err error) {
	var ce *core.ConstraintError
	switch {
	case errors.As(err, &ce) && errors.Is(err, core.ErrDuplicateKey):
		field := ce.Field
		if field == "" {
			field = "sim"
		}
		core.JSONError(w, core.DuplicateError(field))
	case errors.Is(err, ErrInUse):
		core.Conflict(w, "sim is assigned, unassign it first", "SIM_IN_USE", nil)
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "sim")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
