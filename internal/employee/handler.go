// AngelaMos | 2026
// handler.go

package employee

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
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{biometricID}", h.Get)

		r.With(adminOnly).Post("/", h.Create)
		r.With(adminOnly).Patch("/{biometricID}/status", h.UpdateStatus)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	e, err := h.service.Onboard(r.Context(), req, middleware.GetActor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToEmployeeResponse(e))
}

// List returns employees with the phone number they currently hold.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListEmployeesParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
	}

	if params.Status != "" && params.Status != ledger.UserActive && params.Status != ledger.UserInactive {
		core.BadRequest(w, "status must be one of: active inactive")
		return
	}

	rows, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(w, ToEmployeeResponseList(rows), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "biometricID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToEmployeeResponse(e))
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

	e, err := h.service.SetStatus(
		r.Context(),
		chi.URLParam(r, "biometricID"),
		req.Status,
		middleware.GetActor(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToEmployeeResponse(e))
}

func writeError(w http.ResponseWriter, err error) {
	var ce *core.ConstraintError
	switch {
	case errors.As(err, &ce) && errors.Is(err, core.ErrDuplicateKey):
		field := ce.Field
		if field == "" {
			field = "employee"
		}
		core.JSONError(w, core.DuplicateError(field))
	case errors.Is(err, core.ErrSequenceLimit):
		core.JSONError(w, core.NewAppError(
			err,
			"no biometric ids left to issue",
			http.StatusBadRequest,
			"BIOMETRIC_POOL_EXHAUSTED",
		))
	case errors.Is(err, ErrHoldsSIM):
		core.Conflict(w, "employee still holds a sim, exit them instead", "USER_HOLDS_SIM", nil)
	case errors.Is(err, ledger.ErrInvalidBiometricID):
		core.BadRequest(w, "biometric_id is invalid")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
