// AngelaMos | 2026
// handler.go

package ledger

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/AcolyteGlobal/SimProj-BE/internal/core"
	"github.com/AcolyteGlobal/SimProj-BE/internal/middleware"
)

type Handler struct {
	service   *Service
	reader    Reader
	validator *validator.Validate
}

func NewHandler(service *Service, reader Reader) *Handler {
	return &Handler{
		service:   service,
		reader:    reader,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the ledger endpoints. Reads are open to any
// authenticated role, writes go through adminOnly.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/assignments", func(r chi.Router) {
		r.Get("/", h.ListAssignments)
		r.With(adminOnly).Post("/", h.Assign)
	})

	r.With(adminOnly).Post("/swaps", h.Swap)

	r.Route("/exits", func(r chi.Router) {
		r.Get("/", h.ListExits)
		r.With(adminOnly).Post("/", h.Exit)
	})
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	res, err := h.service.Assign(r.Context(), AssignInput{
		BiometricID: string(req.BiometricID),
		PhoneNumber: req.PhoneNumber,
		Force:       req.Force,
		Actor:       middleware.GetActor(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToAssignResponse(res))
}

func (h *Handler) Swap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	res, err := h.service.Swap(r.Context(), SwapInput{
		BiometricID: string(req.BiometricID),
		PhoneNumber: req.PhoneNumber,
		Force:       req.Force,
		Actor:       middleware.GetActor(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToAssignResponse(res))
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	var req ExitRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	res, err := h.service.Exit(r.Context(), ExitInput{
		BiometricID: string(req.BiometricID),
		Reason:      req.Reason,
		Actor:       middleware.GetActor(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToExitResponse(res))
}

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	params := ListAssignmentsParams{
		Page:        core.QueryInt(r, "page", 1),
		PageSize:    core.QueryInt(r, "page_size", 20),
		Active:      core.QueryBool(r, "active"),
		PhoneNumber: r.URL.Query().Get("phone_number"),
	}

	if raw := r.URL.Query().Get("biometric_id"); raw != "" {
		id, err := ParseBiometricID(raw)
		if err != nil {
			core.BadRequest(w, "invalid biometric_id")
			return
		}
		params.BiometricID = id
	}

	rows, total, err := h.reader.ListAssignments(r.Context(), &params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToAssignmentResponseList(rows), params.Page, params.PageSize, total)
}

func (h *Handler) ListExits(w http.ResponseWriter, r *http.Request) {
	params := ListExitsParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
	}

	if raw := r.URL.Query().Get("biometric_id"); raw != "" {
		id, err := ParseBiometricID(raw)
		if err != nil {
			core.BadRequest(w, "invalid biometric_id")
			return
		}
		params.BiometricID = id
	}

	rows, total, err := h.reader.ListExits(r.Context(), &params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToExitLogResponseList(rows), params.Page, params.PageSize, total)
}

func writeError(w http.ResponseWriter, err error) {
	var conflict *ConflictError
	switch {
	case errors.As(err, &conflict):
		core.Conflict(w, conflict.Error(), "SIM_ASSIGNED", conflict.Details())
	case errors.Is(err, ErrAlreadyExited):
		core.Conflict(w, "user has already exited", "ALREADY_EXITED", nil)
	case errors.Is(err, core.ErrConflict):
		core.Conflict(w, "sim was assigned concurrently, retry", "CONCURRENT_ASSIGNMENT", nil)
	case errors.Is(err, ErrUserNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, ErrSIMNotFound):
		core.NotFound(w, "sim")
	case errors.Is(err, ErrInvalidBiometricID):
		core.BadRequest(w, "biometric_id is invalid")
	case errors.Is(err, ErrUserInactive):
		core.BadRequest(w, "user is inactive")
	case errors.Is(err, ErrSIMUnavailable):
		core.BadRequest(w, "sim is inactive or out of service")
	case errors.Is(err, ErrAlreadyHolds):
		core.BadRequest(w, "user already holds this sim")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
