// Package handler exposes the academy operations over HTTP. Handlers decode
// and validate request shape only; argument contracts and error
// classification live below, in the service and the ledger core.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dojoledger/internal/academy/models"
	"dojoledger/internal/platform/middleware"
	dErrors "dojoledger/pkg/domain-errors"
	"dojoledger/pkg/platform/httputil"
	"dojoledger/pkg/requestcontext"
)

// AcademyService is the domain facade the handlers call into.
type AcademyService interface {
	Enroll(ctx context.Context, req models.EnrollRequest) (models.EnrollResult, error)
	RecordAttendance(ctx context.Context, req models.AttendanceRequest) (models.AttendanceResult, error)
	UpdateFeeStatus(ctx context.Context, req models.FeeStatusRequest) (models.FeeStatusResult, error)
	GetStudent(ctx context.Context, id string) (models.Student, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
}

type Handler struct {
	svc       AcademyService
	validator middleware.AdminTokenValidator
	logger    *slog.Logger
}

func New(svc AcademyService, validator middleware.AdminTokenValidator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, validator: validator, logger: logger}
}

// Register mounts the academy routes. Fee-status updates are the only
// privileged route; everything else is open to the academy frontend.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/students", func(r chi.Router) {
		r.Post("/", h.enroll)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/{id}/attendance", h.recordAttendance)
		r.With(middleware.RequireAdmin(h.validator, h.logger)).Put("/{id}/fee-status", h.updateFeeStatus)
	})
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	var req models.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "malformed request body"))
		return
	}

	result, err := h.svc.Enroll(r.Context(), req)
	if err != nil {
		h.logError(r.Context(), "enroll failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) recordAttendance(w http.ResponseWriter, r *http.Request) {
	var req models.AttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "malformed request body"))
		return
	}
	req.StudentID = chi.URLParam(r, "id")

	result, err := h.svc.RecordAttendance(r.Context(), req)
	if err != nil {
		h.logError(r.Context(), "record attendance failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) updateFeeStatus(w http.ResponseWriter, r *http.Request) {
	var req models.FeeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidArgument, "malformed request body"))
		return
	}
	req.StudentID = chi.URLParam(r, "id")

	result, err := h.svc.UpdateFeeStatus(r.Context(), req)
	if err != nil {
		h.logError(r.Context(), "fee status update failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "fee status updated by admin",
		"student_id", req.StudentID,
		"admin", requestcontext.AdminSubject(r.Context()),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	student, err := h.svc.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logError(r.Context(), "get student failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, student)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	students, err := h.svc.ListStudents(r.Context())
	if err != nil {
		h.logError(r.Context(), "list students failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"students": students})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}
