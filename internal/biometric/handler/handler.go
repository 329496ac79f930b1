// Package handler exposes the biometric service over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"biogate/internal/biometric/models"
	jwttoken "biogate/internal/jwt_token"
	dErrors "biogate/pkg/domain-errors"
	"biogate/pkg/platform/httputil"
	"biogate/pkg/platform/middleware/auth"
	"biogate/pkg/platform/validation"
	"biogate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the biometric operations the handler calls.
type Service interface {
	Enroll(ctx context.Context, userID string, modality models.Modality, image []byte) (*models.EnrollResult, error)
	Verify(ctx context.Context, userID string, modality models.Modality, image []byte) (*models.VerifyResult, error)
	Deactivate(ctx context.Context, userID string, modality models.Modality) (bool, error)
	Status(ctx context.Context, userID string) ([]models.EnrollmentStatus, error)
}

// Handler handles biometric endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the biometric routes. Callers are expected to have
// applied auth.RequireAuth to r.
func (h *Handler) Register(r chi.Router) {
	r.With(auth.RequireScope(jwttoken.ScopeEnroll, h.logger)).Post("/enroll/{modality}", h.HandleEnroll)
	r.With(auth.RequireScope(jwttoken.ScopeVerify, h.logger)).Post("/verify/{modality}", h.HandleVerify)
	r.With(auth.RequireScope(jwttoken.ScopeManage, h.logger)).Delete("/templates/{user_id}/{modality}", h.HandleDeactivate)
	r.With(auth.RequireScope(jwttoken.ScopeManage, h.logger)).Get("/templates/{user_id}", h.HandleStatus)
}

func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, ok := h.readUpload(w, r, true)
	if !ok {
		return
	}
	modality := models.Modality(form.Modality)

	result, err := h.service.Enroll(ctx, form.UserID, modality, form.File)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, EnrollResponse{
		Success:    true,
		TemplateID: result.TemplateID,
		Quality:    result.Quality,
		Replaced:   result.Replaced,
		Message:    enrolledMessage(modality),
	})
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, ok := h.readUpload(w, r, false)
	if !ok {
		return
	}

	result, err := h.service.Verify(ctx, form.UserID, models.Modality(form.Modality), form.File)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := uploadForm{
		UserID:   chi.URLParam(r, "user_id"),
		Modality: chi.URLParam(r, "modality"),
	}
	form.Normalize()
	if err := validation.Validate(&form); err != nil {
		h.logInvalid(ctx, err)
		httputil.WriteError(w, err)
		return
	}

	modality := models.Modality(form.Modality)
	deactivated, err := h.service.Deactivate(ctx, form.UserID, modality)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !deactivated {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotEnrolled, "no template enrolled for this user and modality"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DeactivateResponse{Deactivated: true, Modality: modality.String()})
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := strings.TrimSpace(chi.URLParam(r, "user_id"))
	if err := validation.CheckStringLength("user_id", userID, validation.MaxUserIDLength); err != nil {
		httputil.WriteError(w, err)
		return
	}

	statuses, err := h.service.Status(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if statuses == nil {
		statuses = []models.EnrollmentStatus{}
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{UserID: userID, Templates: statuses})
}

// readUpload parses the multipart body. It writes the error response and
// returns false when the request is unusable.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, requireImageType bool) (*uploadForm, bool) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(validation.MultipartMemory); err != nil {
		if isTooLarge(err) {
			httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge, "upload exceeds size limit"))
			return nil, false
		}
		h.logInvalid(ctx, err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return nil, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := &uploadForm{
		UserID:   r.FormValue("user_id"),
		Modality: chi.URLParam(r, "modality"),
	}
	form.Normalize()
	if err := validation.Validate(form); err != nil {
		h.logInvalid(ctx, err)
		httputil.WriteError(w, err)
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file is required"))
		return nil, false
	}
	defer file.Close()

	if requireImageType && !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "File must be an image"))
		return nil, false
	}

	form.File, err = io.ReadAll(file)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read upload",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read upload"))
		return nil, false
	}
	if err := validation.CheckNotEmpty("file", form.File); err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	return form, true
}

func (h *Handler) logInvalid(ctx context.Context, err error) {
	h.logger.WarnContext(ctx, "invalid biometric request",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}
