package emailban

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/seeran-grades/seeran-backend/internal/httputil"
	"github.com/seeran-grades/seeran-backend/internal/logging"
)

// BanIDParam is the route parameter holding the ban id
const BanIDParam = "banID"

// AppealRequest carries the appeal text
type AppealRequest struct {
	Appeal string `json:"appeal"`
}

// BansResponse lists a user's bans
type BansResponse struct {
	EmailBans []*Ban `json:"email_bans"`
}

// BanResponse wraps one ban
type BanResponse struct {
	EmailBan *Ban `json:"email_ban"`
}

// AppealsResponse lists pending appeals
type AppealsResponse struct {
	Appeals []*Ban `json:"appeals"`
}

// AppealResponse wraps one appeal
type AppealResponse struct {
	Appeal *Ban `json:"appeal"`
}

type Handler struct {
	service *Service
	email   func(ctx context.Context) (string, bool)
}

// NewHandler creates the handler. email returns the authenticated address.
func NewHandler(service *Service, email func(ctx context.Context) (string, bool)) *Handler {
	return &Handler{service: service, email: email}
}

func (h *Handler) banID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, BanIDParam))
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid email ban id", httputil.CodeInvalidBanID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := h.email(r.Context())
	if !ok || email == "" {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return "", false
	}
	return email, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "invalid email ban id", httputil.CodeInvalidBanID, http.StatusBadRequest)
	case errors.Is(err, ErrAlreadyAppealed):
		httputil.RespondErrorWithCode(w, "An appeal has already been made for this ban", httputil.CodeAlreadyAppealed, http.StatusBadRequest)
	case errors.Is(err, ErrAppealRequired):
		httputil.RespondErrorWithCode(w, "appeal is required", httputil.CodeAppealRequired, http.StatusBadRequest)
	default:
		logging.GetLoggerFromContext(r.Context()).Error("email ban request failed", "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// List returns the caller's bans
// @Summary      Own email bans
// @Tags         email-bans
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} BansResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /email-bans [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email, ok := h.caller(w, r)
	if !ok {
		return
	}

	bans, err := h.service.Own(r.Context(), email)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httputil.RespondJSON(w, BansResponse{EmailBans: bans}, http.StatusOK)
}

// Get returns one of the caller's bans
// @Summary      One email ban
// @Tags         email-bans
// @Produce      json
// @Security     BearerAuth
// @Param        banID path string true "Ban id"
// @Success      200 {object} BanResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid email ban id"
// @Router       /email-bans/{banID} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	email, ok := h.caller(w, r)
	if !ok {
		return
	}
	banID, ok := h.banID(w, r)
	if !ok {
		return
	}

	ban, err := h.service.GetOwn(r.Context(), email, banID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httputil.RespondJSON(w, BanResponse{EmailBan: ban}, http.StatusOK)
}

// Appeal submits the appeal for one of the caller's bans
// @Summary      Appeal an email ban
// @Description  Only one appeal per ban is accepted.
// @Tags         email-bans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        banID   path string        true "Ban id"
// @Param        request body AppealRequest true "Appeal"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid id, missing appeal or already appealed"
// @Router       /email-bans/{banID}/appeal [patch]
func (h *Handler) Appeal(w http.ResponseWriter, r *http.Request) {
	email, ok := h.caller(w, r)
	if !ok {
		return
	}
	banID, ok := h.banID(w, r)
	if !ok {
		return
	}

	var req AppealRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.service.Appeal(r.Context(), email, banID, req.Appeal); err != nil {
		h.respondError(w, r, err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("email ban appealed", "ban_id", banID)
	httputil.RespondMessage(w, "appeal submitted successfully", http.StatusOK)
}

// PendingAppeals lists appeals awaiting review
// @Summary      Pending appeals
// @Tags         email-bans
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} AppealsResponse
// @Failure      403 {object} httputil.ErrorResponse "Founder access required"
// @Router       /email-bans/appeals [get]
func (h *Handler) PendingAppeals(w http.ResponseWriter, r *http.Request) {
	appeals, err := h.service.PendingAppeals(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httputil.RespondJSON(w, AppealsResponse{Appeals: appeals}, http.StatusOK)
}

// GetAppeal returns any ban for review
// @Summary      One appeal
// @Tags         email-bans
// @Produce      json
// @Security     BearerAuth
// @Param        banID path string true "Ban id"
// @Success      200 {object} AppealResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid email ban id"
// @Failure      403 {object} httputil.ErrorResponse "Founder access required"
// @Router       /email-bans/appeals/{banID} [get]
func (h *Handler) GetAppeal(w http.ResponseWriter, r *http.Request) {
	banID, ok := h.banID(w, r)
	if !ok {
		return
	}

	ban, err := h.service.GetAppeal(r.Context(), banID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httputil.RespondJSON(w, AppealResponse{Appeal: ban}, http.StatusOK)
}
