package balance

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/seeran-grades/seeran-backend/internal/httputil"
	"github.com/seeran-grades/seeran-backend/internal/logging"
)

// Reader loads balances
type Reader interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Balance, error)
}

type Handler struct {
	balances Reader
	identity func(ctx context.Context) (uuid.UUID, bool)
}

func NewHandler(balances Reader, identity func(ctx context.Context) (uuid.UUID, bool)) *Handler {
	return &Handler{balances: balances, identity: identity}
}

// Me returns the balance of the logged in user
// @Summary      Own balance
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Balance
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "No balance recorded"
// @Router       /users/me/balance [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.identity(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	b, err := h.balances.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "balance not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logging.GetLoggerFromContext(r.Context()).Error("failed to load balance", "user_id", userID, "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, b, http.StatusOK)
}
