// Package profile serves the logged in user's own profile card.
package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/seeran-grades/seeran-backend/internal/httputil"
	"github.com/seeran-grades/seeran-backend/internal/logging"
	"github.com/seeran-grades/seeran-backend/internal/user"
)

// UserReader loads users by id
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// ImageURLs resolves the displayable URL of a profile picture
type ImageURLs interface {
	ProfileImageURL(ctx context.Context, email string, picture *string) (string, error)
}

// IdentityFunc extracts the authenticated user id from the request context
type IdentityFunc func(ctx context.Context) (uuid.UUID, bool)

// Response is the profile card
type Response struct {
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
	Email   string    `json:"email"`
	ID      uuid.UUID `json:"id"`
	Role    string    `json:"role"`
	Image   string    `json:"image"`
}

type Handler struct {
	users    UserReader
	images   ImageURLs
	identity IdentityFunc
}

func NewHandler(users UserReader, images ImageURLs, identity IdentityFunc) *Handler {
	return &Handler{
		users:    users,
		images:   images,
		identity: identity,
	}
}

// Build assembles the profile card of u with title-cased names and role
func (h *Handler) Build(ctx context.Context, u *user.User) (*Response, error) {
	// Casers keep state between calls
	title := cases.Title(language.English)

	image, err := h.images.ProfileImageURL(ctx, u.Email, u.ProfilePicture)
	if err != nil {
		return nil, err
	}

	return &Response{
		Name:    title.String(u.Name),
		Surname: title.String(u.Surname),
		Email:   u.Email,
		ID:      u.ID,
		Role:    title.String(u.Role().String()),
		Image:   image,
	}, nil
}

// Me returns the profile of the logged in user
// @Summary      Own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Response
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "User does not exist"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /users/me/profile [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := h.identity(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "User does not exist.", httputil.CodeUserNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to load user profile", "user_id", userID, "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	resp, err := h.Build(r.Context(), u)
	if err != nil {
		logger.Error("failed to sign profile image", "user_id", userID, "error", err)
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, resp, http.StatusOK)
}
