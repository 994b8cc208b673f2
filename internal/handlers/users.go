package handlers

//go:generate mockgen -source=users.go -destination=users_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-messenger/internal/middlewares"
	"github.com/sbilibin2017/gw-messenger/internal/models"
)

// UserLister lists all users.
type UserLister interface {
	ListAll(ctx context.Context) ([]models.UserBasic, error)
}

// ProfileGetter returns a user profile.
type ProfileGetter interface {
	GetProfile(ctx context.Context, username string) (*models.User, error)
}

// MessageLister lists the messages of a user.
type MessageLister interface {
	ListFrom(ctx context.Context, principal, username string) ([]models.SentMessage, error)
	ListTo(ctx context.Context, principal, username string) ([]models.ReceivedMessage, error)
}

// UsersResponse represents the list of users
// swagger:model UsersResponse
type UsersResponse struct {
	Users []models.UserBasic `json:"users"`
}

// UserResponse represents a single user profile
// swagger:model UserResponse
type UserResponse struct {
	User *models.User `json:"user"`
}

// SentMessagesResponse represents the outbound messages of a user
// swagger:model SentMessagesResponse
type SentMessagesResponse struct {
	Messages []models.SentMessage `json:"messages"`
}

// ReceivedMessagesResponse represents the inbound messages of a user
// swagger:model ReceivedMessagesResponse
type ReceivedMessagesResponse struct {
	Messages []models.ReceivedMessage `json:"messages"`
}

// NewListUsersHandler returns an HTTP handler listing all users.
// @Summary List users
// @Description Basic info on all users ordered by username
// @Tags users
// @Produce json
// @Success 200 {object} handlers.UsersResponse "Users"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /users [get]
// @Security BearerAuth
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListAll(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, UsersResponse{Users: users})
	}
}

// NewGetUserHandler returns an HTTP handler for a user profile.
// @Summary Get user
// @Description Profile of the authenticated user
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} handlers.UserResponse "User profile"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Not found"
// @Router /users/{username} [get]
// @Security BearerAuth
func NewGetUserHandler(svc ProfileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.GetProfile(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, UserResponse{User: user})
	}
}

// NewListSentMessagesHandler returns an HTTP handler for the outbound messages of a user.
// @Summary Messages from user
// @Description Messages sent by the authenticated user, each with its recipient profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} handlers.SentMessagesResponse "Messages"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Router /users/{username}/from [get]
// @Security BearerAuth
func NewListSentMessagesHandler(svc MessageLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middlewares.GetPrincipalFromContext(r.Context())

		messages, err := svc.ListFrom(r.Context(), principal, chi.URLParam(r, "username"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, SentMessagesResponse{Messages: messages})
	}
}

// NewListReceivedMessagesHandler returns an HTTP handler for the inbound messages of a user.
// @Summary Messages to user
// @Description Messages received by the authenticated user, each with its sender profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} handlers.ReceivedMessagesResponse "Messages"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Router /users/{username}/to [get]
// @Security BearerAuth
func NewListReceivedMessagesHandler(svc MessageLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := middlewares.GetPrincipalFromContext(r.Context())

		messages, err := svc.ListTo(r.Context(), principal, chi.URLParam(r, "username"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ReceivedMessagesResponse{Messages: messages})
	}
}
