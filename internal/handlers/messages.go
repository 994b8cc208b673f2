package handlers

//go:generate mockgen -source=messages.go -destination=messages_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-messenger/internal/middlewares"
	"github.com/sbilibin2017/gw-messenger/internal/models"
)

// MessageGetter returns a single message visible to the principal.
type MessageGetter interface {
	Get(ctx context.Context, principal string, id int64) (*models.MessageDetail, error)
}

// MessageCreator sends a message on behalf of the principal.
type MessageCreator interface {
	Create(ctx context.Context, principal, toUsername, body string) (*models.Message, error)
}

// MessageReadMarker marks a received message as read.
type MessageReadMarker interface {
	MarkRead(ctx context.Context, principal string, id int64) (*models.Message, error)
}

// CreateMessageRequest represents the JSON body for sending a message.
// The sender is always the authenticated user.
// swagger:model CreateMessageRequest
type CreateMessageRequest struct {
	// Recipient username
	// required: true
	// example: bob
	ToUsername string `json:"to_username"`

	// Message text
	// required: true
	// example: hello
	Body string `json:"body"`
}

// MessageDetailResponse represents a message with both endpoint profiles
// swagger:model MessageDetailResponse
type MessageDetailResponse struct {
	Message *models.MessageDetail `json:"message"`
}

// MessageResponse represents a stored message
// swagger:model MessageResponse
type MessageResponse struct {
	Message *models.Message `json:"message"`
}

// ReadReceipt is the read state of a message
// swagger:model ReadReceipt
type ReadReceipt struct {
	ID     int64      `json:"id"`
	ReadAt *time.Time `json:"read_at"`
}

// ReadReceiptResponse represents a mark-read response
// swagger:model ReadReceiptResponse
type ReadReceiptResponse struct {
	Message ReadReceipt `json:"message"`
}

func parseMessageID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// NewGetMessageHandler returns an HTTP handler for reading a single message.
// @Summary Get message
// @Description Message with sender and recipient profiles; only visible to its sender or recipient
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} handlers.MessageDetailResponse "Message"
// @Failure 400 {object} handlers.ErrorResponse "Invalid message id"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Not found"
// @Router /messages/{id} [get]
// @Security BearerAuth
func NewGetMessageHandler(svc MessageGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseMessageID(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
			return
		}

		principal := middlewares.GetPrincipalFromContext(r.Context())

		msg, err := svc.Get(r.Context(), principal, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageDetailResponse{Message: msg})
	}
}

// NewCreateMessageHandler returns an HTTP handler for sending a message.
// @Summary Send message
// @Description Sends a message from the authenticated user to another user
// @Tags messages
// @Accept json
// @Produce json
// @Param createMessageRequest body handlers.CreateMessageRequest true "Message"
// @Success 201 {object} handlers.MessageResponse "Message sent"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Recipient not found"
// @Router /messages [post]
// @Security BearerAuth
func NewCreateMessageHandler(svc MessageCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateMessageRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}

		principal := middlewares.GetPrincipalFromContext(r.Context())

		msg, err := svc.Create(r.Context(), principal, req.ToUsername, req.Body)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, MessageResponse{Message: msg})
	}
}

// NewMarkReadHandler returns an HTTP handler for marking a message as read.
// @Summary Mark message read
// @Description Marks a message read; only its recipient may do so. Repeated calls keep the first timestamp.
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} handlers.ReadReceiptResponse "Read receipt"
// @Failure 400 {object} handlers.ErrorResponse "Invalid message id"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 404 {object} handlers.ErrorResponse "Not found"
// @Router /messages/{id}/read [post]
// @Security BearerAuth
func NewMarkReadHandler(svc MessageReadMarker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseMessageID(r)
		if !ok {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid message id"})
			return
		}

		principal := middlewares.GetPrincipalFromContext(r.Context())

		msg, err := svc.MarkRead(r.Context(), principal, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, ReadReceiptResponse{
			Message: ReadReceipt{ID: msg.ID, ReadAt: msg.ReadAt},
		})
	}
}
