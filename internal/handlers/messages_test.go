package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-messenger/internal/models"
	"github.com/sbilibin2017/gw-messenger/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMessageHandler(t *testing.T) {
	detail := &models.MessageDetail{
		ID:       7,
		Body:     "hello",
		FromUser: models.UserBasic{Username: "alice"},
		ToUser:   models.UserBasic{Username: "bob"},
	}

	tests := []struct {
		name         string
		id           string
		mockSetup    func(m *MockMessageGetter)
		expectedCode int
	}{
		{
			name: "success",
			id:   "7",
			mockSetup: func(m *MockMessageGetter) {
				m.EXPECT().Get(gomock.Any(), "bob", int64(7)).Return(detail, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "non numeric id",
			id:           "abc",
			mockSetup:    func(m *MockMessageGetter) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "zero id",
			id:           "0",
			mockSetup:    func(m *MockMessageGetter) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "not found",
			id:   "99",
			mockSetup: func(m *MockMessageGetter) {
				m.EXPECT().Get(gomock.Any(), "bob", int64(99)).Return(nil, services.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name: "third party",
			id:   "7",
			mockSetup: func(m *MockMessageGetter) {
				m.EXPECT().Get(gomock.Any(), "bob", int64(7)).Return(nil, services.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockMessageGetter(ctrl)
			tt.mockSetup(svc)

			req := withRoute(httptest.NewRequest(http.MethodGet, "/messages/"+tt.id, nil), "bob",
				map[string]string{"id": tt.id})
			w := httptest.NewRecorder()

			NewGetMessageHandler(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var resp MessageDetailResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, int64(7), resp.Message.ID)
				assert.Equal(t, "alice", resp.Message.FromUser.Username)
				assert.Equal(t, "bob", resp.Message.ToUser.Username)
			}
		})
	}
}

func TestCreateMessageHandler(t *testing.T) {
	sentAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		principal    string
		body         string
		mockSetup    func(m *MockMessageCreator)
		expectedCode int
	}{
		{
			name:      "success",
			principal: "alice",
			body:      `{"to_username":"bob","body":"hi"}`,
			mockSetup: func(m *MockMessageCreator) {
				m.EXPECT().Create(gomock.Any(), "alice", "bob", "hi").
					Return(&models.Message{ID: 1, FromUsername: "alice", ToUsername: "bob", Body: "hi", SentAt: sentAt}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:      "forged sender is ignored",
			principal: "alice",
			body:      `{"from_username":"mallory","to_username":"bob","body":"hi"}`,
			mockSetup: func(m *MockMessageCreator) {
				m.EXPECT().Create(gomock.Any(), "alice", "bob", "hi").
					Return(&models.Message{ID: 2, FromUsername: "alice", ToUsername: "bob", Body: "hi", SentAt: sentAt}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:      "unknown recipient",
			principal: "alice",
			body:      `{"to_username":"ghost","body":"hi"}`,
			mockSetup: func(m *MockMessageCreator) {
				m.EXPECT().Create(gomock.Any(), "alice", "ghost", "hi").Return(nil, services.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:      "empty body",
			principal: "alice",
			body:      `{"to_username":"bob"}`,
			mockSetup: func(m *MockMessageCreator) {
				m.EXPECT().Create(gomock.Any(), "alice", "bob", "").
					Return(nil, fmt.Errorf("%w: to_username and body are required", services.ErrValidation))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "invalid json",
			principal:    "alice",
			body:         `not json`,
			mockSetup:    func(m *MockMessageCreator) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "anonymous",
			body: `{"to_username":"bob","body":"hi"}`,
			mockSetup: func(m *MockMessageCreator) {
				m.EXPECT().Create(gomock.Any(), "", "bob", "hi").Return(nil, services.ErrUnauthenticated)
			},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockMessageCreator(ctrl)
			tt.mockSetup(svc)

			req := withRoute(httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(tt.body)),
				tt.principal, nil)
			w := httptest.NewRecorder()

			NewCreateMessageHandler(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusCreated {
				var resp MessageResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "alice", resp.Message.FromUsername)
				assert.Nil(t, resp.Message.ReadAt)
			}
		})
	}
}

func TestMarkReadHandler(t *testing.T) {
	readAt := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		id           string
		mockSetup    func(m *MockMessageReadMarker)
		expectedCode int
		expectedBody string
	}{
		{
			name: "success",
			id:   "3",
			mockSetup: func(m *MockMessageReadMarker) {
				m.EXPECT().MarkRead(gomock.Any(), "bob", int64(3)).
					Return(&models.Message{ID: 3, FromUsername: "alice", ToUsername: "bob", ReadAt: &readAt}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":{"id":3,"read_at":"2025-03-01T12:30:00Z"}}`,
		},
		{
			name:         "bad id",
			id:           "x",
			mockSetup:    func(m *MockMessageReadMarker) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"invalid message id"}`,
		},
		{
			name: "sender may not mark read",
			id:   "3",
			mockSetup: func(m *MockMessageReadMarker) {
				m.EXPECT().MarkRead(gomock.Any(), "bob", int64(3)).Return(nil, services.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
			expectedBody: `{"error":"Forbidden"}`,
		},
		{
			name: "not found",
			id:   "4",
			mockSetup: func(m *MockMessageReadMarker) {
				m.EXPECT().MarkRead(gomock.Any(), "bob", int64(4)).Return(nil, services.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Not found"}`,
		},
		{
			name: "driver error is not leaked",
			id:   "3",
			mockSetup: func(m *MockMessageReadMarker) {
				m.EXPECT().MarkRead(gomock.Any(), "bob", int64(3)).Return(nil, errors.New("pq: relation does not exist"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockMessageReadMarker(ctrl)
			tt.mockSetup(svc)

			req := withRoute(httptest.NewRequest(http.MethodPost, "/messages/"+tt.id+"/read", nil), "bob",
				map[string]string{"id": tt.id})
			w := httptest.NewRecorder()

			NewMarkReadHandler(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
