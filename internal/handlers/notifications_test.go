package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hr-realtime/internal/mocks"
	"hr-realtime/internal/models"
	"hr-realtime/internal/notifier"
)

func publishRequest(publisher *mocks.NotifierMock, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/internal/notifications", NewNotificationHandler(publisher).Publish)

	req := httptest.NewRequest(http.MethodPost, "/internal/notifications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPublishNotification(t *testing.T) {
	publisher := &mocks.NotifierMock{}
	publisher.On("Notify", mock.Anything, "u1", "Leave request approved", models.NotificationLeaveApproved).
		Return(models.Notification{ID: "n1", UserID: "u1", Kind: models.NotificationLeaveApproved}, nil)

	w := publishRequest(publisher, `{"user_id":"u1","message":"Leave request approved","kind":"leave_approved"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"n1"`)
	publisher.AssertExpectations(t)
}

func TestPublishNotificationMissingFields(t *testing.T) {
	publisher := &mocks.NotifierMock{}

	w := publishRequest(publisher, `{"kind":"info"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	publisher.AssertNotCalled(t, "Notify")
}

func TestPublishNotificationUnknownKind(t *testing.T) {
	publisher := &mocks.NotifierMock{}
	publisher.On("Notify", mock.Anything, "u1", "hi", "bogus").
		Return(models.Notification{}, notifier.ErrInvalid)

	w := publishRequest(publisher, `{"user_id":"u1","message":"hi","kind":"bogus"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishNotificationStorageFailure(t *testing.T) {
	publisher := &mocks.NotifierMock{}
	publisher.On("Notify", mock.Anything, "u1", "hi", "").
		Return(models.Notification{}, assert.AnError)

	w := publishRequest(publisher, `{"user_id":"u1","message":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
