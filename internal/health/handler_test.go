package health

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type mockResponseHandler struct {
	mock.Mock
}

func (m *mockResponseHandler) SuccessResponse(c *gin.Context, data interface{}, message string) {
	m.Called(c, data, message)
}

func (m *mockResponseHandler) ErrorResponse(c *gin.Context, status int, code, message string, err error) {
	m.Called(c, status, code, message, err)
}

func TestHandleHealthCheck_Degraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	responses := new(mockResponseHandler)
	responses.On("SuccessResponse", c, mock.MatchedBy(func(s Status) bool {
		return s.Status == "degraded" && s.Dependencies["redis"] == "refused" && s.Dependencies["db"] == "ok"
	}), "Health check successful").Return()

	handler := NewHandler(responses, map[string]Checker{
		"db":    func() error { return nil },
		"redis": func() error { return errors.New("refused") },
	})
	handler.HandleHealthCheck(c)

	responses.AssertExpectations(t)
}

func TestHandleHealthCheck_Healthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	responses := new(mockResponseHandler)
	responses.On("SuccessResponse", c, mock.MatchedBy(func(s Status) bool {
		return s.Status == "healthy"
	}), mock.Anything).Return()

	NewHandler(responses, nil).HandleHealthCheck(c)

	responses.AssertExpectations(t)
}
