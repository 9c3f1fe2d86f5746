package mint

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/consensuslabs/pavilion-mint/internal/auth"
	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
	apphttp "github.com/consensuslabs/pavilion-mint/internal/http"
	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const walletHeader = "X-Test-Wallet"

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *apphttp.Error  `json:"error"`
}

type viewResponse struct {
	apiResponse
	Data View
}

func setupRouter(t *testing.T, env *testEnv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if wallet := c.GetHeader(walletHeader); wallet != "" {
			c.Set(auth.WalletAddressKey, wallet)
		}
		c.Next()
	})

	log := logger.NewNopLogger()
	handler := NewHandler(env.service, apphttp.NewResponseHandler(log), log)
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, req *http.Request, wallet string) (*httptest.ResponseRecorder, viewResponse) {
	t.Helper()
	if wallet != "" {
		req.Header.Set(walletHeader, wallet)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body viewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body.apiResponse), w.Body.String())
	if len(body.apiResponse.Data) > 0 && body.apiResponse.Data[0] == '{' {
		require.NoError(t, json.Unmarshal(body.apiResponse.Data, &body.Data))
	}
	return w, body
}

func TestHandleViewWithoutWallet(t *testing.T) {
	router := setupRouter(t, newTestEnv(t, &fakePipeline{}))

	w, body := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/view", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apperrors.ErrMsgWalletRequired, body.Data.Message)
	assert.Nil(t, body.Data.Intake)

	w, body = doRequest(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/view", nil), testWallet)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, body.Data.Intake)
	assert.Equal(t, HintSelectFile, body.Data.Intake.ProgressText)
}

func TestSessionRoutesRequireWallet(t *testing.T) {
	router := setupRouter(t, newTestEnv(t, &fakePipeline{}))

	w, body := doRequest(t, router, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, apperrors.ErrMsgWalletRequired, body.Error.Message)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	router := setupRouter(t, env)

	w, body := doRequest(t, router, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil), testWallet)
	require.Equal(t, http.StatusCreated, w.Code)
	id := body.Data.SessionID
	require.NotEmpty(t, id)
	assert.Equal(t, StateIdle, body.Data.State)

	w, _ = doRequest(t, router, httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/create", nil), testWallet)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload, contentType := multipartBody(t, upload{"a.mp4", mp4Header}, upload{"b.mp4", mp4Header})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/file", payload)
	req.Header.Set("Content-Type", contentType)
	w, body = doRequest(t, router, req, testWallet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, body.Data.Intake.FileSelected)

	payload, contentType = multipartBody(t, upload{"clip.mp4", mp4Header})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/file", payload)
	req.Header.Set("Content-Type", contentType)
	w, body = doRequest(t, router, req, testWallet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Data.Intake.FileSelected)
	assert.Equal(t, "clip.mp4", body.Data.Intake.FileName)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+id+"/details",
		strings.NewReader(`{"name":"demo","description":"my first video"}`))
	req.Header.Set("Content-Type", "application/json")
	w, body = doRequest(t, router, req, testWallet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "demo", body.Data.Intake.Name)

	w, _ = doRequest(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil), "0xabc0000000000000000000000000000000000002")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = doRequest(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id+"/timeline", nil), testWallet)
	assert.Equal(t, http.StatusOK, w.Code)
	var timeline []Transition
	require.NoError(t, json.Unmarshal(body.apiResponse.Data, &timeline))
	require.Len(t, timeline, 1)
	assert.Equal(t, StateIdle, timeline[0].To)

	w, _ = doRequest(t, router, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/"+id, nil), testWallet)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil), testWallet)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	router := setupRouter(t, env)

	w, body := doRequest(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-a-uuid", nil), testWallet)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", body.Error.Field)

	_, body = doRequest(t, router, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil), testWallet)
	id := body.Data.SessionID

	payload, contentType := multipartBody(t, upload{"clip.mkv", append([]byte{0x1a, 0x45, 0xdf, 0xa3}, []byte("\x42\x82\x88matroska")...)})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/file", payload)
	req.Header.Set("Content-Type", contentType)
	w, body = doRequest(t, router, req, testWallet)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "video", body.Error.Field)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+id+"/details", strings.NewReader(`{"description":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w, body = doRequest(t, router, req, testWallet)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", body.Error.Field)
	assert.Equal(t, "Name is required", body.Error.Message)
}

func TestHandleSetDetailsMalformedBody(t *testing.T) {
	env := newTestEnv(t, &fakePipeline{})
	router := setupRouter(t, env)

	_, body := doRequest(t, router, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil), testWallet)
	id := body.Data.SessionID

	for _, payload := range []string{`{"name":`, `[1,2]`, `{"name":42}`} {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+id+"/details", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w, body := doRequest(t, router, req, testWallet)
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
		assert.Equal(t, "body", body.Error.Field, payload)
		assert.Equal(t, "Invalid request body", body.Error.Message, payload)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/"+id+"/details", strings.NewReader(`{"name":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	w, body := doRequest(t, router, req, testWallet)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", body.Error.Field)
}
