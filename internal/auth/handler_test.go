package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	httpHandler "github.com/consensuslabs/pavilion-mint/internal/http"
	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	responseHandler := httpHandler.NewResponseHandler(logger.NewNopLogger())

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(WalletMiddleware(svc))
	NewHandler(svc, responseHandler).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(RequireWallet(responseHandler))
	protected.GET("/whoami", func(c *gin.Context) {
		address, _ := GetWalletAddress(c)
		c.String(http.StatusOK, address)
	})
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestWalletConnectFlow(t *testing.T) {
	svc := newTestService()
	router := setupRouter(svc)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	w, resp := postJSON(t, router, "/api/v1/wallet/challenge", ChallengeRequest{Address: address})
	require.Equal(t, http.StatusOK, w.Code)
	var challenge ChallengeResponse
	require.NoError(t, json.Unmarshal(resp.Data, &challenge))

	w, resp = postJSON(t, router, "/api/v1/wallet/connect", ConnectRequest{
		Address:   address,
		Message:   challenge.Message,
		Signature: personalSign(t, key, challenge.Message),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var connected ConnectResponse
	require.NoError(t, json.Unmarshal(resp.Data, &connected))
	require.NotEmpty(t, connected.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+connected.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, address, rec.Body.String())
}

func TestRequireWalletWithoutToken(t *testing.T) {
	router := setupRouter(newTestService())

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp apiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "Please connect your wallet", resp.Error.Message)
	}
}

func TestConnectWithoutChallenge(t *testing.T) {
	router := setupRouter(newTestService())
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	w, resp := postJSON(t, router, "/api/v1/wallet/connect", ConnectRequest{
		Address:   address,
		Message:   "hello",
		Signature: personalSign(t, key, "hello"),
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)
}

func TestChallengeRejectsBadAddress(t *testing.T) {
	router := setupRouter(newTestService())

	w, resp := postJSON(t, router, "/api/v1/wallet/challenge", ChallengeRequest{Address: "0xnope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}
