package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/token"
	"github.com/Luismorlan/socialmux/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func setupRouter(t *testing.T) (*gin.Engine, *token.Service) {
	gin.SetMode(gin.TestMode)
	tokens, err := token.NewService("session-secret", "reset-secret", time.Hour, time.Minute)
	require.Nil(t, err)
	users := store.NewMemoryStore()
	require.Nil(t, users.CreateUser(context.Background(), &model.User{
		Id:           "alice",
		FirstName:    "Alice",
		LastName:     "Doe",
		Email:        "alice@x.com",
		PasswordHash: "hash",
	}))

	router := gin.New()
	router.GET("/me", AccessGate(tokens, users), func(c *gin.Context) {
		c.JSON(http.StatusOK, Principal(c))
	})
	router.GET("/open", func(c *gin.Context) {
		assert.Nil(t, Principal(c))
		c.Status(http.StatusNoContent)
	})
	return router, tokens
}

func get(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAccessGateAcceptsSessionToken(t *testing.T) {
	router, tokens := setupRouter(t)
	tok, err := tokens.IssueSession("alice")
	require.Nil(t, err)

	w := get(router, "/me", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["_id"])
	_, hasHash := body["PasswordHash"]
	assert.False(t, hasHash)
}

func TestAccessGateRejects(t *testing.T) {
	router, tokens := setupRouter(t)
	reset, err := tokens.IssueReset("alice")
	require.Nil(t, err)
	ghost, err := tokens.IssueSession("ghost")
	require.Nil(t, err)

	testCases := []struct {
		name          string
		authorization string
		code          int
		message       string
	}{
		{"no header", "", utils.ErrorTokenNotExists, "Not authorized, no token"},
		{"not bearer", "Basic abc", utils.ErrorTokenNotExists, "Not authorized, no token"},
		{"empty bearer", "Bearer ", utils.ErrorTokenNotExists, "Not authorized, no token"},
		{"garbage", "Bearer abc.def.ghi", utils.ErrorTokenAuthFail, "Not authorized"},
		{"reset token", "Bearer " + reset, utils.ErrorTokenAuthFail, "Not authorized"},
		{"unknown subject", "Bearer " + ghost, utils.ErrorTokenAuthFail, "Not authorized"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(router, "/me", tc.authorization)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body errorBody
			require.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestPrincipalOutsideGate(t *testing.T) {
	router, _ := setupRouter(t)
	w := get(router, "/open", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type unavailableUsers struct {
	store.UserStore
}

func (unavailableUsers) GetUserById(ctx context.Context, id string) (*model.User, error) {
	return nil, errors.New("dial tcp 127.0.0.1:5432: connection refused")
}

func TestAccessGateStoreFailureIsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens, err := token.NewService("session-secret", "reset-secret", time.Hour, time.Minute)
	require.Nil(t, err)
	router := gin.New()
	router.GET("/me", AccessGate(tokens, unavailableUsers{store.NewMemoryStore()}), func(c *gin.Context) {
		c.JSON(http.StatusOK, Principal(c))
	})
	tok, err := tokens.IssueSession("alice")
	require.Nil(t, err)

	w := get(router, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body errorBody
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, utils.ErrorInternal, body.Code)
	assert.NotContains(t, body.Message, "connection refused")
}
