package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/profile-service/apperror"
)

func newLoginHandler(t *testing.T) (http.HandlerFunc, *TokenService) {
	t.Helper()
	users := newFakeUsers()
	users.add(t, 3, "alice", "s3cret", RoleUser, nil)
	tokens := newTestTokens(t, testSecret)
	return NewHandlers(NewService(users, tokens)).HandleLogin(), tokens
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperror.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestHandleLogin_Success(t *testing.T) {
	handler, tokens := newLoginHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestHandleLogin_BadRequests(t *testing.T) {
	handler, _ := newLoginHandler(t)

	bodies := []string{
		`{"username":"alice"}`,
		`{"password":"s3cret"}`,
		`{"username":"","password":""}`,
		`{}`,
		`not json`,
		``,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
		assert.Equal(t, "Username and password required", decodeError(t, rr), "body %q", body)
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	handler, _ := newLoginHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"alice","password":"nope"}`))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid credentials", decodeError(t, rr))
}

func TestHandleLogin_OversizedBody(t *testing.T) {
	handler, _ := newLoginHandler(t)

	body := `{"username":"alice","password":"` + strings.Repeat("a", maxLoginBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWriteError_HidesCause(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rr, req, errors.New("pq: relation \"users\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decodeError(t, rr))
	assert.NotContains(t, rr.Body.String(), "relation")
}
