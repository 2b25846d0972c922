package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseToken(t *testing.T) {
	secret := []byte("super-secret")

	token, err := issueToken(42, secret, time.Hour)
	require.NoError(t, err)

	subject, err := parseTokenSubject(token, secret)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(42), subject)
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("super-secret")

	token, err := issueToken(42, secret, -time.Second)
	require.NoError(t, err)

	_, err = parseTokenSubject(token, secret)
	assert.Error(t, err, "expired token must be rejected")
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := issueToken(42, []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = parseTokenSubject(token, []byte("wrong-secret"))
	assert.Error(t, err)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := parseTokenSubject("not.a.jwt", []byte("k"))
	assert.Error(t, err)
}

func TestSignup_ReturnsUserWithoutPasswordHash(t *testing.T) {
	env := newTestEnv()

	resp := env.do(t, http.MethodPost, "/api/auth/signup", SignupRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	user := body["user"]
	require.NotNil(t, user)
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, resp.Body.String(), "$2a$", "bcrypt hash must never be serialized")
}

func TestSignup_MissingFields(t *testing.T) {
	env := newTestEnv()

	resp := env.do(t, http.MethodPost, "/api/auth/signup", SignupRequest{Email: "a@b.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv()

	first := env.do(t, http.MethodPost, "/api/auth/signup", SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "secret"}, nil)
	require.Equal(t, http.StatusCreated, first.Code)

	second := env.do(t, http.MethodPost, "/api/auth/signup", SignupRequest{Name: "Alice Two", Email: "alice@example.com", Password: "other"}, nil)
	assert.Equal(t, http.StatusBadRequest, second.Code)

	var errBody ErrorResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &errBody))
	assert.Equal(t, "email already registered", errBody.Error)
}

func TestLogin_SetsCookieAndReturnsToken(t *testing.T) {
	env := newTestEnv()
	token, cookie := env.signupAndLogin(t, "Alice", "alice@example.com", "secret")

	assert.NotEmpty(t, token)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, token, cookie.Value, "cookie and body must carry the same token")
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	env := newTestEnv()
	env.signupAndLogin(t, "Alice", "alice@example.com", "secret")

	wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "alice@example.com", Password: "nope"}, nil)
	unknownEmail := env.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Email: "ghost@example.com", Password: "secret"}, nil)

	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, http.StatusBadRequest, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestMe_AcceptsCookieAndBearer(t *testing.T) {
	env := newTestEnv()
	token, cookie := env.signupAndLogin(t, "Alice", "alice@example.com", "secret")

	viaCookie := env.do(t, http.MethodGet, "/api/auth/me", nil, withCookie(cookie))
	require.Equal(t, http.StatusOK, viaCookie.Code, viaCookie.Body.String())

	viaBearer := env.do(t, http.MethodGet, "/api/auth/me", nil, withBearer(token))
	require.Equal(t, http.StatusOK, viaBearer.Code, viaBearer.Body.String())

	assert.JSONEq(t, viaCookie.Body.String(), viaBearer.Body.String())
}

func TestRequireAuth_MissingToken(t *testing.T) {
	env := newTestEnv()

	resp := env.do(t, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequireAuth_ForgedToken(t *testing.T) {
	env := newTestEnv()
	env.signupAndLogin(t, "Alice", "alice@example.com", "secret")

	forged, err := issueToken(1, []byte("attacker-secret"), time.Hour)
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/auth/me", nil, withBearer(forged))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	env := newTestEnv()
	env.signupAndLogin(t, "Alice", "alice@example.com", "secret")

	expired, err := issueToken(1, []byte(testSecret), -time.Second)
	require.NoError(t, err)

	resp := env.do(t, http.MethodGet, "/api/auth/me", nil, withBearer(expired))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequireAuth_DeletedUser(t *testing.T) {
	env := newTestEnv()
	token, _ := env.signupAndLogin(t, "Alice", "alice@example.com", "secret")

	// The token is valid but its subject no longer resolves.
	delete(env.userRepo.users, 1)

	resp := env.do(t, http.MethodGet, "/api/auth/me", nil, withBearer(token))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv()
	env.signupAndLogin(t, "Alice", "alice@example.com", "secret")

	resp := env.do(t, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	cookies := resp.Result().Cookies()
	require.NotEmpty(t, cookies)
	var cleared *http.Cookie
	for _, c := range cookies {
		if c.Name == sessionCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}
