package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaxKorjik/Mafia-Online/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter() *gin.Engine {
	service := newTestService()
	handler := auth.NewAuthHandler(service, time.Hour)

	r := gin.New()
	r.POST("/auth/signup", handler.SignupHandler)
	r.POST("/auth/login", handler.LoginHandler)
	r.POST("/auth/refresh", handler.RefreshSessionHandler)
	r.POST("/auth/logout", handler.LogoutHandler)
	r.GET("/protected", handler.RequireAuthMiddleware(0), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"id": ctx.GetInt64("id")})
	})
	return r
}

func postJSON(r *gin.Engine, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatal("no token cookie in response")
	return nil
}

func TestSignupHandler(t *testing.T) {
	t.Parallel()
	r := newAuthRouter()

	w := postJSON(r, "/auth/signup", `{"username":"valentina","password":"12345678"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, tokenCookie(t, w).Value)

	w = postJSON(r, "/auth/signup", `{"username":"valentina","password":"12345678"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, auth.ErrUsernameAlreadyExistsStr, w.Body.String())

	w = postJSON(r, "/auth/signup", `{"username":"valentina2","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, auth.ErrWeakPasswordStr, w.Body.String())

	w = postJSON(r, "/auth/signup", `{"username":"NOT OK","password":"12345678"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, auth.ErrInvalidUsernameFormatStr, w.Body.String())

	w = postJSON(r, "/auth/signup", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, auth.ErrInvalidRequestFormatStr, w.Body.String())
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()
	r := newAuthRouter()
	require.Equal(t, http.StatusCreated, postJSON(r, "/auth/signup", `{"username":"valentina","password":"12345678"}`).Code)

	w := postJSON(r, "/auth/login", `{"username":"valentina","password":"12345678"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, tokenCookie(t, w).Value)

	// Wrong password and unknown user collapse into the same answer.
	w = postJSON(r, "/auth/login", `{"username":"valentina","password":"87654321"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.ErrInvalidCredentialsStr, w.Body.String())

	w = postJSON(r, "/auth/login", `{"username":"nobody","password":"12345678"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.ErrInvalidCredentialsStr, w.Body.String())
}

func TestRequireAuthMiddleware(t *testing.T) {
	t.Parallel()
	r := newAuthRouter()
	signup := postJSON(r, "/auth/signup", `{"username":"valentina","password":"12345678"}`)
	cookie := tokenCookie(t, signup)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, auth.ErrMissingTokenStr, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code, "forged tokens get an uninformative answer")
}

func TestRefreshSessionHandler(t *testing.T) {
	t.Parallel()
	r := newAuthRouter()
	signup := postJSON(r, "/auth/signup", `{"username":"valentina","password":"12345678"}`)
	cookie := tokenCookie(t, signup)

	w := postJSON(r, "/auth/refresh", "", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, tokenCookie(t, w).Value)

	w = postJSON(r, "/auth/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutHandler(t *testing.T) {
	t.Parallel()
	r := newAuthRouter()

	w := postJSON(r, "/auth/logout", "")
	cookie := tokenCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
