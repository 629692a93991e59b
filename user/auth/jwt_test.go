package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/user/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtKey = []byte("test-key")

func TestGenerateAndValidate(t *testing.T) {
	token, err := auth.GenerateJWT(auth.Subject{UserID: 7, Username: "jdoe", Email: "jdoe@example.com"}, jwtKey)
	require.NoError(t, err)

	claims, err := auth.ValidateJWT(token, jwtKey)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "7", claims.Subject)

	_, err = auth.ValidateJWT(token, []byte("other-key"))
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	var seen *auth.JwtClaims
	handler := auth.GetJwtAuthMiddleware(jwtKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	// anonymous
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Nil(t, seen)

	// valid token
	token, err := auth.GenerateJWT(auth.Subject{UserID: 3, Username: "ann"}, jwtKey)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(3), seen.UserID)

	// garbage token
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.RequireClaims(req.Context())
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeUnauthorized))

	ctx := auth.WithClaims(req.Context(), &auth.JwtClaims{UserID: 1})
	claims, err := auth.RequireClaims(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
}
