package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newGuarded(hash string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(RequireAPIKey(hash))
	e.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	e.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return e
}

func TestRequireAPIKey(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	e := newGuarded(string(h))

	cases := []struct {
		name   string
		method string
		key    string
		want   int
	}{
		{"missing key", http.MethodGet, "", http.StatusUnauthorized},
		{"wrong key", http.MethodGet, "nope", http.StatusUnauthorized},
		{"valid key", http.MethodGet, "s3cret", http.StatusOK},
		{"preflight", http.MethodOptions, "", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/ping", nil)
			if tc.key != "" {
				req.Header.Set(HeaderAPIKey, tc.key)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireAPIKeyDisabled(t *testing.T) {
	e := newGuarded("")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestKeyVerifierSkipsBcryptForKnownKey(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	v := newKeyVerifier(string(h))
	calls := 0
	v.compare = func(hash, key []byte) error {
		calls++
		return bcrypt.CompareHashAndPassword(hash, key)
	}

	for i := 0; i < 3; i++ {
		assert.True(t, v.verify("s3cret"))
	}
	assert.Equal(t, 1, calls)

	// wrong keys always pay for bcrypt and are not remembered
	assert.False(t, v.verify("guess"))
	assert.False(t, v.verify("guess"))
	assert.Equal(t, 3, calls)
	assert.True(t, v.verify("s3cret"))
	assert.Equal(t, 3, calls)
}
