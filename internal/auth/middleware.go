package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// HeaderAPIKey is the request header carrying the API key.
const HeaderAPIKey = "X-Api-Key"

// RequireAPIKey returns a middleware that checks X-Api-Key against a bcrypt
// hash. An empty hash disables the check. CORS preflights are let through.
func RequireAPIKey(hash string) gin.HandlerFunc {
	if hash == "" {
		return func(c *gin.Context) { c.Next() }
	}
	v := newKeyVerifier(hash)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if !v.verify(c.GetHeader(HeaderAPIKey)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "valid API key required"})
			return
		}
		c.Next()
	}
}

// keyVerifier remembers the SHA-256 digest of the last key that passed bcrypt,
// so repeat requests skip the bcrypt cost. Rejected keys are never remembered.
type keyVerifier struct {
	hash    []byte
	compare func(hash, key []byte) error
	last    atomic.Pointer[[sha256.Size]byte]
}

func newKeyVerifier(hash string) *keyVerifier {
	return &keyVerifier{hash: []byte(hash), compare: bcrypt.CompareHashAndPassword}
}

func (v *keyVerifier) verify(key string) bool {
	if key == "" {
		return false
	}
	sum := sha256.Sum256([]byte(key))
	if last := v.last.Load(); last != nil && subtle.ConstantTimeCompare(last[:], sum[:]) == 1 {
		return true
	}
	if v.compare(v.hash, []byte(key)) != nil {
		return false
	}
	v.last.Store(&sum)
	return true
}
