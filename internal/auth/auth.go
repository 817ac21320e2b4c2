package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/pbkdf2"
)

const (
	authCookie = "cloudimgs_auth"

	// PasswordHeader and PasswordQuery are the two transports for the
	// raw site password besides the session cookie.
	PasswordHeader = "X-Access-Password"
	PasswordQuery  = "password"

	cookieMaxAge = 30 * 24 * time.Hour
)

type (
	secret []byte

	// Authorizer gates requests on the single shared site password.
	// The session cookie is a pbkdf2 digest of the password, so it is
	// recomputable on every check and never stored server-side, while
	// a leaked cookie does not reveal the password itself.
	Authorizer struct {
		secret  secret
		enabled bool
	}

	Login struct {
		Password string `form:"password" json:"password" binding:"required"`
	}
)

// New builds an Authorizer for the shared password. An empty password
// disables the password feature: every check passes.
func New(sharedSecret string) (Authorizer, error) {
	if sharedSecret == "" {
		return Authorizer{}, nil
	}
	ss, err := parseSecret([]byte(sharedSecret))
	if err != nil {
		return Authorizer{}, err
	}
	return Authorizer{
		secret:  ss,
		enabled: true,
	}, nil
}

func (a *Authorizer) Enabled() bool {
	return a.enabled
}

// CheckAccess reports whether the request carries a valid credential:
// the password in the header or query string, or the derived session
// cookie. Always true when the password feature is disabled.
func (a *Authorizer) CheckAccess(r *http.Request) bool {
	if !a.enabled {
		return true
	}
	if a.matchPassword(r.Header.Get(PasswordHeader)) {
		return true
	}
	if a.matchPassword(r.URL.Query().Get(PasswordQuery)) {
		return true
	}
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return false
	}
	s, err := getSecretFromBase64(cookie.Value)
	if err != nil {
		return false
	}
	return isSecretsEqual(s, a.secret)
}

func (a *Authorizer) matchPassword(candidate string) bool {
	if candidate == "" {
		return false
	}
	s, err := parseSecret([]byte(candidate))
	if err != nil {
		return false
	}
	return isSecretsEqual(s, a.secret)
}

// StartSession verifies the submitted password and issues the session
// cookie on success.
func (a *Authorizer) StartSession(c *gin.Context) {
	if !a.enabled {
		c.Status(http.StatusOK)
		return
	}

	var json Login

	if err := c.ShouldBindJSON(&json); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := parseSecret([]byte(json.Password))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
		return
	}

	if !isSecretsEqual(s, a.secret) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     authCookie,
		Value:    base64.StdEncoding.EncodeToString(a.secret),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isRequestSecure(c.Request),
		MaxAge:   int(cookieMaxAge.Seconds()),
	})
	c.Status(http.StatusOK)
}

func (a *Authorizer) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
	})
}

// isRequestSecure checks for TLS either on the connection itself or via
// the X-Forwarded-Proto header set by a TLS-terminating reverse proxy.
func isRequestSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}

func getSecretFromBase64(b64encoded string) (secret, error) {
	if len(b64encoded) == 0 {
		return secret{}, errors.New("invalid secret")
	}

	decoded, err := base64.StdEncoding.DecodeString(b64encoded)
	if err != nil {
		return secret{}, err
	}

	return secret(decoded), nil
}

func parseSecret(key []byte) (secret, error) {
	if len(key) == 0 {
		return secret{}, errors.New("secret key is empty")
	}

	hash := pbkdf2.Key(key, []byte{1, 2, 3, 4}, 1000, 32, sha256.New)

	return secret(hash), nil
}

func isSecretsEqual(a, b secret) bool {
	return subtle.ConstantTimeCompare(a, b) != 0
}
