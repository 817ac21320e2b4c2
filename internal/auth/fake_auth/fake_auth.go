package fake_auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FakeAuth approves every request; used by handler tests that are not
// exercising the password gate itself.
type FakeAuth struct{}

func (fa FakeAuth) Enabled() bool { return true }

func (fa FakeAuth) CheckAccess(r *http.Request) bool { return true }

func (fa FakeAuth) StartSession(c *gin.Context) {}

func (fa FakeAuth) ClearSession(w http.ResponseWriter) {}
