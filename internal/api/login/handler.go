// Package login provides the sign-in, callback, sign-out and auth error
// page handlers.
package login

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/acesastra/ace-portal/internal/api/middleware"
	"github.com/acesastra/ace-portal/internal/auth"
	"github.com/acesastra/ace-portal/internal/provisioning"
	"github.com/acesastra/ace-portal/pkg/logger"
)

// ErrorPath is where failed callbacks are redirected.
const ErrorPath = "/auth/auth-error"

var errorPageTemplate = template.Must(template.New("auth-error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} | {{.Site}}</title>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
<p>Error Code: {{.Code}}</p>
<p><a href="/auth/login">Try Again</a> <a href="/">Go Home</a></p>
</main>
</body>
</html>
`))

// Authenticator starts logins and ends sessions.
type Authenticator interface {
	LoginURL(next string) (string, error)
	SignOut(ctx context.Context, sessionID string) error
}

// CallbackHandler runs the OAuth callback pipeline.
type CallbackHandler interface {
	HandleCallback(ctx context.Context, params provisioning.CallbackParams) provisioning.Result
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Domain string
	MaxAge time.Duration
	Secure bool
}

// Handler handles authentication requests.
type Handler struct {
	auth     Authenticator
	callback CallbackHandler
	cookie   CookieConfig
	siteName string
	log      *logger.Logger
}

// NewHandler creates a new login handler.
func NewHandler(authService *auth.Service, provisioner *provisioning.Service, cookie CookieConfig, siteName string, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(authService, provisioner, cookie, siteName, log)
}

// NewHandlerWithInterfaces creates a new login handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(authService Authenticator, callback CallbackHandler, cookie CookieConfig, siteName string, log *logger.Logger) *Handler {
	return &Handler{
		auth:     authService,
		callback: callback,
		cookie:   cookie,
		siteName: siteName,
		log:      log,
	}
}

// RegisterRoutes mounts the handler on a router group.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/login", h.Login)
	r.GET("/callback", h.Callback)
	r.POST("/logout", h.Logout)
	r.GET("/auth-error", h.ErrorPage)
}

// Login redirects to the identity provider.
// GET /auth/login?next=/events/123.
func (h *Handler) Login(c *gin.Context) {
	target, err := h.auth.LoginURL(c.Query("next"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build login URL")
		c.Redirect(http.StatusFound, errorRedirect(provisioning.OutcomeOAuthError))
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Callback completes the OAuth flow and provisions the member profile.
// GET /auth/callback?code=...&state=....
func (h *Handler) Callback(c *gin.Context) {
	result := h.callback.HandleCallback(c.Request.Context(), provisioning.CallbackParams{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
		ErrorCode:        c.Query("error_code"),
	})

	if !result.OK() {
		c.Redirect(http.StatusFound, errorRedirect(result.Outcome))
		return
	}

	h.setSessionCookie(c, result.Session.ID, int(h.cookie.MaxAge.Seconds()))

	next := auth.SafeNext(result.Next)
	c.Redirect(http.StatusFound, next)
}

// Logout revokes the current session and clears the cookie.
// POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	sessionID, _ := c.Cookie(h.cookie.Name)
	if p, ok := middleware.PrincipalFrom(c); ok {
		sessionID = p.SessionID
	}

	if err := h.auth.SignOut(c.Request.Context(), sessionID); err != nil {
		h.log.Warn().Err(err).Msg("Failed to revoke session")
	}
	h.setSessionCookie(c, "", -1)

	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

// ErrorPage renders the human-readable auth error page.
// GET /auth/auth-error?errorCode=INVALID_EMAIL_DOMAIN.
func (h *Handler) ErrorPage(c *gin.Context) {
	page := provisioning.PageFor(c.Query("errorCode"))

	c.Render(http.StatusOK, render.HTML{
		Template: errorPageTemplate,
		Data: gin.H{
			"Title":   page.Title,
			"Message": page.Message,
			"Code":    page.Code,
			"Site":    h.siteName,
		},
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func errorRedirect(outcome provisioning.Outcome) string {
	return ErrorPath + "?" + url.Values{"errorCode": {string(outcome)}}.Encode()
}
