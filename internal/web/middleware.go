package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gexx/gexx/internal/service"
)

const (
	ctxAccount = "account"
	ctxClaims  = "claims"
)

func isAPI(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// authenticate resolves the session into an account and stores both on c.
func (s *Server) authenticate(c echo.Context) bool {
	claims, err := s.sessions.Read(c)
	if err != nil {
		return false
	}
	acct, err := s.auth.Lookup(c.Request().Context(), claims.UserID, claims.TeamID)
	if err != nil {
		s.log.WithError(err).WithField("user", claims.UserID).Debug("session rejected")
		return false
	}
	c.Set(ctxClaims, claims)
	c.Set(ctxAccount, acct)
	return true
}

func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.authenticate(c) {
			s.sessions.Clear(c)
			target := "/login?redirect=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusSeeOther, target)
		}
		return next(c)
	}
}

func (s *Server) requireAPIUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.authenticate(c) {
			return c.JSON(http.StatusUnauthorized, map[string]interface{}{"ok": false, "error": "not signed in"})
		}
		return next(c)
	}
}

func account(c echo.Context) service.Account {
	acct, _ := c.Get(ctxAccount).(service.Account)
	return acct
}

func sessionID(c echo.Context) string {
	if claims, ok := c.Get(ctxClaims).(*Claims); ok {
		return claims.ID
	}
	return ""
}

// safeRedirect accepts only local absolute paths.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
