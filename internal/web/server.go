// Package web serves the inventory dashboard over HTTP.
package web

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/gexx/gexx/internal/config"
	"github.com/gexx/gexx/internal/service"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Config     config.Config
	Log        *logrus.Logger
	Auth       *service.AuthService
	Inventory  *service.InventoryService
	Dashboard  *service.DashboardService
	Export     service.ExportService
	SessionKey []byte
}

// Server is the HTTP surface.
type Server struct {
	cfg       config.Config
	log       *logrus.Logger
	auth      *service.AuthService
	inventory *service.InventoryService
	dashboard *service.DashboardService
	export    service.ExportService
	sessions  *Sessions
	views     *ViewRegistry
	tmpl      *Templates
	decoder   *schema.Decoder
	echo      *echo.Echo
}

// New wires the routes. Close releases the view registry.
func New(d Deps) (*Server, error) {
	if d.Auth == nil || d.Inventory == nil || d.Dashboard == nil {
		return nil, errors.New("web: auth, inventory and dashboard services are required")
	}
	if len(d.SessionKey) == 0 {
		return nil, errors.New("web: session key is required")
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	s := &Server{
		cfg:       d.Config,
		log:       d.Log,
		auth:      d.Auth,
		inventory: d.Inventory,
		dashboard: d.Dashboard,
		export:    d.Export,
		sessions:  &Sessions{Key: d.SessionKey, TTL: d.Config.Server.SessionTTL, Secure: d.Config.Server.SecureCookies},
		views:     NewViewRegistry(d.Inventory, d.Config.Table.ViewTTL, d.Config.Table.PageSize),
		tmpl:      tmpl,
		decoder:   dec,
	}
	s.echo = s.routes()
	return s, nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = s.tmpl
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	}))
	if s.cfg.Server.CSRF {
		e.Use(s.csrfMiddleware())
	}

	e.GET("/", s.landing)
	e.GET("/login", s.loginPage)
	e.POST("/login", s.login)
	e.GET("/signup", s.signupPage)
	e.POST("/signup", s.signup)
	e.POST("/logout", s.logout)

	app := e.Group("", s.requireUser)
	app.GET("/dashboard", s.dashboardPage)
	app.GET("/inventory", s.inventoryPage)
	app.POST("/inventory", s.createItem)
	app.POST("/inventory/table/:view", s.tableOp)
	app.POST("/inventory/delete-selected", s.deleteSelected)
	app.GET("/inventory/export.xlsx", s.exportXLSX)
	app.POST("/inventory/:id/stock", s.updateStock)

	api := e.Group("/api/v1", s.requireAPIUser)
	api.Any("/user", s.apiUser)
	api.GET("/tables/:view", s.apiTable)
	api.POST("/tables/:view", s.apiTableOp)
	api.GET("/dashboard", s.apiDashboard)
	return e
}

func (s *Server) csrfMiddleware() echo.MiddlewareFunc {
	key := sha256.Sum256(append([]byte("csrf:"), s.sessions.Key...))
	protect := csrf.Protect(key[:],
		csrf.Path("/"),
		csrf.Secure(s.cfg.Server.SecureCookies),
		csrf.FieldName("csrf_token"),
	)
	secure := s.cfg.Server.SecureCookies
	return echo.WrapMiddleware(func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	})
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("uri", c.Request().RequestURI).Error("handler error")
	}
	if isAPI(c) {
		_ = c.JSON(code, map[string]interface{}{"ok": false, "error": msg})
		return
	}
	_ = c.String(code, msg)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errc <- s.echo.Start(addr)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// Close releases the view registry.
func (s *Server) Close() error { return s.views.Close() }
