package web

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/gexx/gexx/internal/service"
)

type pageData struct {
	Title      string
	Account    *service.Account
	CSRF       template.HTML
	Flash      string
	Errors     service.ValidationErrors
	Form       any
	Redirect   string
	Summary    service.Summary
	Currency   string
	Table      *tableData
	Item       service.CreateItemInput
	Categories []string
	Statuses   []string
}

func (s *Server) page(c echo.Context, title string) pageData {
	d := pageData{
		Title:    title,
		CSRF:     csrf.TemplateField(c.Request()),
		Currency: s.cfg.Inventory.Currency,
	}
	if acct, ok := c.Get(ctxAccount).(service.Account); ok {
		d.Account = &acct
	}
	return d
}

func (s *Server) landing(c echo.Context) error {
	if s.authenticate(c) {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return c.Render(http.StatusOK, "landing", s.page(c, ""))
}

func (s *Server) loginPage(c echo.Context) error {
	d := s.page(c, "Login")
	d.Form = service.LoginInput{}
	d.Redirect = c.QueryParam("redirect")
	return c.Render(http.StatusOK, "login", d)
}

func (s *Server) login(c echo.Context) error {
	var in service.LoginInput
	if err := s.decodeForm(c, &in); err != nil {
		return err
	}
	redirect := safeRedirect(c.QueryParam("redirect"), "/dashboard")

	acct, err := s.auth.VerifyLogin(c.Request().Context(), in)
	if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrNoTeam) {
		d := s.page(c, "Login")
		d.Form = service.LoginInput{Email: in.Email}
		d.Redirect = c.QueryParam("redirect")
		d.Errors = service.ValidationErrors{"form": service.InvalidCredentialsMessage}
		return c.Render(http.StatusUnauthorized, "login", d)
	}
	if err != nil {
		return err
	}
	if _, err := s.sessions.Issue(c, acct.User.ID, acct.Team.TeamID); err != nil {
		return err
	}
	s.log.WithField("user", acct.User.ID).Info("signed in")
	return c.Redirect(http.StatusSeeOther, redirect)
}

func (s *Server) signupPage(c echo.Context) error {
	d := s.page(c, "Sign up")
	d.Form = service.SignupInput{}
	return c.Render(http.StatusOK, "signup", d)
}

func (s *Server) signup(c echo.Context) error {
	var in service.SignupInput
	if err := s.decodeForm(c, &in); err != nil {
		return err
	}
	acct, err := s.auth.Signup(c.Request().Context(), in)
	var verrs service.ValidationErrors
	if errors.As(err, &verrs) {
		d := s.page(c, "Sign up")
		d.Form = service.SignupInput{Name: in.Name, Email: in.Email}
		d.Errors = verrs
		return c.Render(http.StatusUnprocessableEntity, "signup", d)
	}
	if err != nil {
		return err
	}
	if _, err := s.sessions.Issue(c, acct.User.ID, acct.Team.TeamID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) logout(c echo.Context) error {
	if claims, err := s.sessions.Read(c); err == nil {
		s.views.Drop(claims.ID)
		s.log.WithFields(logrus.Fields{"user": claims.UserID, "session": claims.ID}).Info("signed out")
	}
	s.sessions.Clear(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) decodeForm(c echo.Context, dst interface{}) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := s.decoder.Decode(dst, form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
