package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const sessionCookie = "gexx_session"

// Claims is the signed content of the session cookie. The registered ID is
// the session id that scopes table views.
type Claims struct {
	UserID string `json:"uid"`
	TeamID string `json:"tid"`
	jwt.RegisteredClaims
}

func (c *Claims) Valid() error {
	if c.UserID == "" {
		return errors.New("user id not present")
	}
	if c.ID == "" {
		return errors.New("session id not present")
	}
	return c.RegisteredClaims.Valid()
}

// Sessions issues and verifies session cookies.
type Sessions struct {
	Key    []byte
	TTL    time.Duration
	Secure bool
}

// Issue signs a new session for the user and sets the cookie.
func (s *Sessions) Issue(c echo.Context, userID, teamID string) (*Claims, error) {
	if len(s.Key) == 0 {
		return nil, errors.New("session key not configured")
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	expiry := now.Add(ttl)
	claims := &Claims{
		UserID: userID,
		TeamID: teamID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Key)
	if err != nil {
		return nil, err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		Secure:   s.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiry,
	})
	return claims, nil
}

// Read verifies the session cookie of the request.
func (s *Sessions) Read(c echo.Context) (*Claims, error) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.Key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session")
	}
	return claims, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Secure:   s.Secure,
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
