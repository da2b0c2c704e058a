// Package auth resolves the caller's identity from a Casdoor bearer token.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
)

const (
	ContextUserID    = "user_id"
	ContextUserName  = "user_name"
	ContextUserEmail = "user_email"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrAuthDisabled = errors.New("authentication is not configured")
	errEmptySubject = errors.New("token has no subject")
)

// TokenParser verifies a raw bearer token and returns who it belongs to
type TokenParser func(token string) (*models.Identity, error)

// NewCasdoorParser verifies tokens against the Casdoor application certificate
func NewCasdoorParser(cfg config.CasdoorConfig) TokenParser {
	if !cfg.Enabled() {
		return func(string) (*models.Identity, error) { return nil, ErrAuthDisabled }
	}

	client := casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.Organization, cfg.Application)
	return func(token string) (*models.Identity, error) {
		claims, err := client.ParseJwtToken(token)
		if err != nil {
			return nil, err
		}
		userID := claims.User.Id
		if userID == "" {
			userID = claims.RegisteredClaims.Subject
		}
		if userID == "" {
			return nil, errEmptySubject
		}
		name := claims.User.DisplayName
		if name == "" {
			name = claims.User.Name
		}
		return &models.Identity{UserID: userID, Name: name, Email: claims.User.Email}, nil
	}
}

type Middleware struct {
	parse  TokenParser
	logger utils.Logger
}

func NewMiddleware(parse TokenParser, logger utils.Logger) *Middleware {
	return &Middleware{parse: parse, logger: logger}
}

// OptionalAuth lets anonymous requests through. A token that is present but
// invalid is still rejected.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.authenticate(c); err != nil && !errors.Is(err, ErrMissingToken) {
			m.reject(c, err)
			return
		}
		c.Next()
	}
}

func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.authenticate(c); err != nil {
			m.reject(c, err)
			return
		}
		c.Next()
	}
}

func (m *Middleware) authenticate(c *gin.Context) error {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		return ErrMissingToken
	}

	identity, err := m.parse(token)
	if err != nil {
		return err
	}

	c.Set(ContextUserID, identity.UserID)
	c.Set(ContextUserName, identity.Name)
	c.Set(ContextUserEmail, identity.Email)
	return nil
}

func (m *Middleware) reject(c *gin.Context, err error) {
	utils.GetLoggerFromContext(c, m.logger).Warn("Authentication failed", "error", err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// IdentityFromContext returns the authenticated caller, or an empty identity for guests
func IdentityFromContext(c *gin.Context) models.Identity {
	return models.Identity{
		UserID: c.GetString(ContextUserID),
		Name:   c.GetString(ContextUserName),
		Email:  c.GetString(ContextUserEmail),
	}
}
