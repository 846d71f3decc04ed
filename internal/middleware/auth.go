package middleware

import (
	"context"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"sold2move/internal/config"
	"sold2move/internal/models"
)

// PrincipalKey is the fiber Locals key holding the authenticated *models.Principal.
const PrincipalKey = "principal"

// TokenVerifier validates a bearer JWT and returns its principal.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*models.Principal, error)
}

// OIDCVerifier verifies JWTs against an issuer's published key set.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier builds a verifier from the issuer and JWKS URL.
// An empty audience disables the audience check.
func NewOIDCVerifier(ctx context.Context, issuer, jwksURL, audience string) *OIDCVerifier {
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{
			ClientID:          audience,
			SkipClientIDCheck: audience == "",
		}),
	}
}

// Verify checks signature, issuer, audience and expiry.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*models.Principal, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	var claims struct {
		Email string `json:"email"`
	}
	if err := token.Claims(&claims); err != nil {
		return nil, err
	}
	return &models.Principal{
		Kind:    models.PrincipalUser,
		Subject: token.Subject,
		Email:   claims.Email,
	}, nil
}

// AuthMiddleware authenticates API callers by bearer token.
type AuthMiddleware struct {
	clients  *config.YAMLConfig
	verifier TokenVerifier
	log      *logrus.Entry
}

// NewAuthMiddleware creates a new auth middleware instance. Either argument may be nil.
func NewAuthMiddleware(clients *config.YAMLConfig, verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		clients:  clients,
		verifier: verifier,
		log:      logrus.WithField("component", "auth"),
	}
}

// Enabled reports whether any authentication method is configured.
func (m *AuthMiddleware) Enabled() bool {
	return m.verifier != nil || (m.clients != nil && len(m.clients.APIClients) > 0)
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return unauthorized(c, "missing bearer token")
	}

	if client := m.clients.FindAPIClient(token); client != nil {
		c.Locals(PrincipalKey, &models.Principal{Kind: models.PrincipalAPIClient, Subject: client.Name})
		return c.Next()
	}

	if m.verifier != nil {
		principal, err := m.verifier.Verify(c.Context(), token)
		if err == nil {
			c.Locals(PrincipalKey, principal)
			return c.Next()
		}
		m.log.WithError(err).Debug("Rejected bearer token")
	}

	return unauthorized(c, "invalid or expired token")
}

// AllowAnonymous lets every request through. Used in development when no auth is configured.
func (m *AuthMiddleware) AllowAnonymous(c fiber.Ctx) error {
	c.Locals(PrincipalKey, &models.Principal{Kind: models.PrincipalAPIClient, Subject: "anonymous"})
	return c.Next()
}

// PrincipalFrom returns the authenticated principal, or nil.
func PrincipalFrom(c fiber.Ctx) *models.Principal {
	p, _ := c.Locals(PrincipalKey).(*models.Principal)
	return p
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{Error: message})
}
