package authjwt

import (
	"crypto"
	"errors"
	"fmt"
	"strings"

	"github.com/bookmarksdev/api/internal/pkg/log"
	"github.com/bookmarksdev/api/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Config defines the config for the JWT middleware.
type Config struct {
	// PEM encoded RSA or EC public key. A bare base64 body is wrapped as PKIX.
	PublicKey string
	// Role that marks a principal as administrator.
	AdminRole string
	// Expected iss claim (optional).
	Issuer string
	// The Locals key to store the Principal.
	PrincipalCtxName string
}

var (
	ErrMissingToken   = errors.New("missing bearer token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token has no subject")
)

// Verifier validates bearer tokens against a single public key.
type Verifier struct {
	key       crypto.PublicKey
	methods   []string
	adminRole string
	issuer    string
}

// NewVerifier parses the public key once.
func NewVerifier(publicKey, adminRole, issuer string) (*Verifier, error) {
	pemBytes := []byte(normalizePEM(publicKey))

	if rsaKey, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes); err == nil {
		return &Verifier{key: rsaKey, methods: []string{"RS256", "RS384", "RS512"}, adminRole: adminRole, issuer: issuer}, nil
	}
	ecKey, err := jwt.ParseECPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key as RSA or EC: %w", err)
	}
	return &Verifier{key: ecKey, methods: []string{"ES256", "ES384", "ES512"}, adminRole: adminRole, issuer: issuer}, nil
}

func normalizePEM(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "-----BEGIN") {
		return key
	}
	return "-----BEGIN PUBLIC KEY-----\n" + key + "\n-----END PUBLIC KEY-----"
}

// ValidateToken validates a JWT and returns the Principal it carries.
// This is a pure function and does NOT write to the response.
func (v *Verifier) ValidateToken(tokenString string) (types.Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(v.methods)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return types.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return types.Principal{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return types.Principal{}, ErrMissingSubject
	}

	return types.NewPrincipal(sub, rolesFromClaims(claims), v.adminRole), nil
}

// rolesFromClaims merges realm_access.roles and a top level roles claim.
func rolesFromClaims(claims jwt.MapClaims) []string {
	var roles []string
	seen := map[string]bool{}
	add := func(raw interface{}) {
		list, ok := raw.([]interface{})
		if !ok {
			return
		}
		for _, r := range list {
			if s, ok := r.(string); ok && !seen[s] {
				seen[s] = true
				roles = append(roles, s)
			}
		}
	}

	if realm, ok := claims["realm_access"].(map[string]interface{}); ok {
		add(realm["roles"])
	}
	add(claims["roles"])
	return roles
}

// New creates a new middleware handler. It panics when the key cannot be parsed.
func New(cfg Config) fiber.Handler {
	verifier, err := NewVerifier(cfg.PublicKey, cfg.AdminRole, cfg.Issuer)
	if err != nil {
		panic(fmt.Sprintf("authjwt: %v", err))
	}
	return NewWithVerifier(verifier, cfg.PrincipalCtxName)
}

// NewWithVerifier builds the middleware around an existing Verifier.
func NewWithVerifier(verifier *Verifier, ctxName string) fiber.Handler {
	if ctxName == "" {
		ctxName = types.PrincipalCtxName
	}

	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(types.HeaderAuthorization))
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "Missing or invalid JWT",
			})
		}

		principal, err := verifier.ValidateToken(tokenString)
		if err != nil {
			log.WarnWithContext(c.UserContext(), "[authjwt] rejected token: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "Invalid token",
				"details": err.Error(),
			})
		}

		c.Locals(ctxName, principal)
		return c.Next()
	}
}

func bearerToken(header string) string {
	if !strings.HasPrefix(header, types.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, types.BearerPrefix))
}

// PrincipalFrom returns the Principal stored by the middleware.
func PrincipalFrom(c *fiber.Ctx) (types.Principal, bool) {
	p, ok := c.Locals(types.PrincipalCtxName).(types.Principal)
	return p, ok
}
