package managers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"plan-pleno/internal/config"
	"plan-pleno/internal/schemas"
	"plan-pleno/internal/utils"
)

const issuer = "plan-pleno"

type JWTMgr interface {
	GenerateJWT(userId, role string) (string, error)
	ValidateJWT(tokenString string) (jwt.Claims, error)
	JWTMiddleware() gin.HandlerFunc
}

// JWTManager signs and validates HS256 tokens with a shared secret.
type JWTManager struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewJWTManager creates a JWTManager from the JWT configuration. It fails when the
// configured expiration cannot be parsed.
func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	expiration, err := cfg.ExpirationDuration()
	if err != nil {
		return nil, err
	}

	return &JWTManager{
		secret:     []byte(cfg.Secret),
		expiration: expiration,
		now:        time.Now,
	}, nil
}

// GenerateJWT generates a signed token for the given user.
func (jm *JWTManager) GenerateJWT(userId, role string) (string, error) {
	now := jm.now()
	claims := jwt.MapClaims{
		"iss":  issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(jm.expiration).Unix(),
		"sub":  userId,
		"role": role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jm.secret)
}

// ValidateJWT validates the given JWT and returns the claims if valid.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("invalid signing method %s", token.Method.Alg())
		}
		return jm.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(jm.now))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return token.Claims, nil
}

// JWTMiddleware rejects requests without a valid bearer token and stores the
// claims in the gin context under utils.ClaimsKey.
func (jm *JWTManager) JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		claims, err := jm.ValidateJWT(tokenString)
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, http.StatusUnauthorized, err)
			return
		}

		c.Set(utils.ClaimsKey.String(), claims)
		c.Next()
	}
}

// SubjectFromContext returns the user id of the authenticated request.
func SubjectFromContext(c *gin.Context) (string, error) {
	value, exists := c.Get(utils.ClaimsKey.String())
	if !exists {
		return "", errors.New("no claims in context")
	}

	claims, ok := value.(jwt.Claims)
	if !ok {
		return "", errors.New("unexpected claims type")
	}

	return claims.GetSubject()
}
