package jwt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(p user.Principal) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]int64
	mu                        sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 NewJWTAuth(secretKey),
		revokedTokens:             make(map[string]int64),
	}
}

// NewJWTAuth builds the HS256 verifier shared by token issuing and the router.
func NewJWTAuth(secretKey string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second))
}

func (j *JWTService) GenerateAccessToken(p user.Principal) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(principalClaims(p, expiresAt))
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()

	// forget revocations older than any token could live
	if d, err := time.ParseDuration(j.accessTokenExpirationTime); err == nil {
		cutoff := time.Now().Add(-d).Unix()
		for t, at := range j.revokedTokens {
			if at < cutoff {
				delete(j.revokedTokens, t)
			}
		}
	}
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

func principalClaims(p user.Principal, expiresAt int64) map[string]interface{} {
	claims := map[string]interface{}{
		"username": p.Username,
		"role":     string(p.Role),
		"type":     "access",
		"exp":      expiresAt,
	}
	if p.EmployeeID != "" {
		claims["employee_id"] = p.EmployeeID
	}
	return claims
}

// PrincipalFromContext reads the caller placed in ctx by jwtauth.Verifier.
func PrincipalFromContext(ctx context.Context) (user.Principal, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %v", user.ErrPrincipalMissing, err)
	}
	if token == nil {
		return user.Principal{}, user.ErrPrincipalMissing
	}

	roleStr, _ := claims["role"].(string)
	role, ok := user.ParseRole(roleStr)
	if !ok {
		return user.Principal{}, user.ErrPrincipalMissing
	}

	p := user.Principal{Role: role}
	p.Username, _ = claims["username"].(string)
	p.EmployeeID, _ = claims["employee_id"].(string)
	return p, nil
}

// NewContext returns ctx carrying a freshly signed token for p, the same shape
// jwtauth.Verifier produces. Used for work that runs outside a request, such as
// the startup baseline sync.
func NewContext(ctx context.Context, ja *jwtauth.JWTAuth, p user.Principal) (context.Context, error) {
	token, _, err := ja.Encode(principalClaims(p, time.Now().Add(time.Hour).Unix()))
	if err != nil {
		return nil, err
	}
	return jwtauth.NewContext(ctx, token, nil), nil
}
