package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hrforms/internal/model"
)

var (
	ErrInvalidTenant      = errors.New("userId and company are required")
	ErrInvalidCredentials = errors.New("invalid company key")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService issues and validates tenant tokens
type AuthService struct {
	jwtSecret  []byte
	tenantKeys map[string]string
	ttl        time.Duration
}

// NewAuthService creates a new auth service. tenantKeys maps each company to
// the key its clients present when asking for a token.
func NewAuthService(secret string, tenantKeys map[string]string) *AuthService {
	keys := make(map[string]string, len(tenantKeys))
	for company, key := range tenantKeys {
		keys[company] = key
	}
	return &AuthService{
		jwtSecret:  []byte(secret),
		tenantKeys: keys,
		ttl:        12 * time.Hour,
	}
}

// IssueToken signs a token scoped to one user of one company. The caller
// must present the company's key.
func (s *AuthService) IssueToken(userID, company, key string) (*model.TokenResponse, error) {
	if userID == "" || company == "" {
		return nil, ErrInvalidTenant
	}
	want, ok := s.tenantKeys[company]
	if !ok || want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(key)) != 1 {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := &model.TenantClaims{
		UserID:  userID,
		Company: company,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		Token:   tokenString,
		UserID:  userID,
		Company: company,
	}, nil
}

// ValidateToken validates a tenant JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.TenantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.TenantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.TenantClaims)
	if !ok || !token.Valid || claims.Company == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
