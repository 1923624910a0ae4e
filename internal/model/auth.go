package model

import "github.com/golang-jwt/jwt/v5"

// TenantClaims are the JWT claims carried by every API call. Company scopes
// every form lookup; UserID is stamped on created forms.
type TenantClaims struct {
	UserID  string `json:"userId"`
	Company string `json:"company"`
	jwt.RegisteredClaims
}

// TokenRequest is the request body for issuing a tenant token.
type TokenRequest struct {
	UserID  string `json:"userId"`
	Company string `json:"company"`
	Key     string `json:"key"`
}

// TokenResponse is returned after a token is issued
type TokenResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Company string `json:"company"`
}
