package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the caller identity supplied by the authentication subsystem.
// Token issuance happens outside this service; the middleware only verifies
// and unpacks these claims.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
