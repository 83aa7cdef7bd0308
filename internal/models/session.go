package models

import "github.com/golang-jwt/jwt/v5"

// FormSessionClaims are carried by signed form session tokens.
type FormSessionClaims struct {
	SessionID string          `json:"sid"`
	ClientKey string          `json:"client"`
	Type      ApplicationType `json:"type"`
	jwt.RegisteredClaims
}
