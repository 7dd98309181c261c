package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ServiceTokenClaims is the typed JWT carried by the two trusted callers.
// Bot tokens identify the caller only; the customer acted for arrives in the
// request itself. Operator tokens carry the operator's id.
type ServiceTokenClaims struct {
	Role       enums.ActorRole `json:"role"`
	OperatorID int64           `json:"operator_id,omitempty"`
	jwt.RegisteredClaims
}

// ServiceTokenPayload captures the data available when minting a token.
type ServiceTokenPayload struct {
	Role       enums.ActorRole
	OperatorID int64
}

// MintServiceToken issues a signed JWT for the provided payload using the
// configured TTL.
func MintServiceToken(cfg config.AuthConfig, now time.Time, payload ServiceTokenPayload) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("auth secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("auth issuer is required")
	}
	if cfg.TokenTTL() <= 0 {
		return "", fmt.Errorf("token expiration must be positive")
	}
	if !payload.Role.IsValid() {
		return "", fmt.Errorf("invalid actor role %q", payload.Role)
	}
	if payload.Role == enums.ActorRoleOperator && payload.OperatorID == 0 {
		return "", fmt.Errorf("operator tokens require an operator id")
	}

	claims := ServiceTokenClaims{
		Role:       payload.Role,
		OperatorID: payload.OperatorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL())),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseServiceToken validates the JWT string and returns typed claims.
func ParseServiceToken(cfg config.AuthConfig, tokenString string) (*ServiceTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("auth secret is required")
	}

	claims := &ServiceTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}
	if !claims.Role.IsValid() {
		return nil, fmt.Errorf("token carries unknown role %q", claims.Role)
	}
	return claims, nil
}
