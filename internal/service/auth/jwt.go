package auth

import (
	"errors"
	"fmt"
	"time"

	"LearnScope/internal/app_errors"
	"LearnScope/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var signingMethod = jwt.SigningMethodHS256

// JWTManager resolves bearer tokens to users. Tokens are minted by the
// account system; this service only needs to verify them and read identity
// and role claims.
type JWTManager struct {
	secretKey string
	issuer    string
	accessTTL time.Duration
}

func NewJWTManager(secretKey, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: secretKey,
		issuer:    issuer,
		accessTTL: accessTTL,
	}
}

type AccessTokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Roles    []string  `json:"roles"`
	jwt.RegisteredClaims
}

// UserFromToken validates the token and returns the user it identifies.
func (j *JWTManager) UserFromToken(tokenStr string) (models.User, error) {
	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.User{}, app_errors.ErrTokenExpired
		}
		return models.User{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	return models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Roles:    claims.Roles,
	}, nil
}

// IssueToken signs an access token for a user. Kept for tooling and tests;
// production tokens come from the account system with the same secret.
func (j *JWTManager) IssueToken(user models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(signingMethod, AccessTokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    j.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("access token signing failed: %w", err)
	}
	return signed, nil
}
