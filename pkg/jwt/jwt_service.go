package jwt

import (
	"errors"
	"fmt"
	"time"

	"recipe-share-api/domain"

	"github.com/golang-jwt/jwt/v4"
)

type (
	JWTService interface {
		GenerateToken(userID, tokenID string, expiresAt time.Time) (string, error)
		ParseToken(token string) (*Claims, error)
	}

	// Claims identify the user and the access-token row backing the token.
	Claims struct {
		UserID string `json:"user_id"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
	}
)

// Issuer is stamped on and required of every token. It is fixed so that
// renaming the app does not log everyone out.
const Issuer = "recipe-share-api"

func NewJWTService(secretKey string) JWTService {
	return &jwtService{
		secretKey: secretKey,
		issuer:    Issuer,
	}
}

func (c *Claims) TokenID() string {
	return c.ID
}

func (j *jwtService) GenerateToken(userID, tokenID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ParseToken(token string) (*Claims, error) {
	t_Token, err := jwt.ParseWithClaims(token, &Claims{}, j.parseToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := t_Token.Claims.(*Claims)
	if !ok || claims.UserID == "" || claims.ID == "" {
		return nil, domain.ErrTokenInvalid
	}
	if !claims.VerifyIssuer(j.issuer, true) {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
