package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

type Claims struct {
	UserRole  string `json:"user_role"`
	UserID    uint   `json:"id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 access/refresh token pairs.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) GenerateTokens(userRole string, userID uint) (string, string, error) {
	access, err := t.sign(userRole, userID, TokenTypeAccess, t.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := t.sign(userRole, userID, TokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (t *TokenIssuer) sign(userRole string, userID uint, tokenType string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		UserRole:  userRole,
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ValidateToken parses an access token.
func (t *TokenIssuer) ValidateToken(tokenString string) (*Claims, error) {
	return t.parse(tokenString, TokenTypeAccess)
}

func (t *TokenIssuer) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("error parsing token: %w", err)
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	if claims.UserID == 0 {
		return nil, errors.New("id not found in token")
	}
	return claims, nil
}

// RefreshTokens issues a new pair from a valid refresh token.
func (t *TokenIssuer) RefreshTokens(oldRefreshToken string) (string, string, error) {
	claims, err := t.parse(oldRefreshToken, TokenTypeRefresh)
	if err != nil {
		return "", "", err
	}
	return t.GenerateTokens(claims.UserRole, claims.UserID)
}
