package utils // utils provides token and hashing helpers shared by handlers and middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// Sentinel verification failures.  Middleware logs which one occurred but
// collapses both to a generic 401 for the client.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token invalid")
)

// TokenClaims is the identity embedded in an access token.
type TokenClaims struct {
	UserID string
	Email  string
	Role   model.Role
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The claim set
// mirrors the legacy API: both "uid" and "userId" carry the subject so old
// clients keep working, plus "email", "userType", "exp" and "iat".
func NewAccessToken(secret, userID, email string, role model.Role, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"uid":      userID,
		"userId":   userID,
		"email":    email,
		"userType": string(role),
		"exp":      exp.Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccessToken parses and validates a raw token string.  Expired and
// malformed tokens surface as distinct sentinel errors so the caller can
// log them apart.
func VerifyAccessToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrTokenExpired
		}
		return TokenClaims{}, ErrTokenMalformed
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return TokenClaims{}, ErrTokenMalformed
	}

	out := TokenClaims{}
	if v, ok := claims["userId"].(string); ok && v != "" {
		out.UserID = v
	} else if v, ok := claims["uid"].(string); ok {
		out.UserID = v
	}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	if v, ok := claims["userType"].(string); ok {
		out.Role = model.ParseRole(v)
	}
	if out.UserID == "" {
		return TokenClaims{}, ErrTokenMalformed
	}
	return out, nil
}
