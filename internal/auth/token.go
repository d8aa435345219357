package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long a session token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers every verification failure: expired, tampered,
// malformed, wrong algorithm. Callers get no finer detail.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller embedded in a verified token.
type Identity struct {
	UserID int64
	Email  string
}

// Tokens issues and verifies stateless session tokens. Validity is decided
// purely by signature and expiry; no server-side session store exists.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue signs a token embedding the user id and email, valid for TokenTTL.
func (t *Tokens) Issue(userID int64, email string) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"iat":     now.Unix(),
		"nbf":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks signature and time claims and returns the embedded identity.
func (t *Tokens) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	now := t.now().Unix()
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < now {
		return Identity{}, ErrInvalidToken
	}
	if nbf, ok := claims["nbf"].(float64); ok && int64(nbf) > now {
		return Identity{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return Identity{UserID: int64(userID), Email: email}, nil
}
