// Package auth gates the instructor surface. Students are anonymous; the only
// credential in the system is a shared instructor passcode, verified against
// a bcrypt hash and exchanged for a short-lived JWT.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const RoleInstructor = "instructor"

var ErrBadCode = errors.New("invalid access code")

type Service struct {
	hmac     []byte
	codeHash []byte
	ttl      time.Duration
}

func NewService(secret, codeHash string) *Service {
	return &Service{hmac: []byte(secret), codeHash: []byte(codeHash), ttl: 8 * time.Hour}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Exchange verifies the shared passcode and issues an instructor token.
func (s *Service) Exchange(code string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.codeHash, []byte(strings.TrimSpace(code))); err != nil {
		return "", ErrBadCode
	}
	now := time.Now()
	claims := &Claims{
		Role: RoleInstructor,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "classtally",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

func (s *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("bad token")
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// HashCode bcrypts a plaintext passcode, for config bootstrapping.
func HashCode(code string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(h), err
}
