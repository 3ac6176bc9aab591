// internal/auth/auth.go
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles carried in the token.
const (
	RoleVendor = "vendor"
	RoleUser   = "user"
	RoleAdmin  = "admin"
)

// JWTClaims defines the payload for the JWT. ID is the vendor or user
// document id; the admin account carries its user id as well.
type JWTClaims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// JwtSecret is injected from configuration at startup via Init.
var JwtSecret []byte

var tokenTTL = 24 * time.Hour

// Init sets the signing secret and token lifetime. Expiration is a
// duration string like "24h"; empty or invalid keeps the default.
func Init(secret, expiration string) {
	JwtSecret = []byte(secret)
	if d, err := time.ParseDuration(expiration); err == nil && d > 0 {
		tokenTTL = d
	}
}

// GenerateJWT mints a signed token for the given identity and role.
func GenerateJWT(id, role string) (string, error) {
	expirationTime := time.Now().Add(tokenTTL)
	claims := &JWTClaims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtSecret)
}
