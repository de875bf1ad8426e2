package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"
)

// RedisClient is an optional shared Redis client used as the token revocation
// store. It stays nil when REDIS_ADDR is not configured; revocation checks are
// skipped in that case and logout becomes a no-op on the server side.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		var dbn int
		_, _ = fmt.Sscanf(dbStr, "%d", &dbn)
		opts.DB = dbn
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(context.Background()).Err(); err != nil {
		fmt.Printf("warning: redis ping failed: %v\n", err)
		// don't fail startup for redis issues; tokens simply become irrevocable
		return
	}
	RedisClient = rc
}

type contextKey string

const UserIDKey = contextKey("userID")
const RequestIDKey = contextKey("requestID")

const accessTokenTTL = 24 * time.Hour

// GenerateAccessToken issues a signed bearer token embedding the user id.
func GenerateAccessToken(userID uint) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	now := time.Now()
	jti, err := generateJTI(32)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"id":  userID,
		"exp": now.Add(accessTokenTTL).Unix(),
		"iat": now.Unix(),
		"jti": jti,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken verifies signature and expiry and returns the embedded
// user id. A revoked jti (Redis blacklist, when configured) also fails.
func ValidateAccessToken(tokenStr string) (uint, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return 0, errors.New("JWT_SECRET is not set")
	}
	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Require exact HS256 algorithm to avoid algorithm confusion.
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	if expRaw, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(expRaw) {
			return 0, errors.New("token expired")
		}
	}

	if jtiRaw, ok := claims["jti"].(string); ok && jtiRaw != "" && RedisClient != nil {
		res, err := RedisClient.Get(context.Background(), "jwt:blacklist:"+jtiRaw).Result()
		if err == nil && res == "1" {
			return 0, errors.New("token revoked")
		}
		// ignore redis errors (do not fail auth due to redis outage)
	}

	rawID, ok := claims["id"]
	if !ok {
		return 0, errors.New("invalid token payload")
	}
	switch v := rawID.(type) {
	case float64:
		return uint(v), nil
	case int:
		return uint(v), nil
	default:
		return 0, errors.New("invalid token payload")
	}
}

// TokenJTI extracts the jti claim without re-verifying the token. Used by
// logout, which runs behind the auth middleware.
func TokenJTI(tokenStr string) (string, time.Duration) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return "", 0
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0
	}
	jti, _ := claims["jti"].(string)
	ttl := accessTokenTTL
	if expRaw, ok := claims["exp"].(float64); ok {
		if remaining := time.Until(time.Unix(int64(expRaw), 0)); remaining > 0 {
			ttl = remaining
		}
	}
	return jti, ttl
}

// RevokeJTI blacklists a token id for the remaining token lifetime.
func RevokeJTI(jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	if RedisClient == nil {
		return errors.New("no revocation store configured")
	}
	return RedisClient.Set(context.Background(), "jwt:blacklist:"+jti, "1", ttl).Err()
}

// generateJTI creates a URL-safe random identifier used as JWT ID
func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = hex[int(b[i])%len(hex)]
	}
	return string(out), nil
}
