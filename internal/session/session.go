package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

const hasuraClaimsKey = "https://hasura.io/jwt/claims"

// Session is the verified identity a checkout runs under. The orchestrator
// depends only on this value, never on token decoding.
type Session struct {
	UserID   int64
	Username string
	Role     string
}

// Decoder verifies DOMA bearer tokens and extracts the session claims.
type Decoder struct {
	secret []byte
}

func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: []byte(secret)}
}

// FromBearer verifies the Authorization header value and returns the session.
func (d *Decoder) FromBearer(authHeader string) (*Session, error) {
	if authHeader == "" {
		return nil, fmt.Errorf("missing token")
	}

	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return d.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}

	hasuraClaims, ok := claims[hasuraClaimsKey].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing hasura claims")
	}

	userIDStr, ok := hasuraClaims["x-hasura-user-id"].(string)
	if !ok {
		return nil, fmt.Errorf("missing user ID claim")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format")
	}

	sess := &Session{UserID: userID}
	if username, ok := hasuraClaims["x-hasura-user-name"].(string); ok {
		sess.Username = username
	}
	if role, ok := hasuraClaims["x-hasura-default-role"].(string); ok {
		sess.Role = role
	}

	return sess, nil
}
