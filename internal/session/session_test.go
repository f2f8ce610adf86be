package session

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func hasuraClaims(userID, username, role string) jwt.MapClaims {
	return jwt.MapClaims{
		hasuraClaimsKey: map[string]interface{}{
			"x-hasura-user-id":      userID,
			"x-hasura-user-name":    username,
			"x-hasura-default-role": role,
		},
	}
}

func TestFromBearer(t *testing.T) {
	d := NewDecoder(testSecret)
	token := signToken(t, testSecret, hasuraClaims("7", "maria", "user"))

	sess, err := d.FromBearer("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.UserID)
	assert.Equal(t, "maria", sess.Username)
	assert.Equal(t, "user", sess.Role)
}

func TestFromBearer_BareToken(t *testing.T) {
	d := NewDecoder(testSecret)
	token := signToken(t, testSecret, hasuraClaims("7", "maria", "user"))

	// Works without the Bearer prefix too.
	sess, err := d.FromBearer(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.UserID)
}

func TestFromBearer_Rejections(t *testing.T) {
	d := NewDecoder(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"empty header", ""},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", hasuraClaims("7", "maria", "user"))},
		{"missing hasura claims", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "7"})},
		{"missing user id", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			hasuraClaimsKey: map[string]interface{}{"x-hasura-user-name": "maria"},
		})},
		{"non-numeric user id", "Bearer " + signToken(t, testSecret, hasuraClaims("maria", "maria", "user"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.FromBearer(tt.token)
			assert.Error(t, err)
		})
	}
}
