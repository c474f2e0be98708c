package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-access-secret"

func signToken(t *testing.T, claims *Claims, secret string, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestParserValidToken(t *testing.T) {
	userID := uuid.New()
	claims := &Claims{
		UserID: userID,
		Email:  "driver@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	parser := NewParser(testSecret)
	got, err := parser.Parse(signToken(t, claims, testSecret, jwt.SigningMethodHS256))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.UserID != userID {
		t.Errorf("UserID = %v, want %v", got.UserID, userID)
	}
	if got.Email != "driver@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
}

func TestParserRejections(t *testing.T) {
	parser := NewParser(testSecret)
	valid := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "wrong secret",
			token: signToken(t, &Claims{UserID: uuid.New(), RegisteredClaims: valid},
				"other-secret", jwt.SigningMethodHS256),
		},
		{
			name: "expired",
			token: signToken(t, &Claims{
				UserID: uuid.New(),
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				},
			}, testSecret, jwt.SigningMethodHS256),
		},
		{
			name: "missing user id",
			token: signToken(t, &Claims{RegisteredClaims: valid},
				testSecret, jwt.SigningMethodHS256),
		},
		{
			name:  "garbage",
			token: "not.a.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parser.Parse(tt.token); err == nil {
				t.Error("Parse() succeeded, want error")
			}
		})
	}
}
