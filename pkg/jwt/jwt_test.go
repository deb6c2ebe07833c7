package jwt

import (
	"errors"
	"testing"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", "test-issuer", 1)

	token, err := m.GenerateToken("asso@example.org", "Les Restos")
	if err != nil {
		t.Fatalf("Expected token generation to succeed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("Expected token to validate: %v", err)
	}
	if claims.Email != "asso@example.org" || claims.Name != "Les Restos" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestManager_Rejections(t *testing.T) {
	m := NewManager("secret", "test-issuer", 1)
	other := NewManager("other-secret", "test-issuer", 1)
	foreignIssuer := NewManager("secret", "someone-else", 1)

	signedByOther, _ := other.GenerateToken("asso@example.org", "A")
	wrongIssuer, _ := foreignIssuer.GenerateToken("asso@example.org", "A")

	testCases := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty token", "", ErrMissingToken},
		{"garbage", "not.a.token", ErrInvalidToken},
		{"wrong secret", signedByOther, ErrInvalidToken},
		{"wrong issuer", wrongIssuer, ErrInvalidToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.ValidateToken(tc.token)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestManager_GenerateRequiresEmail(t *testing.T) {
	m := NewManager("secret", "test-issuer", 1)
	if _, err := m.GenerateToken("  ", "A"); !errors.Is(err, ErrMissingEmail) {
		t.Errorf("Expected ErrMissingEmail, got %v", err)
	}
}
