package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService(TokenConfig{SecretKey: "test-secret", TTL: time.Hour, TokenIssuer: "alumni-test"})
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTestTokenService()
	now := time.Now()
	sid := NewSessionID()

	token, err := svc.Issue(sid, 42, now, now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, sid, claims.SessionID())
	assert.Equal(t, int64(42), claims.UserID)
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestTokenService()
	past := time.Now().Add(-2 * time.Hour)

	token, err := svc.Issue(NewSessionID(), 1, past, past.Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_WrongSecret(t *testing.T) {
	now := time.Now()
	token, err := newTestTokenService().Issue(NewSessionID(), 1, now, now.Add(time.Hour))
	require.NoError(t, err)

	other := NewTokenService(TokenConfig{SecretKey: "other", TTL: time.Hour, TokenIssuer: "alumni-test"})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"bearer prefix", "Bearer abc", "abc", false},
		{"raw token", "abc", "abc", false},
		{"empty", "", "", true},
		{"bearer without token", "Bearer ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}
