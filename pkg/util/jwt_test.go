package util

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testIdentity() Identity {
	return Identity{UserID: 42, Name: "Ada", Email: "ada@example.com"}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.Issue(testIdentity())
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity(), claims.Identity)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestNewTokenServiceDefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTokenTTL, NewTokenService(testSecret, 0).TTL())
	assert.Equal(t, DefaultTokenTTL, NewTokenService(testSecret, -time.Minute).TTL())
	assert.Equal(t, 2*time.Hour, NewTokenService(testSecret, 2*time.Hour).TTL())
}

func TestVerifyExpired(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, err := svc.IssueWithTTL(testIdentity(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	token, err := svc.Issue(testIdentity())
	require.NoError(t, err)

	sigStart := strings.LastIndex(token, ".") + 1
	// The final base64url character carries padding bits, so flip the rest.
	for i := sigStart; i < len(token)-1; i++ {
		b := []byte(token)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}

		_, err := svc.Verify(string(b))
		assert.ErrorIs(t, err, ErrInvalidToken, "flipped byte %d", i)
	}
}

func TestVerifyRejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	good, err := svc.Issue(testIdentity())
	require.NoError(t, err)

	otherSecret, err := NewTokenService("other-secret", time.Hour).Issue(testIdentity())
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1})
	noExpStr, err := noExp.SignedString([]byte(testSecret))
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Identity: testIdentity(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	hs512Str, err := hs512.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", strings.Join(strings.Split(good, ".")[:2], ".")},
		{"wrong secret", otherSecret},
		{"missing exp", noExpStr},
		{"unexpected algorithm", hs512Str},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"missing", "", "", ErrMissingAuthHeader},
		{"wrong scheme", "Basic abc", "", ErrMalformedAuthHeader},
		{"lowercase scheme", "bearer abc", "", ErrMalformedAuthHeader},
		{"no token", "Bearer", "", ErrMalformedAuthHeader},
		{"empty token", "Bearer ", "", ErrMalformedAuthHeader},
		{"extra parts", "Bearer a b", "", ErrMalformedAuthHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearer(tt.header)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFrom(context.Background())
	assert.False(t, ok)

	c := &Claims{Identity: testIdentity()}
	got, ok := ClaimsFrom(WithClaims(context.Background(), c))
	require.True(t, ok)
	assert.Same(t, c, got)
}
