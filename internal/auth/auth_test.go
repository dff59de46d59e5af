package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret")
	userID := uuid.New()

	tok, err := svc.IssueToken(userID, "Juan", time.Hour)
	require.NoError(t, err)

	identity, err := svc.ParseToken(tok)
	require.NoError(t, err)
	require.Equal(t, userID, identity.UserID)
	require.Equal(t, "Juan", identity.Name)
	require.False(t, identity.Guest)
}

func TestParseToken_WrongSecretRejected(t *testing.T) {
	tok, err := NewService("secret-a").IssueToken(uuid.New(), "Juan", time.Hour)
	require.NoError(t, err)

	_, err = NewService("secret-b").ParseToken(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_ExpiredRejected(t *testing.T) {
	svc := NewService("test-secret")
	tok, err := svc.IssueToken(uuid.New(), "Juan", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ParseToken(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGuestIdentity_EphemeralAndFlagged(t *testing.T) {
	a := GuestIdentity()
	b := GuestIdentity()
	require.True(t, a.Guest)
	require.NotEqual(t, a.UserID, b.UserID)
	require.NotEmpty(t, a.Name)
}

func TestFromRequest_GuestSessionIDIsStable(t *testing.T) {
	svc := NewService("test-secret")
	id := uuid.New()

	first := httptest.NewRequest("GET", "/ws?code=ABC123&guest=1&guest_id="+id.String(), nil)
	a, err := svc.FromRequest(first)
	require.NoError(t, err)
	require.True(t, a.Guest)
	require.Equal(t, id, a.UserID)

	second := httptest.NewRequest("GET", "/ws?code=ABC123&guest=1&guest_id="+id.String(), nil)
	b, err := svc.FromRequest(second)
	require.NoError(t, err)
	require.Equal(t, a.UserID, b.UserID, "same session id must resolve to the same identity")

	bad := httptest.NewRequest("GET", "/ws?code=ABC123&guest=1&guest_id=not-a-uuid", nil)
	_, err = svc.FromRequest(bad)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestFromRequest_ExactlyOneCredential(t *testing.T) {
	svc := NewService("test-secret")
	tok, err := svc.IssueToken(uuid.New(), "Juan", time.Hour)
	require.NoError(t, err)

	t.Run("bearer only", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?code=ABC123", nil)
		r.Header.Set("Authorization", "Bearer "+tok)
		identity, err := svc.FromRequest(r)
		require.NoError(t, err)
		require.False(t, identity.Guest)
	})

	t.Run("guest only", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?code=ABC123&guest=1", nil)
		identity, err := svc.FromRequest(r)
		require.NoError(t, err)
		require.True(t, identity.Guest)
	})

	t.Run("both refused", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?code=ABC123&guest=1", nil)
		r.Header.Set("Authorization", "Bearer "+tok)
		_, err := svc.FromRequest(r)
		require.ErrorIs(t, err, ErrNoCredential)
	})

	t.Run("neither refused", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/ws?code=ABC123", nil)
		_, err := svc.FromRequest(r)
		require.ErrorIs(t, err, ErrNoCredential)
	})
}
