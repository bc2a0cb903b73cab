package auth_test

import (
	"testing"
	"time"

	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/domain/user"
)

func testUser() user.User {
	return user.User{
		ID:       "6c1f9f2e-5f89-4a0a-9c1e-0f6a9cf8f2a1",
		Email:    "alice@example.com",
		SchoolID: "c9a4f1de-2222-4a6a-8888-aaaa0000bbbb",
		Roles: []user.Role{
			{ID: "r1", Name: "parent"},
			{ID: "r2", Name: "teacher"},
		},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
	u := testUser()

	raw, err := m.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != u.ID {
		t.Errorf("got userId %q, want %q", claims.UserID, u.ID)
	}
	if claims.Email != u.Email {
		t.Errorf("got email %q, want %q", claims.Email, u.Email)
	}
	if claims.SchoolID != u.SchoolID {
		t.Errorf("got schoolId %q, want %q", claims.SchoolID, u.SchoolID)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "parent" || claims.Roles[1] != "teacher" {
		t.Errorf("got roles %v, want [parent teacher]", claims.Roles)
	}
}

// An access token must never verify against the refresh secret and vice
// versa: the two classes are separated by signing key alone.

func TestTokenClassSeparation(t *testing.T) {
	m := auth.NewManager("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
	u := testUser()

	accessRaw, err := m.GenerateAccessToken(u)
	if err != nil {
		t.Fatalf("generate access: %v", err)
	}

	refreshRaw, err := m.GenerateRefreshToken(u)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}

	if _, err := m.VerifyRefreshToken(accessRaw); err == nil {
		t.Error("access token verified with refresh secret")
	}

	if _, err := m.VerifyAccessToken(refreshRaw); err == nil {
		t.Error("refresh token verified with access secret")
	}
}

func TestExpiredTokenFails(t *testing.T) {
	// already expired at issuance
	m := auth.NewManager("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	raw, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Error("expired token verified")
	}
}

func TestTamperedTokenFails(t *testing.T) {
	m := auth.NewManager("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)

	raw, err := m.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tampered := raw[:len(raw)-2] + "xx"

	if _, err := m.VerifyAccessToken(tampered); err == nil {
		t.Error("tampered token verified")
	}
}
