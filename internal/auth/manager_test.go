package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"iuran/internal/core"
)

type memRecords struct {
	blob []byte
	ok   bool
}

func (m *memRecords) Load() ([]byte, bool, error) { return m.blob, m.ok, nil }
func (m *memRecords) Save(b []byte) error         { m.blob = b; m.ok = true; return nil }
func (m *memRecords) Clear() error                { m.blob = nil; m.ok = false; return nil }

func fixedIDP() FixedCredentials {
	return FixedCredentials{Username: "admin", Password: "secret", DisplayName: "Administrator"}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	m := NewManager(fixedIDP(), &memRecords{}, 6*time.Hour)

	t.Run("valid credentials", func(t *testing.T) {
		token, s, err := m.Login(ctx, "admin", "secret")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if token == "" || s.Role != core.RoleAdmin || s.Name != "Administrator" {
			t.Fatalf("unexpected session: token=%q %+v", token, s)
		}
		if s.Expiry.IsZero() {
			t.Fatal("expiry must be set")
		}
		if got, ok := m.Lookup(token); !ok || got != s {
			t.Fatalf("lookup mismatch: %+v ok=%v", got, ok)
		}
	})

	t.Run("wrong password and wrong username give the same error", func(t *testing.T) {
		_, _, err1 := m.Login(ctx, "admin", "nope")
		_, _, err2 := m.Login(ctx, "nobody", "secret")
		if !errors.Is(err1, ErrAuthFailure) || !errors.Is(err2, ErrAuthFailure) {
			t.Fatalf("expected ErrAuthFailure, got %v / %v", err1, err2)
		}
		if err1.Error() != err2.Error() {
			t.Fatal("error must not reveal which field was wrong")
		}
	})
}

func TestLoginAsGuestAlwaysSucceeds(t *testing.T) {
	ctx := context.Background()
	m := NewManager(fixedIDP(), &memRecords{}, 6*time.Hour)

	// Regardless of prior state: before any login, after a failed login,
	// and after an admin login.
	_, _, _ = m.Login(ctx, "admin", "wrong")
	for i := 0; i < 3; i++ {
		token, s, err := m.LoginAsGuest(ctx)
		if err != nil || s.Role != core.RoleGuest {
			t.Fatalf("guest login %d: %+v err=%v", i, s, err)
		}
		if _, ok := m.Lookup(token); !ok {
			t.Fatalf("guest session %d not stored", i)
		}
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	ctx := context.Background()
	rec := &memRecords{}
	m := NewManager(fixedIDP(), rec, 6*time.Hour)

	token, _, err := m.Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Logout(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Lookup(token); ok {
		t.Fatal("session survived logout")
	}
	if rec.ok {
		t.Fatal("persisted record not cleared")
	}
	// Unknown token is a no-op.
	if err := m.Logout(ctx, "missing"); err != nil {
		t.Fatal(err)
	}
}

func persistedBlob(t *testing.T, token string, rec persistedRecord) []byte {
	t.Helper()
	blob, err := json.Marshal(map[string]persistedRecord{token: rec})
	if err != nil {
		t.Fatal(err)
	}
	return blob
}

func TestRestore(t *testing.T) {
	t.Run("future expiry restores stored role", func(t *testing.T) {
		blob := persistedBlob(t, "tok1", persistedRecord{
			Username: "guest", Name: "Guest User", Role: "guest",
			Expiry: time.Now().Add(time.Hour).UnixMilli(),
		})
		m := NewManager(fixedIDP(), &memRecords{blob: blob, ok: true}, 6*time.Hour)
		s, ok := m.Lookup("tok1")
		if !ok || s.Role != core.RoleGuest {
			t.Fatalf("expected restored guest session, got %+v ok=%v", s, ok)
		}
	})

	t.Run("past expiry is dropped and the record cleared", func(t *testing.T) {
		blob := persistedBlob(t, "tok1", persistedRecord{
			Username: "admin", Name: "Administrator", Role: "admin",
			Expiry: time.Now().Add(-time.Hour).UnixMilli(),
		})
		rec := &memRecords{blob: blob, ok: true}
		m := NewManager(fixedIDP(), rec, 6*time.Hour)
		if _, ok := m.Lookup("tok1"); ok {
			t.Fatal("expired session restored")
		}
		if rec.ok {
			t.Fatal("stale record not cleared")
		}
	})

	t.Run("malformed blob is discarded silently", func(t *testing.T) {
		rec := &memRecords{blob: []byte("{not json"), ok: true}
		m := NewManager(fixedIDP(), rec, 6*time.Hour)
		if _, ok := m.Lookup("anything"); ok {
			t.Fatal("session conjured from garbage")
		}
		if rec.ok {
			t.Fatal("malformed record not cleared")
		}
	})

	t.Run("unknown role is dropped", func(t *testing.T) {
		blob := persistedBlob(t, "tok1", persistedRecord{Username: "x", Role: "superuser"})
		m := NewManager(fixedIDP(), &memRecords{blob: blob, ok: true}, 6*time.Hour)
		if _, ok := m.Lookup("tok1"); ok {
			t.Fatal("unknown role restored")
		}
	})
}

func TestLookupExpiresInFlight(t *testing.T) {
	ctx := context.Background()
	m := NewManager(fixedIDP(), &memRecords{}, time.Hour)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	token, _, err := m.Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatal(err)
	}

	m.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, ok := m.Lookup(token); ok {
		t.Fatal("expired session returned")
	}
	// Destroyed, not just hidden.
	m.now = func() time.Time { return base }
	if _, ok := m.Lookup(token); ok {
		t.Fatal("expired session not destroyed")
	}
}

func TestFileRecordStore(t *testing.T) {
	store := FileRecordStore{Path: t.TempDir() + "/sessions.json"}

	if _, ok, err := store.Load(); ok || err != nil {
		t.Fatalf("missing file should be (false, nil): ok=%v err=%v", ok, err)
	}
	if err := store.Save([]byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	blob, ok, err := store.Load()
	if err != nil || !ok || string(blob) != `{"a":1}` {
		t.Fatalf("load after save: %q ok=%v err=%v", blob, ok, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Fatal("clear did not remove the file")
	}
	// Clearing twice is fine.
	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
}

func TestPagesFor(t *testing.T) {
	cases := []struct {
		role core.Role
		want []Page
	}{
		{core.RoleAdmin, []Page{PageDashboard, PageReports, PageEdit}},
		{core.RoleGuest, []Page{PageDashboard, PageReports}},
		{core.Role(""), nil},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("role=%q", tc.role), func(t *testing.T) {
			got := PagesFor(Session{Role: tc.role})
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("page %d = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}

	if Allowed(Session{Role: core.RoleGuest}, PageEdit.Path) {
		t.Fatal("guest must not reach the edit page")
	}
	if !Allowed(Session{Role: core.RoleAdmin}, PageEdit.Path) {
		t.Fatal("admin must reach the edit page")
	}
}
