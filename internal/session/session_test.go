package session

import (
	"testing"
	"time"
)

func TestManager_CreateResolve(t *testing.T) {
	m := NewManager(time.Hour)

	token := m.Create("ayse")
	if token == "" {
		t.Fatal("empty token")
	}

	username, ok := m.Resolve(token)
	if !ok || username != "ayse" {
		t.Errorf("Resolve: got (%q, %v), want (ayse, true)", username, ok)
	}

	if other := m.Create("ayse"); other == token {
		t.Error("two sessions for the same user must get distinct tokens")
	}
}

func TestManager_Resolve_Unknown(t *testing.T) {
	m := NewManager(time.Hour)

	if _, ok := m.Resolve("no-such-token"); ok {
		t.Error("unknown token resolved")
	}
}

func TestManager_Expiry(t *testing.T) {
	m := NewManager(10 * time.Millisecond)

	token := m.Create("ayse")
	time.Sleep(20 * time.Millisecond)

	if _, ok := m.Resolve(token); ok {
		t.Error("expired token resolved")
	}
}

func TestManager_Destroy(t *testing.T) {
	m := NewManager(time.Hour)

	token := m.Create("ayse")
	m.Destroy(token)

	if _, ok := m.Resolve(token); ok {
		t.Error("destroyed token resolved")
	}
}

func TestManager_DestroyAllFor(t *testing.T) {
	m := NewManager(time.Hour)

	t1 := m.Create("ayse")
	t2 := m.Create("ayse")
	keep := m.Create("mehmet")

	m.DestroyAllFor("ayse")

	if _, ok := m.Resolve(t1); ok {
		t.Error("t1 survived DestroyAllFor")
	}
	if _, ok := m.Resolve(t2); ok {
		t.Error("t2 survived DestroyAllFor")
	}
	if _, ok := m.Resolve(keep); !ok {
		t.Error("unrelated session was destroyed")
	}
}
