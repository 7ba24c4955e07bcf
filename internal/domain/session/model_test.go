package session

import "testing"

func TestAllowlist(t *testing.T) {
	list := NewAllowlist([]string{" Admin@Example.com ", "", "second@example.com"})

	if len(list) != 2 {
		t.Fatalf("unexpected allow-list size %d", len(list))
	}
	if !list.Contains("ADMIN@example.COM") {
		t.Fatal("expected case-insensitive match")
	}
	if list.Contains("other@example.com") {
		t.Fatal("unexpected match")
	}
	if NewAllowlist(nil).Contains("admin@example.com") {
		t.Fatal("empty allow-list must admit nobody")
	}
}

func TestHasPermission(t *testing.T) {
	if (Session{}).HasPermission("update result") {
		t.Fatal("empty session must not hold permissions")
	}
	if !(Session{Subject: "sub-1"}).HasPermission("update result") {
		t.Fatal("authenticated session must hold permissions")
	}
}
