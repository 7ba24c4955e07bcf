package store

import "testing"

func TestStoreRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	if _, ok, err := s.Get("jwtToken"); err != nil || ok {
		t.Fatalf("unexpected value before set: ok=%v err=%v", ok, err)
	}

	if err := s.Set("jwtToken", "abc.def.ghi"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := s.Get("jwtToken")
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if got != "abc.def.ghi" {
		t.Fatalf("unexpected value: %q", got)
	}

	if err := s.Remove("jwtToken"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get("jwtToken"); ok {
		t.Fatal("value survived remove")
	}

	// Removing again must be a no-op.
	if err := s.Remove("jwtToken"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestStoreJSON(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	type record struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	if err := s.SetJSON("currentUser", record{Email: "a@b.c", Name: "A"}); err != nil {
		t.Fatalf("set json: %v", err)
	}

	var got record
	ok, err := s.GetJSON("currentUser", &got)
	if err != nil || !ok {
		t.Fatalf("get json: ok=%v err=%v", ok, err)
	}
	if got.Email != "a@b.c" || got.Name != "A" {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := s.Set("currentUser", "{not json"); err != nil {
		t.Fatalf("set raw: %v", err)
	}
	if _, err := s.GetJSON("currentUser", &got); err == nil {
		t.Fatal("expected decode error for malformed value")
	}
}

func TestStoreRejectsPathKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if err := s.Set("../escape", "x"); err == nil {
		t.Fatal("expected invalid key error")
	}
}
