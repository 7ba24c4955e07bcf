package fixture

import "testing"

func TestParseResult(t *testing.T) {
	t.Run("empty result is scheduled", func(t *testing.T) {
		home, away, status := ParseResult("")
		if status != StatusScheduled || home != nil || away != nil {
			t.Fatalf("unexpected parse: home=%v away=%v status=%s", home, away, status)
		}
	})

	t.Run("score pattern is finished with parsed scores", func(t *testing.T) {
		cases := map[string][2]int{
			"2-1":   {2, 1},
			"0-0":   {0, 0},
			"10-3":  {10, 3},
			" 3-0 ": {3, 0},
		}
		for raw, want := range cases {
			home, away, status := ParseResult(raw)
			if status != StatusFinished {
				t.Fatalf("result %q: unexpected status %s", raw, status)
			}
			if home == nil || away == nil || *home != want[0] || *away != want[1] {
				t.Fatalf("result %q: unexpected scores home=%v away=%v", raw, home, away)
			}
		}
	})

	t.Run("live indicator tokens", func(t *testing.T) {
		for _, raw := range []string{"LIVE", "live 45'", "Playing", "now playing"} {
			if _, _, status := ParseResult(raw); status != StatusLive {
				t.Fatalf("result %q: got status %s, want live", raw, status)
			}
		}
	})

	t.Run("unrecognized non-empty text is scheduled", func(t *testing.T) {
		for _, raw := range []string{"postponed", "2:1", "abc", "-1-2"} {
			home, away, status := ParseResult(raw)
			if status != StatusScheduled || home != nil || away != nil {
				t.Fatalf("result %q: got home=%v away=%v status=%s", raw, home, away, status)
			}
		}
	})
}

func TestNormalizeDate(t *testing.T) {
	t.Run("day-month-year with time", func(t *testing.T) {
		got, err := NormalizeDate("16/09/2025 18:45:00")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "2025-09-16 18:45:00" {
			t.Fatalf("unexpected normalization: %s", got)
		}
	})

	t.Run("date only with padding", func(t *testing.T) {
		got, err := NormalizeDate("5/3/2026")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "2026-03-05" {
			t.Fatalf("unexpected normalization: %s", got)
		}
	})

	t.Run("empty and ISO input pass through", func(t *testing.T) {
		for _, raw := range []string{"", "2025-09-16", "2025-09-16 18:45:00", "TBD"} {
			got, err := NormalizeDate(raw)
			if err != nil {
				t.Fatalf("input %q: unexpected error: %v", raw, err)
			}
			if got != raw {
				t.Fatalf("input %q: changed to %q", raw, got)
			}
		}
	})

	t.Run("malformed triple returns input with error", func(t *testing.T) {
		got, err := NormalizeDate("a/b/c")
		if err == nil {
			t.Fatal("expected error for non-numeric triple")
		}
		if got != "a/b/c" {
			t.Fatalf("malformed input must pass through, got %q", got)
		}
	})

	t.Run("idempotent on its own output", func(t *testing.T) {
		for _, raw := range []string{"16/09/2025 18:45:00", "1/1/2026", "2025-09-16", ""} {
			once, _ := NormalizeDate(raw)
			twice, err := NormalizeDate(once)
			if err != nil {
				t.Fatalf("input %q: unexpected error on second pass: %v", raw, err)
			}
			if twice != once {
				t.Fatalf("input %q: not idempotent (%q != %q)", raw, once, twice)
			}
		}
	})
}

func TestRowToFixture(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		row := []string{"1", "1", "16/09/2025 18:45:00", "Stadium", "A", "B", ""}
		got := RowToFixture(row, 0)

		if got.ID != 1 || got.Round != 1 {
			t.Fatalf("unexpected ids: id=%d round=%d", got.ID, got.Round)
		}
		if got.Date != "2025-09-16 18:45:00" {
			t.Fatalf("unexpected date: %s", got.Date)
		}
		if got.Status != StatusScheduled {
			t.Fatalf("unexpected status: %s", got.Status)
		}
	})

	t.Run("blank id and round fall back to defaults", func(t *testing.T) {
		got := RowToFixture([]string{"", "", "", "Loc", "Home", "Away", "2-1"}, 4)
		if got.ID != 5 {
			t.Fatalf("expected id from row index, got %d", got.ID)
		}
		if got.Round != 1 {
			t.Fatalf("expected default round, got %d", got.Round)
		}
		if got.Status != StatusFinished || *got.HomeScore != 2 || *got.AwayScore != 1 {
			t.Fatalf("unexpected derived result: %+v", got)
		}
	})

	t.Run("short row is tolerated", func(t *testing.T) {
		got := RowToFixture([]string{"7", "3"}, 0)
		if got.ID != 7 || got.Round != 3 || got.Result != "" || got.Status != StatusScheduled {
			t.Fatalf("unexpected fixture from short row: %+v", got)
		}
	})
}

func TestFixtureToRowRoundTrip(t *testing.T) {
	f := Fixture{
		ID:       9,
		Round:    2,
		Date:     "2025-10-01 21:00:00",
		Location: "Arena",
		HomeTeam: "Home FC",
		AwayTeam: "Away FC",
		Result:   "1-1",
	}

	row := FixtureToRow(f)
	if len(row) != 7 {
		t.Fatalf("expected 7 cells, got %d", len(row))
	}

	back := RowToFixture(row, 0)
	back.HomeScore, back.AwayScore, back.Status = nil, nil, ""
	if back != f {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, f)
	}
}
