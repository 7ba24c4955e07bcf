package fixture

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusFinished  = "finished"
)

const (
	MinRound = 1
	MaxRound = 5
)

var scoreRegex = regexp.MustCompile(`^(\d+)-(\d+)$`)

// Fixture represents one scheduled, live or finished match. HomeScore,
// AwayScore and Status are derived from Result and never stored remotely.
type Fixture struct {
	ID        int    `json:"matchNumber" validate:"gte=0"`
	Round     int    `json:"roundNumber" validate:"gte=1,lte=5"`
	Date      string `json:"date"`
	Location  string `json:"location"`
	HomeTeam  string `json:"homeTeam" validate:"required"`
	AwayTeam  string `json:"awayTeam" validate:"required"`
	Result    string `json:"result"`
	HomeScore *int   `json:"homeScore,omitempty"`
	AwayScore *int   `json:"awayScore,omitempty"`
	Status    string `json:"status"`
}

// ParseResult derives status and scores from a raw result cell. Empty input
// is a scheduled match, "<int>-<int>" is finished, a live-indicator token is
// live, anything else falls back to scheduled.
func ParseResult(result string) (homeScore, awayScore *int, status string) {
	trimmed := strings.TrimSpace(result)
	if trimmed == "" {
		return nil, nil, StatusScheduled
	}

	if match := scoreRegex.FindStringSubmatch(trimmed); match != nil {
		home, _ := strconv.Atoi(match[1])
		away, _ := strconv.Atoi(match[2])
		return &home, &away, StatusFinished
	}

	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "live") || strings.Contains(lower, "playing") {
		return nil, nil, StatusLive
	}

	return nil, nil, StatusScheduled
}

// RowToFixture maps one sheet row (columns A-G: match number, round, date,
// location, home team, away team, result) to a Fixture. index is the
// zero-based position of the row within the data rows and backs the id
// default when the id cell is blank or non-numeric.
func RowToFixture(row []string, index int) Fixture {
	id := index + 1
	if parsed, err := strconv.Atoi(strings.TrimSpace(cell(row, 0))); err == nil {
		id = parsed
	}

	round := 1
	if parsed, err := strconv.Atoi(strings.TrimSpace(cell(row, 1))); err == nil {
		round = parsed
	}

	date, _ := NormalizeDate(cell(row, 2))

	result := cell(row, 6)
	homeScore, awayScore, status := ParseResult(result)

	return Fixture{
		ID:        id,
		Round:     round,
		Date:      date,
		Location:  cell(row, 3),
		HomeTeam:  cell(row, 4),
		AwayTeam:  cell(row, 5),
		Result:    result,
		HomeScore: homeScore,
		AwayScore: awayScore,
		Status:    status,
	}
}

// FixtureToRow serializes the seven stored fields in column order. Derived
// fields are intentionally excluded.
func FixtureToRow(f Fixture) []string {
	return []string{
		strconv.Itoa(f.ID),
		strconv.Itoa(f.Round),
		f.Date,
		f.Location,
		f.HomeTeam,
		f.AwayTeam,
		f.Result,
	}
}

// NormalizeDate rewrites "DD/MM/YYYY[ HH:MM:SS]" to "YYYY-MM-DD[ HH:MM:SS]"
// with zero-padded month and day. Empty input and input without a /-delimited
// date triple pass through unchanged. A /-triple that does not parse as
// numbers is returned unchanged along with an error; callers log it, the
// value itself never fails a load. The rewrite is idempotent: normalized
// output contains no '/' and passes through on a second call.
func NormalizeDate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" || !strings.Contains(value, "/") {
		return raw, nil
	}

	datePart := value
	timePart := ""
	if idx := strings.IndexByte(value, ' '); idx >= 0 {
		datePart = value[:idx]
		timePart = strings.TrimSpace(value[idx+1:])
	}

	parts := strings.Split(datePart, "/")
	if len(parts) != 3 {
		return raw, fmt.Errorf("expected DD/MM/YYYY, got %q", raw)
	}

	day, errDay := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, errMonth := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errYear := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errDay != nil || errMonth != nil || errYear != nil {
		return raw, fmt.Errorf("non-numeric date components in %q", raw)
	}

	iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if timePart != "" {
		return iso + " " + timePart, nil
	}
	return iso, nil
}

func cell(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}
