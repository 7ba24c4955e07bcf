package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/valyala/bytebufferpool"

	"github.com/fixtureboard/fixtureboard/internal/domain/fixture"
	"github.com/fixtureboard/fixtureboard/internal/usecase"
)

// Renderer writes fixture tables to a terminal.
type Renderer struct {
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// RenderDashboard prints every round as its own table, marking the round the
// board opens on.
func (r *Renderer) RenderDashboard(d usecase.Dashboard) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, group := range d.Rounds {
		marker := ""
		if group.Round == d.CurrentRound {
			marker = " (current)"
		}
		fmt.Fprintf(buf, "Round %d%s\n", group.Round, marker)
		writeTable(buf, group.Fixtures)
		buf.WriteString("\n")
	}
	if len(d.Rounds) == 0 {
		buf.WriteString("No fixtures.\n")
	}

	_, err := r.out.Write(buf.Bytes())
	return err
}

// RenderFixtures prints a single titled table.
func (r *Renderer) RenderFixtures(title string, collection []fixture.Fixture) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "%s\n", title)
	if len(collection) == 0 {
		buf.WriteString("No fixtures.\n")
	} else {
		writeTable(buf, collection)
	}

	_, err := r.out.Write(buf.Bytes())
	return err
}

func writeTable(w io.Writer, collection []fixture.Fixture) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDATE\tHOME\t\tAWAY\tSTATUS\tLOCATION")
	for _, f := range collection {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID,
			f.Date,
			f.HomeTeam,
			score(f),
			f.AwayTeam,
			f.Status,
			f.Location,
		)
	}
	tw.Flush()
}

func score(f fixture.Fixture) string {
	if f.HomeScore != nil && f.AwayScore != nil {
		return fmt.Sprintf("%d - %d", *f.HomeScore, *f.AwayScore)
	}
	if f.Status == fixture.StatusLive {
		return "live"
	}
	return "vs"
}
