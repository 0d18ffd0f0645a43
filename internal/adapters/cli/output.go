package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/application/colony/dtos"
	"github.com/andrescamacho/colonysim-go/pkg/utils"
)

const fillBarWidth = 10

// FillBar renders a storage fill ratio as a fixed-width bar, e.g. "[####------]  40%"
func FillBar(fill float64, width int) string {
	fill = utils.ClampFloat(fill, 0, 1)
	filled := int(fill*float64(width) + 0.5)
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("#", filled), strings.Repeat("-", width-filled), fill*100)
}

// FormatRemaining renders the time from now until t, or "expired"
func FormatRemaining(t *time.Time, now time.Time) string {
	if t == nil {
		return "-"
	}
	d := t.Sub(now)
	if d <= 0 {
		return "expired"
	}
	d = d.Round(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dh %02dm", hours, minutes)
}

// ResultTable prints colony results as they arrive, one row each
type ResultTable struct {
	w   *tabwriter.Writer
	now time.Time
}

// NewResultTable writes the header row to out
func NewResultTable(out io.Writer, now time.Time) *ResultTable {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHARACTER\tCOLONY\tPLANET\tNEAREST EXPIRY\tEXPIRED\tSOON\tFINAL PRODUCTS\tSTATUS")
	fmt.Fprintln(w, "---------\t------\t------\t--------------\t-------\t----\t--------------\t------")
	return &ResultTable{w: w, now: now}
}

// Add writes one result row and flushes it so streaming output stays live
func (t *ResultTable) Add(result dtos.ColonyResultDTO) {
	if result.Summary == nil {
		fmt.Fprintf(t.w, "%d\t%d\t-\t-\t-\t-\t-\tERROR: %s\n",
			result.CharacterID, result.ColonyID, result.Error)
		t.w.Flush()
		return
	}

	s := result.Summary
	names := make([]string, 0, len(s.FinalProducts))
	for _, fp := range s.FinalProducts {
		names = append(names, fp.Name)
	}
	products := strings.Join(names, ", ")
	if products == "" {
		products = "-"
	}
	state := "ok"
	if s.Cached {
		state = "cached"
	}
	if len(s.Issues) > 0 {
		state = fmt.Sprintf("%s, %d issues", state, len(s.Issues))
	}

	fmt.Fprintf(t.w, "%d\t%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
		s.CharacterID, s.ColonyID, s.PlanetType,
		FormatRemaining(s.NearestExpiry, t.now),
		s.ExpiredExtractors, s.ExpiringSoonExtractors, products, state)
	t.w.Flush()
}

// WriteSummary prints the full detail of one colony
func WriteSummary(out io.Writer, s *dtos.ColonySummaryDTO, now time.Time, detailed bool) {
	if s == nil {
		fmt.Fprintln(out, "No summary")
		return
	}

	fmt.Fprintf(out, "Colony %d (%s)\n", s.ColonyID, s.PlanetType)
	fmt.Fprintf(out, "  Character:       %d\n", s.CharacterID)
	fmt.Fprintf(out, "  Projected to:    %s\n", s.TargetTime.Format(time.RFC3339))
	fmt.Fprintf(out, "  Nearest expiry:  %s\n", FormatRemaining(s.NearestExpiry, now))
	fmt.Fprintf(out, "  Expired:         %d\n", s.ExpiredExtractors)
	fmt.Fprintf(out, "  Expiring soon:   %d\n", s.ExpiringSoonExtractors)
	if s.Cached {
		fmt.Fprintln(out, "  (served from cache)")
	}

	if len(s.FinalProducts) > 0 {
		fmt.Fprintln(out, "\nFinal products:")
		for _, fp := range s.FinalProducts {
			fmt.Fprintf(out, "  %s (%d)\n", fp.Name, fp.TypeID)
		}
	}

	if len(s.StorageFill) > 0 {
		fmt.Fprintln(out, "\nStorage:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, sf := range s.StorageFill {
			fmt.Fprintf(w, "  pin %d\t%s\n", sf.PinID, FillBar(sf.Fill, fillBarWidth))
		}
		w.Flush()
	}

	if detailed {
		fmt.Fprintln(out, "\nPins:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  PIN\tKIND\tSTATUS\tCYCLE\tYIELD\tPROGRESS\tEXPIRES")
		for _, p := range s.Pins {
			cycle, yield, expires := "-", "-", "-"
			if p.Kind == "EXTRACTOR" {
				cycle = fmt.Sprintf("%d", p.CycleIndex)
				yield = fmt.Sprintf("%d", p.CurrentCycleYield)
				expires = FormatRemaining(p.ExpiryTime, now)
			}
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\t%3.0f%%\t%s\n",
				p.PinID, p.Kind, p.Status, cycle, yield, utils.ClampFloat(p.Progress, 0, 1)*100, expires)
		}
		w.Flush()
	}

	if len(s.Issues) > 0 {
		fmt.Fprintln(out, "\nIssues:")
		for _, issue := range s.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
	}
}
