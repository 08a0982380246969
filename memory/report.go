package memory

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// Stats is a diagnostic snapshot. It is never used for control flow.
type Stats struct {
	RSS             uint64
	Budget          Budget
	PercentOfBudget float64
	SystemTotal     uint64 // 0 if unknown
	PercentOfSystem float64
	TrackedKeys     int
	AboveWarning    bool
}

// Stats returns a snapshot of current memory usage.
func (g *Governor) Stats() Stats {
	rss := g.CheckMemory()
	s := Stats{
		RSS:          rss,
		Budget:       g.budget,
		TrackedKeys:  g.Tracked(),
		AboveWarning: rss > g.budget.WarningBytes,
	}
	if g.budget.MaxBytes > 0 {
		s.PercentOfBudget = 100 * float64(rss) / float64(g.budget.MaxBytes)
	}
	if total, err := g.sampler.SystemTotal(); err == nil && total > 0 {
		s.SystemTotal = total
		s.PercentOfSystem = 100 * float64(rss) / float64(total)
	}
	return s
}

// WriteReport prints memory usage and the last access of each key, oldest first.
func (g *Governor) WriteReport(w io.Writer, keys []string) error {
	st := g.Stats()
	now := g.now()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "rss\t%s\t%.1f%% of budget\n", humanize.IBytes(st.RSS), st.PercentOfBudget)
	fmt.Fprintf(tw, "budget\t%s\twarning %s, target %s\n",
		humanize.IBytes(st.Budget.MaxBytes), humanize.IBytes(st.Budget.WarningBytes), humanize.IBytes(st.Budget.TargetBytes))
	if st.SystemTotal > 0 {
		fmt.Fprintf(tw, "system\t%s\t%.1f%% used by this process\n", humanize.IBytes(st.SystemTotal), st.PercentOfSystem)
	}
	fmt.Fprintf(tw, "entries\t%d\n", len(keys))

	for _, c := range g.evictionOrder(keys) {
		last := "never accessed"
		if !c.at.IsZero() {
			last = humanize.RelTime(c.at, now, "ago", "from now")
		}
		fmt.Fprintf(tw, "  %s\t%s\n", c.key, last)
	}
	return tw.Flush()
}
