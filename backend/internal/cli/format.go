package cli

import (
	"fmt"
	"io"

	"profilegraph/backend/internal/graph"
	"profilegraph/backend/internal/state"
)

const missing = "-"

func orMissing(s *string) string {
	if s == nil {
		return missing
	}
	return *s
}

func describe(p *state.Profile) string {
	return fmt.Sprintf("%s, %s, %s", p.Label(), orMissing(p.Phone), orMissing(p.DOB))
}

func printShow(w io.Writer, p *state.Profile, friends []*state.Profile) {
	fmt.Fprintf(w, "%s:\n", describe(p))
	if len(friends) == 0 {
		fmt.Fprintln(w, "   has no friends")
		return
	}
	for _, f := range friends {
		fmt.Fprintf(w, "   %s\n", f.Label())
	}
}

func printDump(w io.Writer, entries []graph.DumpEntry) {
	for _, entry := range entries {
		fmt.Fprintf(w, "%03d - %s\n", entry.Profile.ID(), describe(entry.Profile))
		for _, f := range entry.Friends {
			fmt.Fprintf(w, "    friend: %s\n", describe(f))
		}
	}
}
