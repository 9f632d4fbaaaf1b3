package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/clutterstack/corro-cli/internal/members"
	"github.com/clutterstack/corro-cli/internal/store"
	"github.com/clutterstack/corro-cli/internal/streamjson"
)

// renderMembersTable writes enriched member records as an aligned table.
func renderMembersTable(w io.Writer, recs []streamjson.Record) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tADDRESS\tRING\tLAST SYNC\tACTIVE")
	for _, rec := range recs {
		active := "no"
		if a, ok := rec[members.KeyDisplayActive].(bool); ok && a {
			active = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			displayString(rec, members.KeyDisplayID),
			displayString(rec, members.KeyDisplayAddr),
			displayString(rec, members.KeyDisplayRing),
			displayString(rec, members.KeyDisplayLastSync),
			active,
		)
	}
	tw.Flush()
}

// renderSnapshotsTable writes snapshot metadata as an aligned table.
func renderSnapshotsTable(w io.Writer, snaps []store.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTAKEN AT\tMEMBERS")
	for _, snap := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%d\n",
			snap.ID,
			snap.TakenAt.Format("2006-01-02 15:04:05")+" UTC",
			snap.MemberCount,
		)
	}
	tw.Flush()
}

func displayString(rec streamjson.Record, key string) string {
	if s, ok := rec[key].(string); ok {
		return s
	}
	return ""
}
