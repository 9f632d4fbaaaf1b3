// Package members turns raw corrosion cluster-member records into
// display-ready ones.
//
// The decoder is schema-agnostic; this package is where knowledge of the
// `cluster members` record shape lives (top-level id, nested state with
// addr, ring, ts, last_sync_ts). Enrichment only adds display_* fields and
// never rewrites what corrosion reported.
package members

import (
	"encoding/json"
	"fmt"

	"github.com/clutterstack/corro-cli/internal/ntp"
	"github.com/clutterstack/corro-cli/internal/streamjson"
)

// Display field keys added by Enricher.
const (
	KeyDisplayID       = "display_id"
	KeyDisplayAddr     = "display_addr"
	KeyDisplayLastSync = "display_last_sync"
	KeyDisplayActive   = "display_active"
	KeyDisplayRing     = "display_ring"
)

const shortIDLen = 8

// Enricher derives display fields using a configured recency window.
type Enricher struct {
	WindowSeconds int64
}

// Enrich adds display_* fields to one member record. It is shaped as a
// streamjson transform so the CLI can hand it straight to the decoder.
func (e Enricher) Enrich(rec streamjson.Record) streamjson.Record {
	rec[KeyDisplayID] = shortID(rec["id"])
	rec[KeyDisplayAddr] = stringOr(stateField(rec, "addr"), "unknown")
	rec[KeyDisplayLastSync] = ntp.Format(stateField(rec, "last_sync_ts"))
	rec[KeyDisplayActive] = e.active(stateField(rec, "last_sync_ts"))
	rec[KeyDisplayRing] = ringBadge(stateField(rec, "ring"))
	return rec
}

// Summary counts members by activity for the status line.
type Summary struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// Summarize tallies enriched records. Records without a display_active
// field count as inactive.
func Summarize(recs []streamjson.Record) Summary {
	s := Summary{Total: len(recs)}
	for _, rec := range recs {
		if active, ok := rec[KeyDisplayActive].(bool); ok && active {
			s.Active++
		}
	}
	return s
}

func (e Enricher) active(v any) bool {
	packed, err := ntp.ParsePacked(v)
	if err != nil {
		return false
	}
	return ntp.IsRecent(packed, e.WindowSeconds)
}

func shortID(v any) string {
	id, ok := v.(string)
	if !ok || id == "" {
		return "unknown"
	}
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func ringBadge(v any) string {
	switch n := v.(type) {
	case json.Number:
		return "ring " + n.String()
	case int:
		return fmt.Sprintf("ring %d", n)
	case int64:
		return fmt.Sprintf("ring %d", n)
	case float64:
		return fmt.Sprintf("ring %.0f", n)
	default:
		return "ring ?"
	}
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// stateField reads a key from the record's nested state object, falling
// back to the top level for older corrosion versions that emitted a flat
// record.
func stateField(rec streamjson.Record, key string) any {
	if state, ok := rec["state"].(map[string]any); ok {
		if v, ok := state[key]; ok {
			return v
		}
	}
	if v, ok := rec[key]; ok {
		return v
	}
	return nil
}
