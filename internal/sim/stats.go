// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	chunkSize    = 2 << 20
	baseMetadata = 2 << 20
	blockHeader  = 64
)

// snapshot holds the statistics published by the stats.* controls. Like
// jemalloc, it only changes when the epoch is advanced.
type snapshot struct {
	allocated uintptr
	active    uintptr
	metadata  uintptr
	resident  uintptr
	mapped    uintptr
	retained  uintptr
}

// refresh recomputes the snapshot. s.mu must be held.
func (s *Sim) refresh() {
	var allocated uintptr
	for _, b := range s.blocks {
		allocated += b.usable
	}
	snap := snapshot{
		allocated: allocated,
		active:    alignUp(allocated, pageSize),
		metadata:  baseMetadata + uintptr(len(s.blocks))*blockHeader,
	}
	snap.resident = snap.active + snap.metadata
	snap.mapped = alignUp(snap.resident, chunkSize)
	snap.retained = snap.mapped - snap.resident
	s.snap = snap
}

// StatsPrint renders the current statistics in the layout of jemalloc's
// malloc_stats_print. The option characters 'J' (JSON output), 'g' (omit
// general information) and 'a' (omit per-arena statistics) are honoured.
func (s *Sim) StatsPrint(opts string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.ContainsRune(opts, 'J') {
		return s.statsJSON(opts)
	}

	var b strings.Builder
	b.WriteString("___ Begin jemalloc statistics ___\n")
	if !strings.ContainsRune(opts, 'g') {
		fmt.Fprintf(&b, "Version: \"%s\"\n", version)
		b.WriteString("Build-time option settings\n")
		b.WriteString("  config.debug: false\n")
		b.WriteString("  config.malloc_conf: \"\"\n")
		b.WriteString("  config.prof: false\n")
		b.WriteString("  config.stats: true\n")
		b.WriteString("Run-time option settings\n")
		b.WriteString("  opt.abort: false\n")
		fmt.Fprintf(&b, "  opt.background_thread: %t\n", s.backgroundThread)
		b.WriteString("  opt.dss: \"secondary\"\n")
		fmt.Fprintf(&b, "  opt.narenas: %d\n", s.narenas)
		b.WriteString("  opt.junk: \"false\"\n")
		b.WriteString("  opt.zero: false\n")
		b.WriteString("  opt.tcache: true\n")
		b.WriteString("  opt.lg_tcache_max: 15\n")
		fmt.Fprintf(&b, "Arenas: %d\n", s.narenas)
		fmt.Fprintf(&b, "Quantum size: %d\n", quantum)
		fmt.Fprintf(&b, "Page size: %d\n", pageSize)
	}
	fmt.Fprintf(&b,
		"Allocated: %d, active: %d, metadata: %d, resident: %d, mapped: %d, retained: %d\n",
		s.snap.allocated, s.snap.active, s.snap.metadata, s.snap.resident, s.snap.mapped, s.snap.retained,
	)
	fmt.Fprintf(&b, "Background threads: %d, epoch: %d\n", boolToInt(s.backgroundThread)*s.maxBackgroundThreads, s.epoch)
	if !strings.ContainsRune(opts, 'a') {
		b.WriteString("Merged arenas stats:\n")
		fmt.Fprintf(&b, "  live allocations: %d\n", len(s.blocks))
		fmt.Fprintf(&b, "  purges requested: %d\n", s.purges.Load())
		fmt.Fprintf(&b, "  decays requested: %d\n", s.decays.Load())
	}
	b.WriteString("___ End jemalloc statistics ___\n")
	return b.String()
}

// statsJSON renders the report as jemalloc's 'J' option does: a single
// object under the "jemalloc" key. s.mu must be held.
func (s *Sim) statsJSON(opts string) string {
	report := make(map[string]any)
	if !strings.ContainsRune(opts, 'g') {
		report["version"] = version
		report["config"] = map[string]any{
			"debug":       false,
			"malloc_conf": "",
			"prof":        false,
			"stats":       true,
		}
		report["opt"] = map[string]any{
			"abort":             false,
			"background_thread": s.backgroundThread,
			"dss":               "secondary",
			"narenas":           s.narenas,
			"junk":              "false",
			"zero":              false,
			"tcache":            true,
			"lg_tcache_max":     15,
		}
		report["arenas"] = map[string]any{
			"narenas": s.narenas,
			"quantum": quantum,
			"page":    pageSize,
			"nbins":   len(s.bins),
		}
	}
	report["stats"] = map[string]any{
		"allocated": s.snap.allocated,
		"active":    s.snap.active,
		"metadata":  s.snap.metadata,
		"resident":  s.snap.resident,
		"mapped":    s.snap.mapped,
		"retained":  s.snap.retained,

		"background_thread": map[string]any{
			"num_threads": boolToInt(s.backgroundThread) * s.maxBackgroundThreads,
		},
	}
	if !strings.ContainsRune(opts, 'a') {
		report["stats.arenas"] = map[string]any{
			"merged": map[string]any{
				"live_allocations": len(s.blocks),
				"purges":           s.purges.Load(),
				"decays":           s.decays.Load(),
			},
		}
	}
	out, err := json.MarshalIndent(map[string]any{"jemalloc": report}, "", "\t")
	if err != nil {
		panic(err)
	}
	return string(out) + "\n"
}

func boolToInt(v bool) uintptr {
	if v {
		return 1
	}
	return 0
}
