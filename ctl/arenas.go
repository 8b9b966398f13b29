// SPDX-License-Identifier: Apache-2.0

package ctl

import (
	jemalloc "github.com/wundergraph/go-jemalloc"
)

// AllArenas is the arena index that addresses every arena at once
// (MALLCTL_ARENAS_ALL).
const AllArenas = 4096

var (
	ArenasNarenas = NewKey[uint32]("arenas.narenas")
	ArenasNbins   = NewKey[uint32]("arenas.nbins")
	ArenasPage    = NewKey[uintptr]("arenas.page")
	ArenasQuantum = NewKey[uintptr]("arenas.quantum")

	// ArenasBinSize is the size of bin 0. Resolve it and use WithIndex(2, i)
	// for bin i.
	ArenasBinSize = NewKey[uintptr]("arenas.bin.0.size")

	// ArenaPurge purges all unused dirty pages of arena 0. Resolve it and
	// use WithIndex(1, i) for arena i.
	ArenaPurge = NewVoidKey("arena.0.purge")
	// ArenaDecay purges the unused dirty pages of arena 0 that are due
	// according to its decay time.
	ArenaDecay = NewVoidKey("arena.0.decay")
)

// BinSizes returns the sizes of every small size class, smallest first.
func BinSizes(n jemalloc.Native) ([]uintptr, error) {
	nbins, err := ArenasNbins.Read(n)
	if err != nil {
		return nil, err
	}
	mib, err := ArenasBinSize.MIB(n)
	if err != nil {
		return nil, err
	}
	sizes := make([]uintptr, nbins)
	for i := range sizes {
		if sizes[i], err = mib.WithIndex(2, uintptr(i)).Read(n); err != nil {
			return nil, err
		}
	}
	return sizes, nil
}

// PurgeArena purges the unused dirty pages of arena i, or of every arena
// when i is AllArenas.
func PurgeArena(n jemalloc.Native, i uintptr) error {
	return invokeArena(n, ArenaPurge, i)
}

// DecayArena triggers decay-based purging of arena i, or of every arena
// when i is AllArenas.
func DecayArena(n jemalloc.Native, i uintptr) error {
	return invokeArena(n, ArenaDecay, i)
}

func invokeArena(n jemalloc.Native, key VoidKey, i uintptr) error {
	mib, err := key.MIB(n)
	if err != nil {
		return err
	}
	return mib.WithIndex(1, i).Invoke(n)
}
