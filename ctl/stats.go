// SPDX-License-Identifier: Apache-2.0

package ctl

import (
	jemalloc "github.com/wundergraph/go-jemalloc"
)

// Global statistics, in bytes. They are cached: advance the Epoch to
// refresh them.
var (
	// StatsAllocated is the total number of bytes allocated by the
	// application.
	StatsAllocated = NewKey[uintptr]("stats.allocated")
	// StatsActive is the total number of bytes in active pages allocated by
	// the application. It is a multiple of the page size and at least
	// StatsAllocated.
	StatsActive = NewKey[uintptr]("stats.active")
	// StatsMetadata is the total number of bytes dedicated to allocator
	// metadata.
	StatsMetadata = NewKey[uintptr]("stats.metadata")
	// StatsResident is the maximum number of bytes in physically resident
	// data pages mapped by the allocator.
	StatsResident = NewKey[uintptr]("stats.resident")
	// StatsMapped is the total number of bytes in active extents mapped by
	// the allocator.
	StatsMapped = NewKey[uintptr]("stats.mapped")
	// StatsRetained is the total number of bytes in virtual memory mappings
	// that were retained rather than returned to the operating system.
	StatsRetained = NewKey[uintptr]("stats.retained")
)

// Stats is a snapshot of the global statistics.
type Stats struct {
	Epoch     uint64
	Allocated uintptr
	Active    uintptr
	Metadata  uintptr
	Resident  uintptr
	Mapped    uintptr
	Retained  uintptr
}

// ReadStats advances the epoch and reads every global statistic by name.
// Use a StatsReader to read them repeatedly.
func ReadStats(n jemalloc.Native) (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Epoch, err = AdvanceEpoch(n); err != nil {
		return Stats{}, err
	}
	fields := []struct {
		key Key[uintptr]
		dst *uintptr
	}{
		{StatsAllocated, &s.Allocated},
		{StatsActive, &s.Active},
		{StatsMetadata, &s.Metadata},
		{StatsResident, &s.Resident},
		{StatsMapped, &s.Mapped},
		{StatsRetained, &s.Retained},
	}
	for _, f := range fields {
		if *f.dst, err = f.key.Read(n); err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}

// StatsReader reads the global statistics through MIBs resolved once.
// It is safe for concurrent use.
type StatsReader struct {
	native    jemalloc.Native
	epoch     Mib[uint64]
	allocated Mib[uintptr]
	active    Mib[uintptr]
	metadata  Mib[uintptr]
	resident  Mib[uintptr]
	mapped    Mib[uintptr]
	retained  Mib[uintptr]
}

// NewStatsReader resolves the statistics controls of n.
func NewStatsReader(n jemalloc.Native) (*StatsReader, error) {
	r := &StatsReader{native: n}
	var err error
	if r.epoch, err = Epoch.MIB(n); err != nil {
		return nil, err
	}
	mibs := []struct {
		key Key[uintptr]
		dst *Mib[uintptr]
	}{
		{StatsAllocated, &r.allocated},
		{StatsActive, &r.active},
		{StatsMetadata, &r.metadata},
		{StatsResident, &r.resident},
		{StatsMapped, &r.mapped},
		{StatsRetained, &r.retained},
	}
	for _, m := range mibs {
		if *m.dst, err = m.key.MIB(n); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Refresh advances the epoch and returns the refreshed statistics.
func (r *StatsReader) Refresh() (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.Epoch, err = r.epoch.ReadWrite(r.native, 1); err != nil {
		return Stats{}, err
	}
	fields := []struct {
		mib Mib[uintptr]
		dst *uintptr
	}{
		{r.allocated, &s.Allocated},
		{r.active, &s.Active},
		{r.metadata, &s.Metadata},
		{r.resident, &s.Resident},
		{r.mapped, &s.Mapped},
		{r.retained, &s.Retained},
	}
	for _, f := range fields {
		if *f.dst, err = f.mib.Read(r.native); err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}
