// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"sync/atomic"
)

func branch(name string, children ...*node) *node {
	return &node{name: name, children: children}
}

func leaf(name string, c *control) *node {
	return &node{name: name, ctl: c}
}

// indexed is a branch whose single child is addressed by number.
func indexed(name string, limit func(s *Sim) uintptr, allowAll bool, children ...*node) *node {
	return &node{
		name:    name,
		indexed: &node{children: children, limit: limit, allowAll: allowAll},
	}
}

func readOnly[T any](get func(s *Sim, mib []uintptr) T) *control {
	return value[T](get, nil)
}

func constant[T any](v T) *control {
	return readOnly(func(*Sim, []uintptr) T { return v })
}

func namespace() *node {
	return branch("",
		leaf("version", readOnly(func(s *Sim, _ []uintptr) *byte {
			return s.cstring(version)
		})),
		leaf("epoch", value(
			func(s *Sim, _ []uintptr) uint64 { return s.epoch },
			func(s *Sim, _ []uintptr, _ uint64) int32 {
				s.refresh()
				s.epoch++
				return statusOK
			},
		)),
		leaf("background_thread", value(
			func(s *Sim, _ []uintptr) bool { return s.backgroundThread },
			func(s *Sim, _ []uintptr, v bool) int32 {
				s.backgroundThread = v
				return statusOK
			},
		)),
		leaf("max_background_threads", value(
			func(s *Sim, _ []uintptr) uintptr { return s.maxBackgroundThreads },
			func(s *Sim, _ []uintptr, v uintptr) int32 {
				if v == 0 {
					return statusInval
				}
				s.maxBackgroundThreads = v
				return statusOK
			},
		)),
		branch("thread",
			leaf("allocated", readOnly(func(s *Sim, _ []uintptr) uint64 {
				return atomic.LoadUint64(&s.thread().allocated)
			})),
			leaf("allocatedp", readOnly(func(s *Sim, _ []uintptr) *uint64 {
				return &s.thread().allocated
			})),
			leaf("deallocated", readOnly(func(s *Sim, _ []uintptr) uint64 {
				return atomic.LoadUint64(&s.thread().deallocated)
			})),
			leaf("deallocatedp", readOnly(func(s *Sim, _ []uintptr) *uint64 {
				return &s.thread().deallocated
			})),
			branch("tcache",
				leaf("enabled", value(
					func(s *Sim, _ []uintptr) bool { return s.tcacheEnabled },
					func(s *Sim, _ []uintptr, v bool) int32 {
						s.tcacheEnabled = v
						return statusOK
					},
				)),
				leaf("flush", void(func(s *Sim, _ []uintptr) int32 {
					s.tcacheFlush.Add(1)
					return statusOK
				})),
			),
		),
		branch("config",
			leaf("debug", constant(false)),
			leaf("malloc_conf", readOnly(func(s *Sim, _ []uintptr) *byte {
				return s.cstring("")
			})),
			leaf("prof", constant(false)),
			leaf("stats", constant(true)),
		),
		branch("opt",
			leaf("abort", constant(false)),
			leaf("background_thread", constant(false)),
			leaf("dss", readOnly(func(s *Sim, _ []uintptr) *byte {
				return s.cstring("secondary")
			})),
			leaf("junk", readOnly(func(s *Sim, _ []uintptr) *byte {
				return s.cstring("false")
			})),
			leaf("lg_tcache_max", constant(uintptr(15))),
			leaf("narenas", readOnly(func(s *Sim, _ []uintptr) uint32 {
				return s.narenas
			})),
			leaf("tcache", constant(true)),
			leaf("zero", constant(false)),
		),
		indexed("arena", arenaLimit, true,
			leaf("decay", void(func(s *Sim, _ []uintptr) int32 {
				s.decays.Add(1)
				return statusOK
			})),
			leaf("purge", void(func(s *Sim, _ []uintptr) int32 {
				s.purges.Add(1)
				return statusOK
			})),
		),
		branch("arenas",
			leaf("narenas", readOnly(func(s *Sim, _ []uintptr) uint32 {
				return s.narenas
			})),
			leaf("nbins", readOnly(func(s *Sim, _ []uintptr) uint32 {
				return uint32(len(s.bins))
			})),
			leaf("page", constant(uintptr(pageSize))),
			leaf("quantum", constant(uintptr(quantum))),
			indexed("bin", binLimit, false,
				leaf("size", readOnly(func(s *Sim, mib []uintptr) uintptr {
					return s.bins[mib[2]]
				})),
			),
		),
		branch("stats",
			leaf("active", readOnly(func(s *Sim, _ []uintptr) uintptr { return s.snap.active })),
			leaf("allocated", readOnly(func(s *Sim, _ []uintptr) uintptr { return s.snap.allocated })),
			leaf("mapped", readOnly(func(s *Sim, _ []uintptr) uintptr { return s.snap.mapped })),
			leaf("metadata", readOnly(func(s *Sim, _ []uintptr) uintptr { return s.snap.metadata })),
			leaf("resident", readOnly(func(s *Sim, _ []uintptr) uintptr { return s.snap.resident })),
			leaf("retained", readOnly(func(s *Sim, _ []uintptr) uintptr { return s.snap.retained })),
		),
	)
}

func arenaLimit(s *Sim) uintptr {
	return uintptr(s.narenas)
}

func binLimit(s *Sim) uintptr {
	return uintptr(len(s.bins))
}
