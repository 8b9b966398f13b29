// SPDX-License-Identifier: Apache-2.0

package ctl

// Build-time configuration and the run-time options jemalloc was started
// with. All of them are read-only.
var (
	ConfigDebug      = NewKey[bool]("config.debug")
	ConfigMallocConf = NewStringKey("config.malloc_conf")
	ConfigProf       = NewKey[bool]("config.prof")
	ConfigStats      = NewKey[bool]("config.stats")

	OptAbort            = NewKey[bool]("opt.abort")
	OptBackgroundThread = NewKey[bool]("opt.background_thread")
	OptDss              = NewStringKey("opt.dss")
	OptJunk             = NewStringKey("opt.junk")
	OptLgTcacheMax      = NewKey[uintptr]("opt.lg_tcache_max")
	OptNarenas          = NewKey[uint32]("opt.narenas")
	OptTcache           = NewKey[bool]("opt.tcache")
	OptZero             = NewKey[bool]("opt.zero")
)
