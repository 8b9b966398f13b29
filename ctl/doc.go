// SPDX-License-Identifier: Apache-2.0

// Package ctl reads and writes jemalloc's introspection and control values
// through the mallctl interface.
//
// A control is addressed either by its dotted name or by a MIB, the numeric
// path the name resolves to. Resolving once and reusing the MIB avoids
// parsing the name on every access:
//
//	allocated, err := ctl.StatsAllocated.MIB(native)
//	if err != nil {
//		return err
//	}
//	for range ticker.C {
//		if _, err := ctl.AdvanceEpoch(native); err != nil {
//			return err
//		}
//		v, err := allocated.Read(native)
//		...
//	}
//
// The raw functions (Read, Write, ReadWrite, ReadString, Invoke and their
// MIB variants) accept any control; the typed keys declared in this package
// cover the controls this module knows about. Statistics are cached by
// jemalloc and only refreshed when the epoch is advanced.
//
// Every function takes the Native to talk to, usually jemalloc.Default().
package ctl
