// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"
	"strings"

	jemalloc "github.com/wundergraph/go-jemalloc"
	"github.com/wundergraph/go-jemalloc/ctl"
)

// kind is the value type of a control.
type kind string

const (
	kindBool   kind = "bool"
	kindU32    kind = "u32"
	kindU64    kind = "u64"
	kindSize   kind = "size"
	kindString kind = "string"
	kindVoid   kind = "void"
)

// controls maps the controls jemallocctl knows to their value type.
// Numeric path components are written as <i>.
var controls = map[string]kind{
	"version":                kindString,
	"epoch":                  kindU64,
	"background_thread":      kindBool,
	"max_background_threads": kindSize,

	"config.debug":       kindBool,
	"config.malloc_conf": kindString,
	"config.prof":        kindBool,
	"config.stats":       kindBool,

	"opt.abort":             kindBool,
	"opt.background_thread": kindBool,
	"opt.dss":               kindString,
	"opt.junk":              kindString,
	"opt.lg_tcache_max":     kindSize,
	"opt.narenas":           kindU32,
	"opt.tcache":            kindBool,
	"opt.zero":              kindBool,

	"arenas.narenas":        kindU32,
	"arenas.nbins":          kindU32,
	"arenas.page":           kindSize,
	"arenas.quantum":        kindSize,
	"arenas.bin.<i>.size":   kindSize,
	"arena.<i>.purge":       kindVoid,
	"arena.<i>.decay":       kindVoid,
	"thread.tcache.flush":   kindVoid,
	"thread.tcache.enabled": kindBool,
	"thread.allocated":      kindU64,
	"thread.deallocated":    kindU64,

	"stats.allocated": kindSize,
	"stats.active":    kindSize,
	"stats.metadata":  kindSize,
	"stats.resident":  kindSize,
	"stats.mapped":    kindSize,
	"stats.retained":  kindSize,
}

// lookupKind returns the type of the control at path. override, when set,
// takes precedence.
func lookupKind(path, override string) (kind, error) {
	if override != "" {
		k := kind(override)
		switch k {
		case kindBool, kindU32, kindU64, kindSize, kindString, kindVoid:
			return k, nil
		}
		return "", fmt.Errorf("unknown type %q (want bool, u32, u64, size, string or void)", override)
	}
	parts := strings.Split(path, ".")
	for i, part := range parts {
		if _, err := strconv.ParseUint(part, 10, 64); err == nil {
			parts[i] = "<i>"
		}
	}
	if k, ok := controls[strings.Join(parts, ".")]; ok {
		return k, nil
	}
	return "", fmt.Errorf("unknown control %q: pass --type", path)
}

// name validates path and returns it as a control name.
func name(path string) (ctl.Name, error) {
	if path == "" || strings.IndexByte(path, 0) >= 0 {
		return "", fmt.Errorf("invalid control %q", path)
	}
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return "", fmt.Errorf("invalid control %q", path)
		}
	}
	return ctl.NewName(path), nil
}

// readControl reads the control at path as a printable value.
func readControl(n jemalloc.Native, path string, k kind) (any, error) {
	nm, err := name(path)
	if err != nil {
		return nil, err
	}
	switch k {
	case kindBool:
		return ctl.Read[bool](n, nm)
	case kindU32:
		return ctl.Read[uint32](n, nm)
	case kindU64:
		return ctl.Read[uint64](n, nm)
	case kindSize:
		return ctl.Read[uintptr](n, nm)
	case kindString:
		return ctl.ReadString(n, nm)
	}
	return nil, fmt.Errorf("%s takes no value; use set to trigger it", path)
}

// writeControl parses value as k, writes it to the control at path and
// returns the previous value. Void controls are invoked and take no value.
func writeControl(n jemalloc.Native, path string, k kind, value string) (any, error) {
	nm, err := name(path)
	if err != nil {
		return nil, err
	}
	switch k {
	case kindBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, err
		}
		return ctl.ReadWrite(n, nm, v)
	case kindU32:
		v, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return nil, err
		}
		return ctl.ReadWrite(n, nm, uint32(v))
	case kindU64:
		v, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return nil, err
		}
		return ctl.ReadWrite(n, nm, v)
	case kindSize:
		v, err := strconv.ParseUint(value, 0, strconv.IntSize)
		if err != nil {
			return nil, err
		}
		return ctl.ReadWrite(n, nm, uintptr(v))
	case kindVoid:
		if value != "" {
			return nil, fmt.Errorf("%s takes no value", path)
		}
		return nil, ctl.Invoke(n, nm)
	}
	return nil, fmt.Errorf("%s is read-only", path)
}
