// SPDX-License-Identifier: Apache-2.0

// Command jemallocctl inspects and tunes the jemalloc allocator of its own
// process through mallctl, and serves its statistics to Prometheus.
//
// Build it with -tags jemalloc and cgo enabled to talk to the real library;
// otherwise it runs against the simulated allocator.
package main

func main() {
	execute()
}
