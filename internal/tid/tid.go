// SPDX-License-Identifier: Apache-2.0

// Package tid identifies the OS thread the calling goroutine runs on.
//
// The result is only stable while the goroutine is locked to its thread
// with runtime.LockOSThread.
package tid
