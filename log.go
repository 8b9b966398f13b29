// SPDX-License-Identifier: Apache-2.0

package jemalloc

import (
	"go.uber.org/zap"

	"github.com/wundergraph/go-jemalloc/internal/logutil"
)

// SetLogger installs the logger this module reports through. Only
// background activity is logged, such as a Pool reclaiming the native
// buffers of collected arenas; allocation and control calls never log.
// A nil logger, the default, discards everything.
func SetLogger(logger *zap.Logger) {
	logutil.SetGlobalLogger(logger)
}
