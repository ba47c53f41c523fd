//go:build windows

package mcp

import "os"

// shutdownSignals stop a stdio server. Windows has no SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt}
