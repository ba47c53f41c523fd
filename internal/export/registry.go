// Package export serializes simulation batches for plotting and analysis
// tools. Writers are looked up by format name; each format registers itself
// from its own file.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nvandessel/walkstat/internal/walk"
)

// Payload is what every writer receives.
type Payload struct {
	Result *walk.Result

	// Seed is recorded alongside the data so a run can be replayed.
	Seed int64

	// MaxWalks limits how many walks' trajectories are written. Values <= 0
	// write all of them. Return counts are never truncated.
	MaxWalks int
}

// WriterFunc writes a payload in one format.
type WriterFunc func(w io.Writer, p Payload) error

var writers = map[string]WriterFunc{}

// Register adds or replaces the writer for format.
func Register(format string, fn WriterFunc) { writers[format] = fn }

// Formats returns the registered format names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supported reports whether a writer is registered for format.
func Supported(format string) bool {
	_, ok := writers[format]
	return ok
}

// Write dispatches p to the writer registered for format.
func Write(format string, w io.Writer, p Payload) error {
	fn, ok := writers[format]
	if !ok {
		return fmt.Errorf("unknown export format %q (known: %s)", format, strings.Join(Formats(), ", "))
	}
	if p.Result == nil {
		return fmt.Errorf("export %s: nil result", format)
	}
	return fn(w, p)
}

// walkLimit returns how many walks' trajectories to write.
func (p Payload) walkLimit() int {
	n := p.Result.Trajectories.Walks()
	if p.MaxWalks > 0 && p.MaxWalks < n {
		return p.MaxWalks
	}
	return n
}
