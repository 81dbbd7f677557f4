// Package msglog is the single user-visible message channel for a
// conversion run. All components report progress and problems here with
// an explicit severity rather than raising errors across package
// boundaries.
package msglog

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Level is the severity of a message.
type Level int

const (
	Info Level = iota
	Warn
)

func (l Level) String() string {
	if l == Warn {
		return "WARN"
	}
	return "INFO"
}

// Logf is the package-level message sink. It defaults to log.Printf but
// may be replaced by SetLogger. Tests can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package sink. Passing nil installs a no-op sink.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

var (
	mirrorMu sync.Mutex
	mirror   io.Writer
)

// SetMirror duplicates every warning to w (typically the errors.log
// artifact in the output directory). Passing nil disables mirroring.
func SetMirror(w io.Writer) {
	mirrorMu.Lock()
	defer mirrorMu.Unlock()
	mirror = w
}

// Printf reports a message at the given severity.
func Printf(level Level, format string, v ...interface{}) {
	Logf("[%s] "+format, append([]interface{}{level.String()}, v...)...)
	if level == Warn {
		mirrorMu.Lock()
		if mirror != nil {
			fmt.Fprintf(mirror, format+"\n", v...)
		}
		mirrorMu.Unlock()
	}
}

// Infof reports an informational message.
func Infof(format string, v ...interface{}) { Printf(Info, format, v...) }

// Warnf reports a warning.
func Warnf(format string, v ...interface{}) { Printf(Warn, format, v...) }
