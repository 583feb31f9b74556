// Package log wraps go-logging with one named logger per package and a level that can be set
// for all packages at once or overridden per package.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/op/go-logging"
)

// ErrBadModuleLevel is returned by SetModuleLevels for a malformed module=level pair.
var ErrBadModuleLevel = errors.New("log: expected module=level")

// Level is a verbosity threshold; lower levels are more verbose.
type Level int

// The levels that can be passed to SetLevel and SetModuleLevel.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var backendLevels = [...]logging.Level{
	Debug:   logging.DEBUG,
	Info:    logging.INFO,
	Notice:  logging.NOTICE,
	Warning: logging.WARNING,
	Error:   logging.ERROR,
}

func (l Level) String() string {
	if l < Debug || l > Error {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return strings.ToLower(backendLevels[l].String())
}

// ParseLevel maps a level name such as "info" or "WARNING" onto a Level.
func ParseLevel(name string) (Level, error) {
	parsed, err := logging.LogLevel(strings.TrimSpace(name))
	if err == nil {
		for l, b := range backendLevels {
			if b == parsed {
				return Level(l), nil
			}
		}
	}
	return 0, fmt.Errorf("log: unknown level %q", name)
}

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// state is the sink-independent configuration; it is re-applied whenever the sink changes.
var state = struct {
	mu      sync.Mutex
	sink    logging.Backend
	level   Level
	modules map[string]Level
}{
	level:   Notice,
	modules: make(map[string]Level),
}

// Logger is the leveled, module-scoped logger used by every package in the tracer.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New creates a named logger. The name is printed in the module column and is the key
// SetModuleLevel matches.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink routes every logger to sink. The global and per-module levels are kept.
func SetSink(sink io.Writer) {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.sink = logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	applyLocked()
}

// SetLevel sets the verbosity of every module without its own override.
func SetLevel(level Level) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.level = level
	applyLocked()
}

// SetModuleLevel overrides the verbosity of one named logger.
//
// Parameters:
//   - module: the name given to New
//   - level: the level for that module only
func SetModuleLevel(module string, level Level) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.modules[module] = level
	applyLocked()
}

// SetModuleLevels applies a list of module=level overrides, as given on the command line.
// Nothing is applied unless every pair parses.
//
// Parameters:
//   - specs: pairs such as "profiler=info" or "resource_binder=debug"
//
// Returns:
//   - error: ErrBadModuleLevel or an unknown level name
func SetModuleLevels(specs []string) error {
	parsed := make(map[string]Level, len(specs))
	for _, spec := range specs {
		module, name, ok := strings.Cut(spec, "=")
		module = strings.TrimSpace(module)
		if !ok || module == "" {
			return fmt.Errorf("%w, got %q", ErrBadModuleLevel, spec)
		}
		level, err := ParseLevel(name)
		if err != nil {
			return err
		}
		parsed[module] = level
	}
	for module, level := range parsed {
		SetModuleLevel(module, level)
	}
	return nil
}

// applyLocked installs a fresh leveled backend over the sink, since go-logging cannot unset
// a module level once it is set.
func applyLocked() {
	if state.sink == nil {
		return
	}
	leveled := logging.AddModuleLevel(state.sink)
	leveled.SetLevel(backendLevels[state.level], "")
	for module, level := range state.modules {
		leveled.SetLevel(backendLevels[level], module)
	}
	logging.SetBackend(leveled)
}

func init() {
	SetSink(os.Stdout)
}
