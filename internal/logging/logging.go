// Package logging provides leveled log output on top of the standard log
// package, optionally sent to a rotating log file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
)

// Config selects where log messages go. An empty Logfile keeps them on
// stderr.
type Config struct {
	Logfile string
	MaxSize int // megabytes
	MaxAge  int // days
}

var (
	mu      sync.Mutex
	verbose bool
	rotator *lumberjack.Logger
)

// Setup directs log output to the configured file.
func Setup(c *Config) {
	mu.Lock()
	defer mu.Unlock()

	if c == nil || c.Logfile == "" {
		return
	}
	fmt.Printf("Sending log messages to: %s\n", c.Logfile)
	rotator = &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize,
		MaxAge:   c.MaxAge,
	}
	log.SetOutput(rotator)
}

// SetVerbose turns debug messages on or off.
func SetVerbose(on bool) {
	mu.Lock()
	verbose = on
	mu.Unlock()
}

// Verbose reports whether debug messages are written.
func Verbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// Debugf formats its arguments analogous to fmt.Printf and records the text
// as a log message at Debug level. Nothing is written unless verbose.
func Debugf(format string, args ...interface{}) {
	if Verbose() {
		log.Printf(" DEBUG "+format, args...)
	}
}

// Infof is like Debugf, but at Info level and written regardless of verbosity.
func Infof(format string, args ...interface{}) {
	log.Printf(" INFO "+format, args...)
}

// Warningf is like Infof, but at Warning level.
func Warningf(format string, args ...interface{}) {
	log.Printf(" WARNING "+format, args...)
}

// Errorf is like Infof, but at Error level.
func Errorf(format string, args ...interface{}) {
	log.Printf(" ERROR "+format, args...)
}

// Shutdown closes the log file, if any, and restores stderr output.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()

	if rotator == nil {
		return
	}
	log.Printf(" INFO Closing log file...")
	rotator.Close()
	rotator = nil
	log.SetOutput(os.Stderr)
}

// Logger adapts the package level functions to the thinning Logger
// interface.
type Logger struct{}

func (Logger) Debugf(format string, args ...interface{}) {
	Debugf(format, args...)
}

// SetOutput redirects log messages to w; used by tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
