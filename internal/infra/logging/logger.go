// internal/infra/logging/logger.go
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the root logger.
type Options struct {
	Level string // debug | info | warn | error
	JSON  bool
	File  string // rotating log file; empty = stdout only
}

var (
	mu   sync.RWMutex
	root = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Init replaces the root logger. Call once from main before wiring.
func Init(opts Options) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if f := strings.TrimSpace(opts.File); f != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   f,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		})
	}
	l.SetOutput(out)

	mu.Lock()
	root = l
	mu.Unlock()
	return l
}

// Root returns the current root logger.
func Root() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// For returns a logger tagged with the component name.
func For(component string) *logrus.Entry {
	return Root().WithField("component", component)
}
