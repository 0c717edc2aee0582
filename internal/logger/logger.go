// Package logger writes leveled, tagged log lines for the migration run.
//
// Lines look like "[warn] Unable to find android/build.gradle." and carry no
// timestamps: the tool runs once in a terminal or CI job, and the tags are
// the only structure consumers rely on.
package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conn-castle/capmigrate/internal/terminal"
)

// Level orders log severities.
type Level int

const (
	// LevelDebug is the most verbose level.
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger writes tagged lines to a single writer.
type Logger struct {
	out     io.Writer
	min     Level
	debug   *color.Color
	info    *color.Color
	warn    *color.Color
	errc    *color.Color
	success *color.Color
}

// Options configures a Logger.
type Options struct {
	// Color forces colored tags on or off. Nil detects from the writer.
	Color *bool
	// MinLevel drops lines below this level. Success lines are always written.
	MinLevel Level
}

// New returns a Logger writing to out.
func New(out io.Writer, opts Options) *Logger {
	if out == nil {
		out = io.Discard
	}
	enabled := terminal.ColorEnabled(out)
	if opts.Color != nil {
		enabled = *opts.Color
	}
	l := &Logger{
		out:     out,
		min:     opts.MinLevel,
		debug:   color.New(color.FgMagenta),
		info:    color.New(color.FgCyan, color.Bold),
		warn:    color.New(color.FgYellow, color.Bold),
		errc:    color.New(color.FgRed, color.Bold),
		success: color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{l.debug, l.info, l.warn, l.errc, l.success} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return l
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	disabled := false
	return New(io.Discard, Options{Color: &disabled})
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.write(LevelDebug, l.debug, "[debug]", format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.write(LevelInfo, l.info, "[info]", format, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.write(LevelWarn, l.warn, "[warn]", format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.write(LevelError, l.errc, "[error]", format, args...)
}

// Successf logs a success line regardless of the minimum level.
func (l *Logger) Successf(format string, args ...any) {
	l.write(LevelError+1, l.success, "[success]", format, args...)
}

func (l *Logger) write(level Level, c *color.Color, tag string, format string, args ...any) {
	if l == nil || level < l.min {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	_, _ = fmt.Fprintf(l.out, "%s %s\n", c.Sprint(tag), msg)
}
