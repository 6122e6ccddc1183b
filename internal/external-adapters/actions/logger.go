// Package actions connects the installer to the GitHub Actions runner using
// sethvargo/go-githubactions: workflow-command logging, inputs, outputs and PATH.
package actions

import (
	"fmt"
	"strings"

	"github.com/sethvargo/go-githubactions"

	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces"
)

// Logger implements interfaces.Logger with workflow commands, so warnings and
// errors surface as annotations in the run summary
type Logger struct {
	action *githubactions.Action
}

// NewLogger creates a logger writing through action
func NewLogger(action *githubactions.Action) *Logger {
	return &Logger{action: action}
}

// Debug logs a ::debug:: line, visible when step debug logging is enabled
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.action.Debugf("%s", format(msg, fields))
}

// Info logs a plain line
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.action.Infof("%s", format(msg, fields))
}

// Warn logs a ::warning:: annotation
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.action.Warningf("%s", format(msg, fields))
}

// Error logs an ::error:: annotation
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.action.Errorf("%s", format(msg, fields))
}

func format(msg string, fields []interfaces.Field) string {
	if len(fields) == 0 {
		return msg
	}

	var b strings.Builder
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}
