package rules

import "log/slog"

// Notifier receives diagnostics from rule evaluation. Diagnostics never
// interrupt a tick; they exist so misbehaving rule lists can be debugged.
type Notifier interface {
	Notice(msg string, args ...any)
}

// SlogNotifier forwards notices to a slog logger at warn level.
// A nil Logger uses slog.Default().
type SlogNotifier struct {
	Logger *slog.Logger
}

func (n SlogNotifier) Notice(msg string, args ...any) {
	l := n.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Warn(msg, args...)
}

type discard struct{}

func (discard) Notice(string, ...any) {}

// Discard drops every notice.
var Discard Notifier = discard{}
