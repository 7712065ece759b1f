package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrUnavailable is returned when no desktop session can show the notification.
var ErrUnavailable = errors.New("desktop notifications unavailable")

// Desktop sends notifications through notify-send.
type Desktop struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewDesktop creates a notify-send notifier.
func NewDesktop() *Desktop {
	return &Desktop{
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Name returns the notifier name.
func (d *Desktop) Name() string {
	return "desktop"
}

// Available reports whether a display and notify-send are present.
func (d *Desktop) Available() bool {
	if d.getenv("DISPLAY") == "" && d.getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	_, err := d.lookPath("notify-send")
	return err == nil
}

// Notify shows a critical notification.
func (d *Desktop) Notify(ctx context.Context, msg Message) error {
	if !d.Available() {
		return ErrUnavailable
	}
	args := []string{"--urgency=critical", "--icon=dialog-error", msg.Title, msg.Message}
	if err := d.run(ctx, "notify-send", args...); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}
	return nil
}
