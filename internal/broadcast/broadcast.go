// ABOUTME: Forwards intent transitions to the realtime layer via an external command
// ABOUTME: Pipes the intent-update JSON to the command's stdin; failures are logged, never fatal

package broadcast

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/mauromedda/intentd/internal/intent"
	pilog "github.com/mauromedda/intentd/internal/log"
	"github.com/mauromedda/intentd/internal/telemetry"
)

const defaultTimeout = 5 * time.Second

// Forwarder runs a shell command once per intent transition.
type Forwarder struct {
	command string
	timeout time.Duration
}

// New creates a forwarder for command. A non-positive timeout means 5s.
func New(command string, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Forwarder{command: command, timeout: timeout}
}

// HasCommand reports whether a command is configured.
func (f *Forwarder) HasCommand() bool {
	return f.command != ""
}

// Send pipes the update for tr to the command and returns its trimmed stdout.
// It applies the forwarder timeout when ctx has no deadline.
func (f *Forwarder) Send(ctx context.Context, tr intent.Transition) (string, error) {
	if f.command == "" {
		return "", fmt.Errorf("no broadcast command configured")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	data, err := telemetry.UpdateOf(tr).MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshaling update: %w", err)
	}
	data = append(data, '\n')

	cmd := exec.CommandContext(ctx, "sh", "-c", f.command)
	cmd.Stdin = bytes.NewReader(data)
	// Orphaned grandchildren can hold the pipes open after a kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("running broadcast command: %w: %s", err, msg)
		}
		return "", fmt.Errorf("running broadcast command: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Handler returns an event bus handler that sends each transition and logs
// failures. The engine never sees broadcast errors.
func (f *Forwarder) Handler(ctx context.Context) func(intent.Transition) {
	return func(tr intent.Transition) {
		if !f.HasCommand() {
			return
		}
		if _, err := f.Send(ctx, tr); err != nil {
			pilog.Warn("broadcast: %s: %v", tr.Reason(), err)
			return
		}
		pilog.Debug("broadcast: sent %s", tr.To)
	}
}
