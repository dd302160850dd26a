// Package notify delivers the end-of-run summary to the user.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/gen2brain/beeep"

	"github.com/yangzhihuimee/difybatch/internal/batch"
)

// Notifier announces a finished run. The pipeline works identically with
// any implementation, including Nop.
type Notifier interface {
	RunComplete(summary batch.Summary) error
}

// Desktop shows a desktop notification, falling back to the console when
// no notification service is available (headless hosts, missing dbus).
type Desktop struct {
	fallback Notifier
}

// NewDesktop creates a Desktop notifier with a console fallback.
func NewDesktop() *Desktop {
	return &Desktop{fallback: NewConsole(os.Stdout)}
}

// RunComplete implements Notifier.
func (d *Desktop) RunComplete(summary batch.Summary) error {
	message := fmt.Sprintf("Processed %d queries: %d succeeded, %d failed",
		summary.Total, summary.Succeeded, summary.Failed)
	if err := beeep.Notify("Batch run complete", message, ""); err != nil {
		return d.fallback.RunComplete(summary)
	}
	return nil
}

// Console prints the summary as plain text.
type Console struct {
	out io.Writer
}

// NewConsole creates a Console notifier writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// RunComplete implements Notifier.
func (c *Console) RunComplete(summary batch.Summary) error {
	_, err := fmt.Fprintf(c.out, "done: %d queries, %d succeeded, %d failed\n",
		summary.Total, summary.Succeeded, summary.Failed)
	return err
}

// Nop discards the notification.
type Nop struct{}

// RunComplete implements Notifier.
func (Nop) RunComplete(batch.Summary) error { return nil }
