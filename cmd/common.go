package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/yangzhihuimee/difybatch/internal/notify"
	"github.com/yangzhihuimee/difybatch/internal/upload"
)

// pickNotifier chooses the completion notifier: desktop with console
// fallback by default, nothing when suppressed.
func pickNotifier(flags NotifyFlags) notify.Notifier {
	if flags.NoNotify {
		return notify.Nop{}
	}
	return notify.NewDesktop()
}

// uploadRunArtifacts configures the requested provider and ships the run
// artifacts under a timestamped remote directory.
func uploadRunArtifacts(ctx context.Context, flags UploadFlags, paths ...string) error {
	provider, err := upload.New(flags.Provider)
	if err != nil {
		return err
	}

	settings, err := parseSettings(flags.Settings)
	if err != nil {
		return err
	}
	if err := provider.Configure(settings); err != nil {
		return fmt.Errorf("configure %s provider: %w", provider.Name(), err)
	}

	remoteDir := "runs/" + time.Now().Format("20060102-150405")
	return upload.Artifacts(ctx, provider, remoteDir, paths...)
}
