package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/app"
	"go.klb.dev/smartclip/internal/clip"
	"go.klb.dev/smartclip/internal/config"
	"go.klb.dev/smartclip/internal/hotkey"
	"go.klb.dev/smartclip/internal/hub"
	"go.klb.dev/smartclip/internal/ipc"
	"go.klb.dev/smartclip/internal/notify"
	"go.klb.dev/smartclip/internal/store"
	"go.klb.dev/smartclip/internal/tray"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clipboard history daemon",
		Long: `Starts smartclip: watches the clipboard, keeps the history, binds the
hotkeys and serves the other commands over the IPC socket.

Settings changed from the tray or with "smartclip settings set" are written
back to the config file. Edits made to that file while smartclip runs are
picked up without a restart.

Precedence (lowest → highest): defaults → config file → SMARTCLIP_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	addSettingsFlags(cmd)
	addStoreFlags(cmd)
	cmd.Flags().Bool("tray", true, "show the system tray icon")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	closeLog, err := setupLogging(v)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer closeLog()

	settings := config.FromViper(v)
	savePath := settingsPath(v)

	persister, err := store.Open(storeOptions(v))
	if err != nil {
		return fmt.Errorf("history store: %w", err)
	}
	defer persister.Close()

	backend := clip.New()
	defer backend.Close()

	slog.Info("smartclip starting",
		"version", Version,
		"clipboard", backend.Name(),
		"store", persister.Location(),
		"settings", savePath,
	)

	saveSettings := func(s config.Settings) error { return config.Save(savePath, s) }
	a := app.New(app.Options{
		Clipboard:    backend,
		Keyboard:     clip.NewKeyboard(),
		Hotkeys:      hotkey.NewController(hotkey.NewRegistrar(), hotkey.NewReleaseHook()),
		Persister:    persister,
		Hub:          hub.New(),
		Notifier:     notify.New(settings.ShowNotifications),
		Settings:     settings,
		SaveSettings: saveSettings,
		PasteDelay:   v.GetDuration("paste-delay"),
		Version:      Version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// IPC socket for the list/push/use/status/watch/session/settings commands
	ln, err := ipc.Listen()
	if err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		go a.Serve(ctx, ln)
	}

	if config.Watch(v, func(s config.Settings) {
		if err := a.ApplySettings(ctx, s); err != nil {
			slog.Debug("config reload skipped", "err", err)
		}
	}) {
		slog.Info("watching config file", "path", v.ConfigFileUsed())
	}

	if !v.GetBool("tray") {
		var runErr error
		hotkey.RunOnMainThread(func() { runErr = a.Run(ctx) })
		return runErr
	}
	return runWithTray(ctx, stop, a, settings)
}

// runWithTray runs the tray loop on the main goroutine and the app beside it.
// The tray's event loop also services the hotkey registrations.
func runWithTray(ctx context.Context, stop context.CancelFunc, a *app.App, settings config.Settings) error {
	t := tray.New(tray.Callbacks{
		OnUse: func(i int) {
			if err := a.Use(ctx, i); err != nil {
				slog.Warn("tray: use failed", "index", i, "err", err)
			}
		},
		OnNotificationsToggle: func() (bool, error) { return a.ToggleNotifications(ctx) },
		OnRunAtStartupToggle:  func() (bool, error) { return a.ToggleRunAtStartup(ctx) },
		OnQuit:                stop,
	}, settings.ShowNotifications, settings.RunAtStartup)

	a.Hub().Register(t)
	defer a.Hub().Unregister(t)

	runErr := make(chan error, 1)
	t.Run(func() {
		go func() {
			runErr <- a.Run(ctx)
			t.Quit()
		}()
	})

	// Run also returns when the tray's own Quit item is used.
	stop()
	return <-runErr
}
