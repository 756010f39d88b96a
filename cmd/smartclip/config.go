package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/app"
	"go.klb.dev/smartclip/internal/config"
	"go.klb.dev/smartclip/internal/logging"
	"go.klb.dev/smartclip/internal/store"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and SMARTCLIP_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → SMARTCLIP_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("smartclip")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/smartclip/")
		v.AddConfigPath(config.Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("SMARTCLIP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
	cmd.Flags().String("log-file", "", "append logs to this file instead of stderr")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addStoreFlags adds the flags that locate the history store.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("data-dir", config.DataDir(), "directory holding the history")
	cmd.Flags().String("store", string(store.KindJSON), "history backend: json|sqlite")
	cmd.Flags().String("passphrase", "", "seal the json history file with this passphrase (empty = plain)")
}

// addSettingsFlags adds one flag per user setting.
func addSettingsFlags(cmd *cobra.Command) {
	d := config.Defaults()
	f := cmd.Flags()
	f.String(config.KeyPrimaryHotkey, d.PrimaryHotkey, `combo that opens and cycles the picker, or "none"`)
	f.String(config.KeySecondaryHotkey, d.SecondaryHotkey, `combo that types the latest entry, or "none"`)
	f.Bool(config.KeyRunAtStartup, d.RunAtStartup, "recorded for autostart tooling; not acted on")
	f.Bool(config.KeyShowNotifications, d.ShowNotifications, "show desktop notifications")
	f.Int(config.KeyMaxSize, d.MaxSize, "history size bound (1-9999)")
	f.Duration("paste-delay", app.DefaultPasteDelay, "wait between the clipboard write and the paste keystroke")
}

// storeOptions reads the store flags.
func storeOptions(v *viper.Viper) store.Options {
	return store.Options{
		Kind:       store.Kind(v.GetString("store")),
		Dir:        v.GetString("data-dir"),
		Passphrase: v.GetString("passphrase"),
	}
}

// settingsPath is the file settings changes are written to: the config file
// in use, or the per-user default when that file is the system-wide one.
func settingsPath(v *viper.Viper) string {
	p := v.ConfigFileUsed()
	if p == "" || strings.HasPrefix(filepath.ToSlash(filepath.Clean(p)), "/etc/") {
		return config.DefaultPath()
	}
	return p
}

// setupLogging reads logging flags from viper and configures slog. The
// returned func closes the log file, if one was opened.
func setupLogging(v *viper.Viper) (func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if path := v.GetString("log-file"); path != "" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return closeFn, err
		}
		w, closeFn = f, func() { _ = f.Close() }
	}
	interactive := v.GetBool("no-background") || logging.IsTTY(w)
	format, level := resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"))
	logging.Setup(format, logging.ParseLevel(level), w)
	return closeFn, nil
}

// fmtAge renders how long ago t was.
func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
