// Package config holds the user settings record and the viper plumbing that
// reads, persists and watches it.
//
// Keys are the flag names, so one spelling works for the TOML file, the
// SMARTCLIP_* env vars (with "-" mapped to "_") and the command line.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/history"
	"go.klb.dev/smartclip/internal/hotkey"
)

const (
	KeyPrimaryHotkey     = "primary-hotkey"
	KeySecondaryHotkey   = "secondary-hotkey"
	KeyRunAtStartup      = "run-at-startup"
	KeyShowNotifications = "show-notifications"
	KeyMaxSize           = "max-size"
)

// Keys lists the settings keys in display order.
var Keys = []string{
	KeyPrimaryHotkey,
	KeySecondaryHotkey,
	KeyRunAtStartup,
	KeyShowNotifications,
	KeyMaxSize,
}

// FileName is the config file looked up in the config directories.
const FileName = "smartclip.toml"

// ErrUnknownKey is returned by Set for a key that is not a setting.
var ErrUnknownKey = errors.New("unknown setting")

// Settings is the persisted user settings record.
type Settings struct {
	PrimaryHotkey     string `json:"primary_hotkey"`
	SecondaryHotkey   string `json:"secondary_hotkey"`
	RunAtStartup      bool   `json:"run_at_startup"`
	ShowNotifications bool   `json:"show_notifications"`
	MaxSize           int    `json:"max_size"`
}

// Defaults returns the settings used for anything not configured.
func Defaults() Settings {
	return Settings{
		PrimaryHotkey:     "ctrl+g",
		SecondaryHotkey:   hotkey.None,
		RunAtStartup:      false,
		ShowNotifications: true,
		MaxSize:           history.DefaultMaxSize,
	}
}

// Normalize clamps MaxSize and fills empty combos with "none". Combo syntax
// is not checked here; an unparsable combo surfaces when it is bound.
func (s Settings) Normalize() Settings {
	s.PrimaryHotkey = strings.TrimSpace(s.PrimaryHotkey)
	s.SecondaryHotkey = strings.TrimSpace(s.SecondaryHotkey)
	if s.PrimaryHotkey == "" {
		s.PrimaryHotkey = hotkey.None
	}
	if s.SecondaryHotkey == "" {
		s.SecondaryHotkey = hotkey.None
	}
	s.MaxSize = max(1, min(s.MaxSize, history.MaxMaxSize))
	return s
}

// Get returns the string form of one setting.
func (s Settings) Get(key string) (string, error) {
	switch key {
	case KeyPrimaryHotkey:
		return s.PrimaryHotkey, nil
	case KeySecondaryHotkey:
		return s.SecondaryHotkey, nil
	case KeyRunAtStartup:
		return strconv.FormatBool(s.RunAtStartup), nil
	case KeyShowNotifications:
		return strconv.FormatBool(s.ShowNotifications), nil
	case KeyMaxSize:
		return strconv.Itoa(s.MaxSize), nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKey, key)
}

// Set parses value into the named setting. Combos are validated here so a
// typo is caught before it reaches the file.
func (s Settings) Set(key, value string) (Settings, error) {
	var err error
	switch key {
	case KeyPrimaryHotkey, KeySecondaryHotkey:
		var b hotkey.Binding
		if b, err = hotkey.Parse(value); err != nil {
			return s, err
		}
		if key == KeyPrimaryHotkey {
			s.PrimaryHotkey = b.String()
		} else {
			s.SecondaryHotkey = b.String()
		}
	case KeyRunAtStartup:
		s.RunAtStartup, err = strconv.ParseBool(value)
	case KeyShowNotifications:
		s.ShowNotifications, err = strconv.ParseBool(value)
	case KeyMaxSize:
		var n int
		if n, err = strconv.Atoi(value); err == nil && n < 1 {
			err = errors.New("must be at least 1")
		}
		s.MaxSize = n
	default:
		return s, fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	if err != nil {
		return s, fmt.Errorf("%s: %w", key, err)
	}
	return s.Normalize(), nil
}

// SetDefaults registers the settings defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyPrimaryHotkey, d.PrimaryHotkey)
	v.SetDefault(KeySecondaryHotkey, d.SecondaryHotkey)
	v.SetDefault(KeyRunAtStartup, d.RunAtStartup)
	v.SetDefault(KeyShowNotifications, d.ShowNotifications)
	v.SetDefault(KeyMaxSize, d.MaxSize)
}

// FromViper reads the settings record out of v.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		PrimaryHotkey:     v.GetString(KeyPrimaryHotkey),
		SecondaryHotkey:   v.GetString(KeySecondaryHotkey),
		RunAtStartup:      v.GetBool(KeyRunAtStartup),
		ShowNotifications: v.GetBool(KeyShowNotifications),
		MaxSize:           maxSize(v),
	}.Normalize()
}

// maxSize reads max-size, falling back to the default when the value is not
// an integer of at least 1. viper's GetInt would turn such values into 0.
func maxSize(v *viper.Viper) int {
	raw := v.Get(KeyMaxSize)
	n, err := cast.ToIntE(raw)
	if err != nil || n < 1 {
		d := Defaults().MaxSize
		slog.Warn("invalid max-size, using default", "value", raw, "default", d)
		return d
	}
	return n
}

// Dir returns the per-user config directory.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "smartclip")
	}
	return filepath.Join(os.TempDir(), "smartclip")
}

// DefaultPath is where settings are written when no config file was found.
func DefaultPath() string { return filepath.Join(Dir(), FileName) }

// DataDir returns the default history directory: $XDG_DATA_HOME/smartclip,
// falling back to ~/.local/share/smartclip.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "smartclip")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "smartclip")
	}
	return filepath.Join(Dir(), "data")
}

// Load reads the settings from the TOML file at path. A missing file yields
// the defaults.
func Load(path string) (Settings, error) {
	v, err := readFile(path)
	if err != nil {
		return Defaults(), err
	}
	SetDefaults(v)
	return FromViper(v), nil
}

// Save writes s into the TOML file at path, keeping any other keys the file
// already holds.
func Save(path string, s Settings) error {
	v, err := readFile(path)
	if err != nil {
		return err
	}
	s = s.Normalize()
	v.Set(KeyPrimaryHotkey, s.PrimaryHotkey)
	v.Set(KeySecondaryHotkey, s.SecondaryHotkey)
	v.Set(KeyRunAtStartup, s.RunAtStartup)
	v.Set(KeyShowNotifications, s.ShowNotifications)
	v.Set(KeyMaxSize, s.MaxSize)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	slog.Debug("settings saved", "path", path)
	return nil
}

func readFile(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return v, nil
}

// Watch calls fn with the fresh settings each time the config file v was
// read from changes on disk. It reports false when v has no file to watch.
func Watch(v *viper.Viper, fn func(Settings)) bool {
	path := v.ConfigFileUsed()
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed", "path", e.Name, "op", e.Op.String())
		fn(FromViper(v))
	})
	v.WatchConfig()
	return true
}
