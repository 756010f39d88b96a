package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/config"
	"go.klb.dev/smartclip/internal/ipc"
	"go.klb.dev/smartclip/internal/message"
)

func newSettingsCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "settings [show | set KEY VALUE]",
		Short: "Show or change the user settings",
		Long: `Shows or changes the persisted settings:

  primary-hotkey      combo that opens and cycles the picker (default ctrl+g)
  secondary-hotkey    combo that types the latest entry (default none)
  run-at-startup      recorded only (default false)
  show-notifications  desktop notifications (default true)
  max-size            history bound, 1-9999 (default 1000)

When the daemon is running the change is applied immediately and saved by
the daemon. Otherwise the config file is edited directly.`,
		Args:    cobra.RangeArgs(0, 3),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runSettings(v, args) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runSettings(v *viper.Viper, args []string) error {
	var key, value string
	switch {
	case len(args) == 0 || (len(args) == 1 && args[0] == "show"):
	case len(args) == 3 && args[0] == "set":
		key, value = args[1], args[2]
	default:
		return errors.New(`usage: smartclip settings [show | set KEY VALUE]`)
	}

	s, err := changeSettings(v, key, value)
	if err != nil {
		return err
	}
	if v.GetBool("json") {
		return printJSON(s)
	}
	printSettings(s)
	return nil
}

// changeSettings sets key (if any) and returns the resulting settings, going
// through the daemon when one is running.
func changeSettings(v *viper.Viper, key, value string) (config.Settings, error) {
	if ipc.IsRunning() {
		resp, err := ipc.Call(&message.Message{Type: message.TypeSettings, Key: key, Value: value})
		if err != nil {
			return config.Settings{}, err
		}
		if resp.Settings == nil {
			return config.Settings{}, fmt.Errorf("settings: empty response")
		}
		return *resp.Settings, nil
	}

	path := settingsPath(v)
	s, err := config.Load(path)
	if err != nil {
		return s, err
	}
	if key == "" {
		return s, nil
	}
	if s, err = s.Set(key, value); err != nil {
		return s, err
	}
	if err := config.Save(path, s); err != nil {
		return s, err
	}
	return s, nil
}

func printSettings(s config.Settings) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	for _, k := range config.Keys {
		val, _ := s.Get(k)
		fmt.Fprintf(w, "%s\t%s\n", k, val)
	}
	_ = w.Flush()
}
