// Package settings provides commands to view and change preferences.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

var settingsJSON bool

var errNotConfigured = errors.New("settings service not configured")

// Cmd is the root command for settings operations.
var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage timer, audio and analytics preferences",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Preferences == nil {
			return errNotConfigured
		}

		prefs, err := app.Preferences.Get(cmd.Context())
		if err != nil {
			return err
		}
		if settingsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(prefs)
		}
		for _, key := range prefDomain.Keys {
			value, _ := prefs.Get(key)
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", key, value)
		}
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one preference",
	Long: `Change one preference. The new value is validated before it is saved.

Examples:
  focusflow settings set focus_minutes 50
  focusflow settings set tree_type sakura
  focusflow settings set productivity_score_weights '{"completion_rate":0.6,"sessions_completed":0.2,"focus_duration":0.2}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Preferences == nil {
			return errNotConfigured
		}
		key, value := args[0], args[1]

		prefs, err := app.Preferences.Get(cmd.Context())
		if err != nil {
			return err
		}
		if err := prefs.Set(key, value); err != nil {
			return err
		}
		if err := prefs.Validate(); err != nil {
			return err
		}
		if err := app.Preferences.Save(cmd.Context(), prefs); err != nil {
			return err
		}

		saved, _ := prefs.Get(key)
		if settingsJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
				key:       saved,
				"updated": true,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, saved)
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().BoolVar(&settingsJSON, "json", false, "output JSON")

	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(setCmd)
}
