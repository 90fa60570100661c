package commands

import (
	"sort"
	"strings"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// settingKeys are the settings reported by config show.
var settingKeys = []string{
	"definition",
	"base-url",
	"token",
	"output",
	"verbose",
	"retry-max",
	"cache",
	"nats-url",
	"header",
	"request-id",
}

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect CLI configuration",
		Long:  "Inspect the effective configuration merged from flags, FLUENTAPI_* environment variables and the config file",
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with the token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := effectiveSettings()

			switch viper.GetString("output") {
			case constants.FormatJSON, constants.FormatYAML:
				return writeOutput(cmd.OutOrStdout(), settings)
			default:
				return displayConfigTable(cmd, settings)
			}
		},
	}
}

func effectiveSettings() map[string]any {
	settings := make(map[string]any, len(settingKeys)+1)

	for _, key := range settingKeys {
		settings[key] = viper.Get(key)
	}

	if viper.GetString("token") != "" {
		settings["token"] = constants.MaskedSecret
	}

	settings["config-file"] = viper.ConfigFileUsed()

	return settings
}

func displayConfigTable(cmd *cobra.Command, settings map[string]any) error {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	caser := cases.Title(language.English)

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Setting", "Value")

	for _, key := range keys {
		value := formatCell(settings[key])
		if value == "" || value == "[]" {
			value = constants.NotAvailable
		}

		_ = table.Append([]string{caser.String(strings.ReplaceAll(key, "-", " ")), value})
	}

	return renderTable(table)
}
