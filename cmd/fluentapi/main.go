package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/fluentapi/cmd/fluentapi/commands"
	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "fluentapi",
	Short: "Declarative REST API client",
	Long: `A command-line interface for REST APIs described by a fluentapi definition.

The definition file lists the endpoint tree of an API. Routes such as
"users:1.orders" address any node of that tree.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.fluentapi/config.yml)")
	flags.StringP("definition", "d", "", "API definition file (YAML or JSON)")
	flags.String("base-url", "", "API base URL (overrides the definition)")
	flags.StringP("token", "t", "", "bearer token")
	flags.Bool("ask-token", false, "prompt for the bearer token")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.Int("retry-max", 0, "maximum retries for 5xx, 429 and connection errors")
	flags.String("cache", "none", "response cache (memory, nats, tiered or memory,nats, none)")
	flags.String("nats-url", "", "NATS server URL for the nats and tiered caches")
	flags.StringArrayP("header", "H", nil, "extra request header (key=value, repeatable)")
	flags.Bool("request-id", false, "send a generated X-Request-Id header with every request")

	// Bind flags to viper
	for _, name := range []string{"config", "definition", "base-url", "token", "ask-token", "output", "verbose", "retry-max", "cache", "nats-url", "header", "request-id"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewTreeCommand())
	rootCmd.AddCommand(commands.NewURLCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewHeadCommand())
	rootCmd.AddCommand(commands.NewCreateCommand())
	rootCmd.AddCommand(commands.NewUpdateCommand())
	rootCmd.AddCommand(commands.NewReplaceCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
	rootCmd.AddCommand(commands.NewBatchCommand())
}

func initConfig() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		err := godotenv.Load(envFile)
		if err == nil && viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.fluentapi/config.yml
		viper.AddConfigPath(filepath.Join(home, ".fluentapi"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match, e.g. FLUENTAPI_BASE_URL
	viper.SetEnvPrefix("FLUENTAPI")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
