package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const shopDefinition = `
prefix: v1
endpoints:
  - property: users
    endpoints:
      - property: orders
        endpoints:
          - property: items
      - property: profile
        urlPart: user-profile
  - property: products
    urlPart: /catalog/products/
`

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// useSettings resets viper to settings for the duration of the test.
func useSettings(t *testing.T, settings map[string]any) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	for key, value := range settings {
		viper.Set(key, value)
	}
}

// writeDefinition writes the shop definition to a temporary file.
func writeDefinition(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.yml")
	require.NoError(t, os.WriteFile(path, []byte(shopDefinition), 0o600))

	return path
}

// runCommand executes cmd with args and returns what it wrote to stdout.
func runCommand(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}
