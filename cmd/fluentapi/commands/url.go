package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewURLCommand creates the url command
func NewURLCommand() *cobra.Command {
	var relative bool

	cmd := &cobra.Command{
		Use:   "url ROUTE [ID]",
		Short: "Print the request URL of a route",
		Long:  "Resolve a route against the endpoint tree and print the URL it addresses without sending a request",
		Example: `  fluentapi url users:42.orders
  fluentapi url users:42.orders:7 --relative`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, config, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			endpoint, id, err := resolveWith(client, args)
			if err != nil {
				return err
			}

			path := recordPath(endpoint, id)
			if !relative {
				path = config.BaseURL + path
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)

			return err
		},
	}

	cmd.Flags().BoolVar(&relative, "relative", false, "print the path without the base URL")

	return cmd
}
