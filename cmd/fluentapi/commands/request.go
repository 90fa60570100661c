package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "get ROUTE [ID]",
		Short: "Read a collection or a record",
		Long:  "Read every record of a collection, or a single record when the route ends with an id",
		Example: `  fluentapi get users
  fluentapi get users:42
  fluentapi get users 42
  fluentapi get users:42.orders --param status=open`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			client, endpoint, id, err := resolveRoute(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer closeClient(client)

			resp, err := endpoint.Read(cmd.Context(), id, params)
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", strings.Join(args, ":"), err)
			}

			return writeOutput(cmd.OutOrStdout(), decodeBody(resp))
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "query parameter (key=value, repeatable)")

	return cmd
}

// NewHeadCommand creates the head command
func NewHeadCommand() *cobra.Command {
	var paramFlags []string

	cmd := &cobra.Command{
		Use:   "head ROUTE [ID]",
		Short: "Show response headers for a collection or a record",
		Long:  "Send a HEAD request and display the status code and response headers",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			client, endpoint, id, err := resolveRoute(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer closeClient(client)

			resp, err := endpoint.DoHead(cmd.Context(), recordPath(endpoint, id), params)
			if err != nil {
				return fmt.Errorf("failed to head %s: %w", args[0], err)
			}

			summary := map[string]any{"status": resp.StatusCode}
			for key := range resp.Headers {
				summary[key] = resp.Headers.Get(key)
			}

			return writeOutput(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "query parameter (key=value, repeatable)")

	return cmd
}

// NewCreateCommand creates the create command
func NewCreateCommand() *cobra.Command {
	var (
		data       string
		dataFile   string
		paramFlags []string
	)

	cmd := &cobra.Command{
		Use:   "create ROUTE",
		Short: "Create a record in a collection",
		Long:  "POST a JSON or YAML body to a collection",
		Example: `  fluentapi create users --data '{"name": "ada"}'
  fluentapi create users:42.orders --data-file order.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readData(data, dataFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			client, endpoint, id, err := resolveRoute(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer closeClient(client)

			if id != nil {
				return fmt.Errorf("%w: %s", constants.ErrRecordIDNotAllowed, args[0])
			}

			resp, err := endpoint.Create(cmd.Context(), body, fluentapi.WithParams(params))
			if err != nil {
				return fmt.Errorf("failed to create in %s: %w", args[0], err)
			}

			return writeOutput(cmd.OutOrStdout(), decodeBody(resp))
		},
	}

	addDataFlags(cmd, &data, &dataFile, &paramFlags)

	return cmd
}

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	return newWriteCommand("update", "Partially update a record", "PATCH a JSON or YAML body to a record",
		func(cmd *cobra.Command, endpoint fluentapi.Endpoint, id, body any, params fluentapi.Params) (*fluentapi.Response, error) {
			return endpoint.Update(cmd.Context(), id, body, fluentapi.WithParams(params))
		})
}

// NewReplaceCommand creates the replace command
func NewReplaceCommand() *cobra.Command {
	return newWriteCommand("replace", "Replace a record", "PUT a JSON or YAML body to a record",
		func(cmd *cobra.Command, endpoint fluentapi.Endpoint, id, body any, params fluentapi.Params) (*fluentapi.Response, error) {
			return endpoint.Replace(cmd.Context(), id, body, fluentapi.WithParams(params))
		})
}

type writeFunc func(cmd *cobra.Command, endpoint fluentapi.Endpoint, id, body any, params fluentapi.Params) (*fluentapi.Response, error)

func newWriteCommand(name, short, long string, write writeFunc) *cobra.Command {
	var (
		data       string
		dataFile   string
		paramFlags []string
	)

	cmd := &cobra.Command{
		Use:   name + " ROUTE [ID]",
		Short: short,
		Long:  long,
		Example: fmt.Sprintf(`  fluentapi %s users:42 --data '{"name": "ada"}'
  fluentapi %s users:42.orders 7 --data-file order.yml`, name, name),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readData(data, dataFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			params, err := parseParams(paramFlags)
			if err != nil {
				return err
			}

			client, endpoint, id, err := resolveRoute(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer closeClient(client)

			if id == nil {
				return fmt.Errorf("%w: %s", constants.ErrRecordIDRequired, args[0])
			}

			resp, err := write(cmd, endpoint, id, body, params)
			if err != nil {
				return fmt.Errorf("failed to %s %s: %w", name, args[0], err)
			}

			return writeOutput(cmd.OutOrStdout(), decodeBody(resp))
		},
	}

	addDataFlags(cmd, &data, &dataFile, &paramFlags)

	return cmd
}

func addDataFlags(cmd *cobra.Command, data, dataFile *string, paramFlags *[]string) {
	cmd.Flags().StringVar(data, "data", "", "request body as JSON or YAML")
	cmd.Flags().StringVarP(dataFile, "data-file", "f", "", "file with the request body (- for stdin)")
	cmd.Flags().StringArrayVarP(paramFlags, "param", "p", nil, "query parameter (key=value, repeatable)")
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete ROUTE [ID]",
		Short: "Delete a record",
		Long:  "Send a DELETE request for the record the route ends with",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			route := strings.Join(args, ":")

			client, endpoint, id, err := resolveRoute(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer closeClient(client)

			if id == nil {
				return fmt.Errorf("%w: %s", constants.ErrRecordIDRequired, route)
			}

			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "Really delete '%s'? (y/N): ", route)

				var response string

				_, _ = fmt.Fscanln(cmd.InOrStdin(), &response)
				if response != "y" && response != "Y" {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")

					return nil
				}
			}

			_, err = endpoint.Delete(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", route, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted '%s'\n", route)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}
