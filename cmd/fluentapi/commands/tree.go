package commands

import (
	"fmt"
	"io"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const idPlaceholder = "{id}"

// TreeEntry is one endpoint of the materialized tree.
type TreeEntry struct {
	Route string `json:"route" yaml:"route"`
	Path  string `json:"path"  yaml:"path"`
	Class string `json:"class" yaml:"class"`
}

// NewTreeCommand creates the tree command
func NewTreeCommand() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Display the endpoint tree",
		Long:  "Materialize every endpoint of the definition and display its route and request path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, err := loadDefinition()
			if err != nil {
				return err
			}

			client, _, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			entries, err := walkTree(client.Endpoints(), definition.Endpoints, "", depth)
			if err != nil {
				return err
			}

			return writeTree(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "maximum depth to display (0 for unlimited)")

	return cmd
}

// walkTree descends through every record level, standing in idPlaceholder
// for record ids.
func walkTree(endpoints fluentapi.Endpoints, declarations []fluentapi.Declaration, parent string, depth int) ([]TreeEntry, error) {
	var entries []TreeEntry

	for _, name := range endpoints.Names() {
		endpoint := endpoints[name]

		route := name
		if parent != "" {
			route = parent + "." + name
		}

		entries = append(entries, TreeEntry{
			Route: route,
			Path:  "/" + endpoint.URL(),
			Class: classOf(declarations, name),
		})

		if depth == 1 || len(endpoint.Declarations()) == 0 {
			continue
		}

		children, err := endpoint.Enter(idPlaceholder)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", route, err)
		}

		nextDepth := depth
		if depth > 1 {
			nextDepth--
		}

		nested, err := walkTree(children, endpoint.Declarations(), route+":"+idPlaceholder, nextDepth)
		if err != nil {
			return nil, err
		}

		entries = append(entries, nested...)
	}

	return entries, nil
}

// classOf returns the endpoint class of the last declaration named property.
func classOf(declarations []fluentapi.Declaration, property string) string {
	class := "base"

	for _, declaration := range declarations {
		if declaration.Property != property {
			continue
		}

		switch {
		case declaration.Factory != nil:
			class = "custom"
		case declaration.Class != "":
			class = declaration.Class
		default:
			class = "base"
		}
	}

	return class
}

func writeTree(out io.Writer, entries []TreeEntry) error {
	switch viper.GetString("output") {
	case constants.FormatJSON, constants.FormatYAML:
		return writeOutput(out, entries)
	default:
		table := tablewriter.NewWriter(out)
		table.Header("Route", "Path", "Class")

		for _, entry := range entries {
			_ = table.Append([]string{entry.Route, entry.Path, entry.Class})
		}

		return renderTable(table)
	}
}
