package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// parseKeyValues parses repeated key=value flags. Later keys win.
func parseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", constants.KeyValueParts)
		if len(parts) != constants.KeyValueParts || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, pair)
		}

		values[strings.TrimSpace(parts[0])] = parts[1]
	}

	return values, nil
}

// parseParams turns --param flags into query parameters.
func parseParams(pairs []string) (fluentapi.Params, error) {
	values, err := parseKeyValues(pairs)
	if err != nil {
		return nil, fmt.Errorf("invalid --param: %w", err)
	}

	params := make(fluentapi.Params, len(values))
	for key, value := range values {
		params[key] = value
	}

	return params, nil
}

// readData decodes the request body given inline or as a file ("-" reads
// stdin). Both JSON and YAML are accepted.
func readData(data, dataFile string, stdin io.Reader) (any, error) {
	if data != "" && dataFile != "" {
		return nil, constants.ErrDataFlagsExclusive
	}

	var raw []byte

	switch {
	case data != "":
		raw = []byte(data)
	case dataFile == "-":
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		raw = content
	case dataFile != "":
		content, err := os.ReadFile(filepath.Clean(dataFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read data file: %w", err)
		}

		raw = content
	default:
		return nil, constants.ErrDataRequired
	}

	var body any

	err := yaml.Unmarshal(raw, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request body: %w", err)
	}

	if body == nil {
		return nil, constants.ErrDataRequired
	}

	return body, nil
}

// decodeBody returns the JSON body as a generic value, or the raw text when
// it is not JSON.
func decodeBody(resp *fluentapi.Response) any {
	if resp == nil || len(resp.Body) == 0 {
		return nil
	}

	var value any

	err := json.Unmarshal(resp.Body, &value)
	if err != nil {
		return string(resp.Body)
	}

	return value
}

// writeOutput renders value in the configured output format.
func writeOutput(out io.Writer, value any) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	default:
		return writeTable(out, value)
	}
}

func writeTable(out io.Writer, value any) error {
	switch typed := value.(type) {
	case nil:
		return nil
	case []any:
		return writeListTable(out, typed)
	case map[string]any:
		return writeObjectTable(out, typed)
	default:
		_, err := fmt.Fprintln(out, formatCell(typed))

		return err
	}
}

func writeListTable(out io.Writer, items []any) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "No results")

		return err
	}

	columns := collectColumns(items)
	if len(columns) == 0 {
		table := tablewriter.NewWriter(out)
		table.Header("Value")

		for _, item := range items {
			_ = table.Append([]string{formatCell(item)})
		}

		return renderTable(table)
	}

	table := tablewriter.NewWriter(out)
	table.Header(toHeader(columns)...)

	for _, item := range items {
		record, _ := item.(map[string]any)

		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = formatCell(record[column])
		}

		_ = table.Append(row)
	}

	return renderTable(table)
}

func writeObjectTable(out io.Writer, record map[string]any) error {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, key := range keys {
		_ = table.Append([]string{key, formatCell(record[key])})
	}

	return renderTable(table)
}

func renderTable(table *tablewriter.Table) error {
	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// collectColumns returns the sorted union of keys over the object items.
func collectColumns(items []any) []string {
	seen := make(map[string]bool)

	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}

		for key := range record {
			seen[key] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	return columns
}

func toHeader(columns []string) []any {
	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	return header
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case map[string]any, []any:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return constants.NotAvailable
		}

		return string(encoded)
	default:
		return fmt.Sprint(typed)
	}
}
