package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// BatchFileEntry is one operation of a batch file.
type BatchFileEntry struct {
	ID     string         `yaml:"id"`
	Op     string         `yaml:"op"`
	Route  string         `yaml:"route"`
	Data   any            `yaml:"data,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`
}

// BatchSummary reports the outcome of one operation.
type BatchSummary struct {
	ID       string `json:"id"              yaml:"id"`
	Success  bool   `json:"success"         yaml:"success"`
	Status   int    `json:"status"          yaml:"status"`
	Duration string `json:"duration"        yaml:"duration"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewBatchCommand creates the batch command
func NewBatchCommand() *cobra.Command {
	var (
		concurrency int
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run a file of operations concurrently",
		Long: `Run the operations listed in a YAML or JSON file. Each entry names an
operation (get, create, update, replace, delete), a route and optional data
and params. Use - to read the file from stdin.`,
		Example: `  fluentapi batch ops.yml --concurrency 10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readBatchFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			client, _, err := createClient(cmd.Context())
			if err != nil {
				return err
			}
			defer closeClient(client)

			operations, err := buildOperations(client, entries)
			if err != nil {
				return err
			}

			executor := fluentapi.NewBatchExecutor(concurrency)
			if timeout > 0 {
				executor.SetTimeout(timeout)
			}

			results, batchErr := executor.Execute(cmd.Context(), operations)

			err = writeBatchResults(cmd.OutOrStdout(), results)
			if err != nil {
				return err
			}

			return batchErr
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultBatchConcurrency, "operations in flight at once")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultHTTPTimeout, "timeout per operation")

	return cmd
}

func readBatchFile(path string, stdin io.Reader) ([]BatchFileEntry, error) {
	var (
		raw []byte
		err error
	)

	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(filepath.Clean(path))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var entries []BatchFileEntry

	err = yaml.Unmarshal(raw, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}

	return entries, nil
}

func buildOperations(client *fluentapi.Client, entries []BatchFileEntry) ([]fluentapi.BatchOperation, error) {
	operations := make([]fluentapi.BatchOperation, 0, len(entries))

	for index, entry := range entries {
		id := entry.ID
		if id == "" {
			id = strconv.Itoa(index + 1)
		}

		endpoint, recordID, err := client.ResolveRecord(entry.Route)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", id, err)
		}

		operations = append(operations, fluentapi.BatchOperation{
			ID:       id,
			Op:       fluentapi.BatchOp(entry.Op),
			Endpoint: endpoint,
			RecordID: recordID,
			Data:     entry.Data,
			Params:   fluentapi.Params(entry.Params),
		})
	}

	return operations, nil
}

func summarize(results []fluentapi.BatchResult) []BatchSummary {
	summaries := make([]BatchSummary, 0, len(results))

	for _, result := range results {
		summary := BatchSummary{
			ID:       result.ID,
			Success:  result.Success,
			Duration: result.Duration.Round(time.Millisecond).String(),
		}

		if result.Response != nil {
			summary.Status = result.Response.StatusCode
		}

		if result.Error != nil {
			summary.Error = result.Error.Error()
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

func writeBatchResults(out io.Writer, results []fluentapi.BatchResult) error {
	summaries := summarize(results)

	switch viper.GetString("output") {
	case constants.FormatJSON, constants.FormatYAML:
		return writeOutput(out, summaries)
	default:
		table := tablewriter.NewWriter(out)
		table.Header("ID", "Result", "Status", "Duration", "Error")

		for _, summary := range summaries {
			outcome := "ok"
			if !summary.Success {
				outcome = "failed"
			}

			status := constants.NotAvailable
			if summary.Status != 0 {
				status = strconv.Itoa(summary.Status)
			}

			_ = table.Append([]string{summary.ID, outcome, status, summary.Duration, summary.Error})
		}

		return renderTable(table)
	}
}
