package commands

import (
	"io"
	"sort"

	"github.com/hashicorp/go-hclog"
)

// hclogLogger adapts hclog to the fluentapi.Logger interface.
type hclogLogger struct {
	logger hclog.Logger
}

func newLogger(output io.Writer, verbose bool) *hclogLogger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}

	return &hclogLogger{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:   "fluentapi",
			Level:  level,
			Output: output,
		}),
	}
}

func (l *hclogLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, flattenFields(fields)...)
}

func (l *hclogLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, flattenFields(fields)...)
}

func (l *hclogLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, flattenFields(fields)...)
}

func (l *hclogLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, flattenFields(fields)...)
}

// flattenFields turns a field map into hclog key/value pairs in key order.
func flattenFields(fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	args := make([]interface{}, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}

	return args
}
