package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValues(t *testing.T) {
	values, err := parseKeyValues([]string{"a=1", " b =x=y", "a=2", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "2", "b": "x=y", "empty": ""}, values)

	_, err = parseKeyValues([]string{"novalue"})
	require.ErrorIs(t, err, constants.ErrInvalidKeyValue)

	_, err = parseKeyValues([]string{"=value"})
	require.ErrorIs(t, err, constants.ErrInvalidKeyValue)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"status=open", "page=2"})
	require.NoError(t, err)
	assert.Equal(t, fluentapi.Params{"status": "open", "page": "2"}, params)

	params, err = parseParams(nil)
	require.NoError(t, err)
	assert.NotNil(t, params)
	assert.Empty(t, params)
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"x-tenant=acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme", headers.Get("X-Tenant"))

	_, err = parseHeaders([]string{"broken"})
	require.ErrorIs(t, err, constants.ErrInvalidKeyValue)
}

func TestReadData(t *testing.T) {
	t.Run("inline JSON", func(t *testing.T) {
		body, err := readData(`{"name": "ada", "age": 36}`, "", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "ada", "age": 36}, body)
	})

	t.Run("YAML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "body.yml")
		require.NoError(t, os.WriteFile(path, []byte("name: ada\ntags: [a, b]\n"), 0o600))

		body, err := readData("", path, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "ada", "tags": []any{"a", "b"}}, body)
	})

	t.Run("stdin", func(t *testing.T) {
		body, err := readData("", "-", strings.NewReader(`{"id": "x"}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "x"}, body)
	})

	t.Run("missing body", func(t *testing.T) {
		_, err := readData("", "", nil)
		require.ErrorIs(t, err, constants.ErrDataRequired)
	})

	t.Run("exclusive flags", func(t *testing.T) {
		_, err := readData("{}", "body.yml", nil)
		require.ErrorIs(t, err, constants.ErrDataFlagsExclusive)
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := readData("", filepath.Join(t.TempDir(), "missing.json"), nil)
		require.Error(t, err)
	})
}

func TestDecodeBody(t *testing.T) {
	assert.Nil(t, decodeBody(nil))
	assert.Nil(t, decodeBody(&fluentapi.Response{}))
	assert.Equal(t, map[string]any{"id": float64(1)}, decodeBody(&fluentapi.Response{Body: []byte(`{"id":1}`)}))
	assert.Equal(t, "plain text", decodeBody(&fluentapi.Response{Body: []byte("plain text")}))
}

func TestWriteOutput(t *testing.T) {
	value := []any{
		map[string]any{"id": float64(1), "name": "ada"},
		map[string]any{"id": float64(2), "tags": []any{"x"}},
	}

	t.Run("json", func(t *testing.T) {
		useSettings(t, map[string]any{"output": constants.FormatJSON})

		var out bytes.Buffer

		require.NoError(t, writeOutput(&out, value))
		assert.JSONEq(t, `[{"id":1,"name":"ada"},{"id":2,"tags":["x"]}]`, out.String())
	})

	t.Run("yaml", func(t *testing.T) {
		useSettings(t, map[string]any{"output": constants.FormatYAML})

		var out bytes.Buffer

		require.NoError(t, writeOutput(&out, map[string]any{"name": "ada"}))
		assert.Equal(t, "name: ada\n", out.String())
	})

	t.Run("table of records", func(t *testing.T) {
		useSettings(t, map[string]any{"output": constants.FormatTable})

		var out bytes.Buffer

		require.NoError(t, writeOutput(&out, value))

		rendered := strings.ToUpper(out.String())
		assert.Contains(t, rendered, "ID")
		assert.Contains(t, rendered, "NAME")
		assert.Contains(t, rendered, "TAGS")
		assert.Contains(t, out.String(), "ada")
		assert.Contains(t, out.String(), `["x"]`)
	})

	t.Run("table of an object", func(t *testing.T) {
		useSettings(t, map[string]any{"output": constants.FormatTable})

		var out bytes.Buffer

		require.NoError(t, writeOutput(&out, map[string]any{"name": "ada"}))
		assert.Contains(t, out.String(), "ada")
	})

	t.Run("empty list", func(t *testing.T) {
		useSettings(t, nil)

		var out bytes.Buffer

		require.NoError(t, writeOutput(&out, []any{}))
		assert.Equal(t, "No results\n", out.String())
	})

	t.Run("scalar", func(t *testing.T) {
		useSettings(t, nil)

		var out bytes.Buffer

		require.NoError(t, writeOutput(&out, "plain text"))
		assert.Equal(t, "plain text\n", out.String())
	})
}

func TestFormatCell(t *testing.T) {
	assert.Empty(t, formatCell(nil))
	assert.Equal(t, "ada", formatCell("ada"))
	assert.Equal(t, "42", formatCell(float64(42)))
	assert.Equal(t, "true", formatCell(true))
	assert.JSONEq(t, `{"a":1}`, formatCell(map[string]any{"a": 1}))
}
