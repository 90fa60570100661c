package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/fivetwenty-io/fluentapi/pkg/apiclient"
	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const requestIDHeader = "X-Request-Id"

// loadDefinition reads the definition named by --definition.
func loadDefinition() (*fluentapi.Definition, error) {
	path := viper.GetString("definition")
	if path == "" {
		return nil, constants.ErrNoDefinition
	}

	return fluentapi.LoadDefinition(path)
}

// buildConfig assembles the client configuration from flags, environment
// and the config file.
func buildConfig(definition *fluentapi.Definition) (*fluentapi.Config, error) {
	config := &fluentapi.Config{
		BaseURL:  viper.GetString("base-url"),
		RetryMax: viper.GetInt("retry-max"),
		Debug:    viper.GetBool("verbose"),
		Logger:   newLogger(os.Stderr, viper.GetBool("verbose")),
	}

	if config.BaseURL == "" && definition != nil {
		config.BaseURL = definition.BaseURL
	}

	if config.BaseURL == "" {
		return nil, constants.ErrNoBaseURL
	}

	token, err := resolveToken()
	if err != nil {
		return nil, err
	}

	config.AccessToken = token

	headers, err := parseHeaders(viper.GetStringSlice("header"))
	if err != nil {
		return nil, err
	}

	config.Headers = headers

	if viper.GetBool("request-id") {
		config.RequestIDHeader = requestIDHeader
	}

	cache, err := buildCacheConfig()
	if err != nil {
		return nil, err
	}

	config.Cache = cache

	return config, nil
}

func resolveToken() (string, error) {
	token := viper.GetString("token")
	if token != "" || !viper.GetBool("ask-token") {
		return token, nil
	}

	fmt.Fprint(os.Stderr, "Token: ")

	byteToken, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	fmt.Fprintln(os.Stderr)

	return strings.TrimSpace(string(byteToken)), nil
}

func parseHeaders(pairs []string) (http.Header, error) {
	values, err := parseKeyValues(pairs)
	if err != nil {
		return nil, fmt.Errorf("invalid --header: %w", err)
	}

	headers := make(http.Header, len(values))
	for key, value := range values {
		headers.Set(key, value)
	}

	return headers, nil
}

func buildCacheConfig() (*fluentapi.CacheConfig, error) {
	cacheType, err := fluentapi.ParseCacheType(viper.GetString("cache"))
	if err != nil {
		return nil, err
	}

	if cacheType == fluentapi.CacheTypeNone {
		return &fluentapi.CacheConfig{Type: fluentapi.CacheTypeNone}, nil
	}

	builder := fluentapi.NewCacheBuilder().
		WithType(cacheType).
		WithMemoryConfig(constants.DefaultCacheSize).
		WithTTL(constants.DefaultCacheTTL)

	if cacheType == fluentapi.CacheTypeNATS || cacheType == fluentapi.CacheTypeTiered {
		natsURL := viper.GetString("nats-url")
		if natsURL == "" {
			return nil, constants.ErrNoNATSURL
		}

		builder.WithNATS(natsURL, constants.DefaultNATSBucket)
	}

	return builder.Config(), nil
}

// createClient builds the endpoint tree for the configured definition. The
// returned config carries the normalized base URL.
func createClient(ctx context.Context) (*fluentapi.Client, *fluentapi.Config, error) {
	definition, err := loadDefinition()
	if err != nil {
		return nil, nil, err
	}

	config, err := buildConfig(definition)
	if err != nil {
		return nil, nil, err
	}

	client, err := apiclient.FromDefinition(ctx, config, definition)
	if err != nil {
		return nil, nil, err
	}

	return client, config, nil
}

// resolveRoute resolves args[0] against a fresh client and returns the target
// endpoint and the record id. An id given as args[1] replaces the id of the
// final route step. The caller closes the returned client.
func resolveRoute(ctx context.Context, args []string) (*fluentapi.Client, fluentapi.Endpoint, any, error) {
	client, _, err := createClient(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	endpoint, id, err := resolveWith(client, args)
	if err != nil {
		closeClient(client)

		return nil, nil, nil, err
	}

	return client, endpoint, id, nil
}

func closeClient(client *fluentapi.Client) {
	_ = client.Close()
}

func resolveWith(client *fluentapi.Client, args []string) (fluentapi.Endpoint, any, error) {
	endpoint, id, err := client.ResolveRecord(args[0])
	if err != nil {
		return nil, nil, err
	}

	if len(args) > 1 && args[1] != "" {
		id = args[1]
	}

	return endpoint, id, nil
}

// recordPath is the request path of a collection, or of a record when id is set.
func recordPath(endpoint fluentapi.Endpoint, id any) string {
	if id == nil {
		return "/" + endpoint.URL()
	}

	return fmt.Sprintf("/%s/%v", endpoint.URL(), id)
}
