package constants

import "errors"

// Definition and configuration errors.
var (
	ErrNoDefinition = errors.New("no API definition configured, use --definition or FLUENTAPI_DEFINITION")
	ErrNoBaseURL    = errors.New("no base URL configured, use --base-url or set baseURL in the definition")
	ErrNoNATSURL    = errors.New("the nats cache needs --nats-url or FLUENTAPI_NATS_URL")
)

// Command input errors.
var (
	ErrInvalidKeyValue    = errors.New("expected key=value")
	ErrDataRequired       = errors.New("request body is required (use --data or --data-file)")
	ErrDataFlagsExclusive = errors.New("--data and --data-file are mutually exclusive")
	ErrRecordIDRequired   = errors.New("route must end with a record id, e.g. users:42")
	ErrRecordIDNotAllowed = errors.New("route must end with a collection, e.g. users:42.orders")
)
