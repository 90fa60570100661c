// Package apiclient is the main entry point for building a fluentapi client
// that talks HTTP.
//
// It layers configuration, the retrying HTTP transport, bearer
// authentication, rate limiting and optional response caching underneath the
// endpoint tree built by the fluentapi package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/fluentapi/pkg/apiclient"
//	  "github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := apiclient.New(ctx, &fluentapi.Config{
//	    BaseURL:     "api.example.com",
//	    URLPrefix:   "v1",
//	    AccessToken: "eyJhbGciOi...",
//	  }, []fluentapi.Declaration{{Property: "users"}})
//	  if err != nil { log.Fatal(err) }
//
//	  resp, err := cli.Endpoint("users").GetOne(ctx, 42, nil) // GET https://api.example.com/v1/users/42
//	  if err != nil { log.Fatal(err) }
//	  _ = resp
//	}
//
// A definition file can carry the base URL, prefix and declarations instead:
//
//	def, err := fluentapi.LoadDefinition("api.yml")
//	if err != nil { log.Fatal(err) }
//
//	cli, err := apiclient.FromDefinition(ctx, &fluentapi.Config{}, def)
package apiclient
