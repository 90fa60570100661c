// Package fluentapi builds hierarchical REST API clients from declarations.
//
// # Overview
//
// A Declaration names a property, an optional URL segment and its child
// declarations. New turns a list of declarations into a Client whose
// top-level endpoints are built eagerly; children are materialized each time
// they are reached, so a path like users/1/orders/2/items is walked with
// Enter and Child:
//
//	client, err := fluentapi.New(transport, "v1", []fluentapi.Declaration{
//	  {Property: "users", Endpoints: []fluentapi.Declaration{
//	    {Property: "orders", Endpoints: []fluentapi.Declaration{
//	      {Property: "items"},
//	    }},
//	  }},
//	})
//	if err != nil { log.Fatal(err) }
//
//	orders, err := client.Endpoint("users").Child("orders", 1)
//	if err != nil { log.Fatal(err) }
//
//	items, err := orders.Child("items", 2)
//	if err != nil { log.Fatal(err) }
//
//	resp, err := items.GetAll(ctx, nil) // GET /v1/users/1/orders/2/items
//
// Enter returns all children of a record at once. Resolve accepts the same
// walk as a route string, for example "users:1.orders:2.items".
//
// # Endpoints
//
// Every endpoint exposes raw verbs (DoGet, DoPost, ...) and CRUD helpers
// (GetAll, GetOne, Create, Read, Update, Replace, Delete). Results come back
// from the Transport unchanged. RequestOption values overlay the synthesized
// options, which is how query params, headers and timeouts reach a call.
//
// Custom endpoint behavior is attached through a Factory on the declaration
// or a class name resolved by a Registry. Factories wrap the BaseEndpoint
// they are given and override whichever methods they need.
//
// # Errors
//
// Malformed declarations fail construction with a ConfigurationError that
// quotes the offending declaration as JSON. The HTTP transport reports
// rejected statuses as StatusError; IsNotFound, IsUnauthorized and
// IsForbidden branch on the common cases.
//
// # Interceptors and caching
//
// InterceptorChain carries request and response hooks (logging, headers,
// auth, rate limiting, metrics, circuit breaking). CachingTransport serves
// repeated GETs from a Cache backed by memory or a NATS JetStream KV bucket.
package fluentapi
