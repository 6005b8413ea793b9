// Package qapi provides types, interfaces, and helpers for working with the
// Querio API.
//
// # Overview
//
// The qapi package defines the domain types (e.g., Project, Datasource,
// QueryProgram, Job) and the interfaces for resource-oriented clients (e.g.,
// ProjectsClient, JobsClient). A concrete implementation of these clients is
// provided by the qclient package, which wires configuration, transport, and
// authentication. Most consumers should import qclient to construct a client
// and then interact with the resource client interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/querio-io/qapi/pkg/qapi"
//	  "github.com/querio-io/qapi/pkg/qclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := qclient.New(&qapi.Config{
//	    APIEndpoint: "https://api.querio.io",
//	    APIKey:      "qio_...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // List the first page of projects
//	  projects, err := cli.Projects().List(ctx, qapi.NewQueryParams().WithPerPage(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = projects
//	}
//
// # Errors
//
// API errors are represented by APIError, classified into a closed set of
// ErrorKind values from the HTTP status code. Helpers such as IsNotFound,
// IsValidation, and IsRateLimit make it easy to branch on common cases
// without inspecting status codes directly.
//
// # Streaming
//
// Long-running operations (program generation, streamed execution, chat)
// return a StreamOrResult holding either a live server-sent event stream or
// an already resolved Result. ProcessStreamOrResult aggregates either shape
// into a final Result, invoking optional StreamCallbacks along the way.
//
// # Polling
//
// Poll drives any probe function on an exponential backoff schedule until an
// end condition is met, a timeout elapses, or the context is cancelled.
// JobsClient.PollUntilComplete builds on it to wait for asynchronous jobs.
//
// # Interceptors and caching
//
// InterceptorChain supports request/response hooks for logging, metrics, and
// client-side rate limiting. The Cache interface with memory and NATS
// key-value backends lets GET-heavy workloads skip repeated fetches.
package qapi
