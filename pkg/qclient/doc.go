// Package qclient provides the primary entry point for constructing a Querio
// API client that implements the qapi.Client interface.
//
// It layers configuration, HTTP transport, and authentication on top of the
// resource interfaces and types defined in the qapi package. Most applications
// should import qclient to build a client, then use the returned qapi.Client
// to access resource-specific clients, for example Projects(), QueryPrograms(),
// Chat(), etc.
//
// Quick start
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
//
//	  cli, err := qclient.New(&qapi.Config{
//	    APIEndpoint: "https://api.querio.io",
//	    APIKey:      "qio_...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Use resource clients via the qapi.Client interface
//	  projects, err := cli.Projects().List(ctx, qapi.NewQueryParams().WithPerPage(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = projects
//	}
//
// # Streaming
//
// Generate, ExecuteStream, and Chat Stream return a qapi.StreamOrResult whose
// stream carries server-sent events. Aggregate it with
// qapi.ProcessStreamOrResult, optionally passing callbacks to observe events
// as they arrive.
//
// # Helpers
//
// The package also provides the convenience constructor NewWithAPIKey that
// wraps New with the appropriate configuration.
package qclient
