// Package amoclient provides the primary entry point for constructing an
// amoCRM API client that implements the amocrm.Client interface.
//
// It layers configuration, the HTTP transport, OAuth2 token handling, rate
// limiting and request interceptors on top of the models defined in the
// amocrm package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/amocrm-client/pkg/amoclient"
//	  "github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // A long-lived token from the integration settings:
//	  cli, err := amoclient.NewWithToken(ctx, "example", "eyJ0eXAiOi...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or an OAuth2 integration that refreshes its own tokens:
//	  cli, err = amoclient.New(ctx, &amocrm.Config{
//	    BaseURL:      "https://example.amocrm.ru",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    RefreshToken: "def502...",
//	    RateLimit:    amocrm.DefaultRateLimit,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  leads, err := cli.Lead().List(ctx, amocrm.Current, &amocrm.ListParams{Limit: 50})
//	  if err != nil { log.Fatal(err) }
//	  _ = leads
//	}
//
// # Custom transports
//
// NewWithRequester accepts any amocrm.Requester, which is how tests and
// callers with their own HTTP stack plug in.
package amoclient
