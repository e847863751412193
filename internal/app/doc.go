// Package app assembles the HTTP server: configuration, logging,
// metrics, the dataset service, and the router with its middleware
// chain. Entry points construct an Application and call Run, which
// blocks until the context is cancelled and then shuts the server
// down gracefully.
package app
