// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package supervisor runs the long-lived services of the server under a suture
v4 supervisor tree.

	root ("reelmatch")
	├── data-layer
	│   └── reload-service
	├── messaging-layer
	│   ├── event-router
	│   └── websocket-hub
	└── api-layer
	    └── http-server

Each layer counts failures on its own. A dataset that keeps failing to
parse backs off inside data-layer while the API continues to serve the
snapshot that was installed last.

Supervisor events (service start, failure, backoff) go through the
sutureslog hook into the process's zerolog logger:

	slogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(reloadSvc)
	tree.AddMessagingService(router)
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 15*time.Second))

	errCh := tree.ServeBackground(ctx)

A service returning an error is restarted; returning nil stops it for good.
Services must return promptly once ctx is canceled. If they do not,
UnstoppedServiceReport lists the stragglers after shutdown.

The DuckDB connection is not a service. It is opened before the tree starts
and closed after the tree returns.
*/
package supervisor
