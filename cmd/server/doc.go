// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package main is the entry point for the Reelmatch server.

Reelmatch indexes an IMDb Top 1000 style CSV and answers "movies like this
one" queries by TF-IDF cosine similarity over genre, director and cast. It
also serves catalog analytics computed in DuckDB.

# Application Architecture

	RootSupervisor ("reelmatch")
	├── DataSupervisor ("data-layer")
	│   └── Reload service (file watch, poll, manual trigger)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Event router (watermill gochannel)
	│   └── WebSocket hub
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi)

Startup order:

 1. Configuration (koanf) and logging (zerolog)
 2. DuckDB loader and the recommendation engine
 3. Event bus, websocket hub and the relay between them
 4. Initial synchronous dataset load
 5. HTTP server and the supervisor tree

A dataset missing required columns stops startup. Any other load failure
is logged and the server starts unready; /api/v1/health/ready answers 503
until a snapshot is installed.

# Configuration

	DATASET_PATH=imdb_top_1000.csv   # CSV to index
	DATASET_WATCH=true               # fsnotify on the file's directory
	DATASET_POLL_INTERVAL=30s        # mtime/size poll, 0 disables
	DATASET_MIN_RELOAD_INTERVAL=5s   # rebuild throttle
	RECOMMEND_DEFAULT_K=5
	RECOMMEND_MAX_K=50
	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json

A YAML file is read from CONFIG_PATH or config.yaml when present.

# Signal Handling

SIGINT and SIGTERM cancel the tree. The HTTP server drains for
server.shutdown_timeout and services still running afterwards are reported.
*/
package main
