// Package timeouts defines shared timeout constants for the registry process.
package timeouts

import "time"

// TelemetryShutdown caps how long exporters may flush on exit.
const TelemetryShutdown = 5 * time.Second

// SQLiteBusy is how long a SQLite connection waits on a locked database.
const SQLiteBusy = 5 * time.Second
