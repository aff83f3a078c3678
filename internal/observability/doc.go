// Package observability provides logging, the local event log, metrics
// and task alerts for taskdeck. Events are persisted as JSON Lines and
// metrics are derived from them on demand; alerts are evaluated against the
// task list fetched from the backend.
package observability
