// Package ipc exposes daemon control via JSON-RPC over a Unix domain
// socket. The CLI is its only intended client; every operation maps to one
// CLI command.
package ipc

import (
	"amberpipe/internal/daemon"
	"amberpipe/internal/history"
)

// StartRequest begins directory monitoring.
type StartRequest struct{}

// StartResponse indicates whether monitoring was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest halts directory monitoring.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches combined daemon and workflow status.
type StatusRequest struct{}

// StatusResponse carries the daemon status snapshot.
type StatusResponse struct {
	Status daemon.Status `json:"status"`
}

// ProcessRequest runs the pipeline for a single file immediately.
type ProcessRequest struct {
	Path string `json:"path"`
}

// ProcessResponse carries the finished run.
type ProcessResponse struct {
	Run *history.Run `json:"run"`
}

// HistoryRequest lists recorded runs, optionally filtered by status.
type HistoryRequest struct {
	Statuses []string `json:"statuses"`
}

// HistoryResponse carries runs newest first.
type HistoryResponse struct {
	Runs []*history.Run `json:"runs"`
}

// ClearHistoryRequest removes finished runs.
type ClearHistoryRequest struct{}

// ClearHistoryResponse reports how many runs were removed.
type ClearHistoryResponse struct {
	Removed int64 `json:"removed"`
}

// BatchConfigRequest reads the concurrency bound.
type BatchConfigRequest struct{}

// BatchConfigResponse reports bound and occupancy.
type BatchConfigResponse struct {
	Limit   int `json:"limit"`
	Running int `json:"running"`
}

// SetBatchConfigRequest changes the concurrency bound.
type SetBatchConfigRequest struct {
	Limit int `json:"limit"`
}

// SetBatchConfigResponse echoes the applied bound.
type SetBatchConfigResponse struct {
	Limit int `json:"limit"`
}

// RuleSpec is the wire form of one naming rule.
type RuleSpec struct {
	Prefix   string   `json:"prefix"`
	Steps    []string `json:"steps"`
	Category string   `json:"category"`
}

// RuleListRequest lists the rule table.
type RuleListRequest struct{}

// RuleListResponse carries rules sorted by prefix.
type RuleListResponse struct {
	Rules []RuleSpec `json:"rules"`
}

// RuleAddRequest installs or replaces a rule.
type RuleAddRequest struct {
	Rule RuleSpec `json:"rule"`
}

// RuleAddResponse acknowledges the installation.
type RuleAddResponse struct {
	Added bool `json:"added"`
}

// RuleRemoveRequest deletes a rule by prefix.
type RuleRemoveRequest struct {
	Prefix string `json:"prefix"`
}

// RuleRemoveResponse acknowledges the removal.
type RuleRemoveResponse struct {
	Removed bool `json:"removed"`
}

// LogTailRequest reads daemon log lines. A negative Offset asks for the
// last Limit lines; otherwise lines after Offset are returned.
type LogTailRequest struct {
	Offset int64 `json:"offset"`
	Limit  int   `json:"limit"`
}

// LogTailResponse carries log lines and the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// SnapshotRequest writes a metadata snapshot file.
type SnapshotRequest struct{}

// SnapshotResponse carries the snapshot path.
type SnapshotResponse struct {
	Path string `json:"path"`
}
