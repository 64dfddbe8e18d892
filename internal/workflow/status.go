package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"amberpipe/internal/gate"
	"amberpipe/internal/history"
	"amberpipe/internal/logging"
)

// QueueEntry is one in-flight run in a status report.
type QueueEntry struct {
	RunID     string    `json:"run_id"`
	Filename  string    `json:"filename"`
	Category  string    `json:"category"`
	StartedAt time.Time `json:"started_at"`
}

// Status is the live view of the manager.
type Status struct {
	Running     bool          `json:"running"`
	Queue       []QueueEntry  `json:"queue"`
	Processed   int           `json:"processed"`
	Failed      int           `json:"failed"`
	TotalFiles  int           `json:"total_files"`
	SuccessRate float64       `json:"success_rate"`
	BatchConfig gate.Snapshot `json:"batch_config"`
}

// Status reports monitoring state, the in-flight queue, and aggregate
// counters from the history store.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	stats, err := m.store.Stats(ctx)
	if err != nil {
		return Status{}, err
	}

	m.mu.Lock()
	running := m.running
	queue := make([]QueueEntry, 0, len(m.active))
	for _, run := range m.active {
		queue = append(queue, QueueEntry{
			RunID:     run.ID,
			Filename:  run.Filename,
			Category:  run.Category,
			StartedAt: run.StartedAt,
		})
	}
	m.mu.Unlock()

	sort.Slice(queue, func(i, j int) bool { return queue[i].StartedAt.Before(queue[j].StartedAt) })

	return Status{
		Running:     running,
		Queue:       queue,
		Processed:   stats.Completed,
		Failed:      stats.Failed,
		TotalFiles:  stats.Total,
		SuccessRate: stats.SuccessRate(),
		BatchConfig: m.gate.Snapshot(),
	}, nil
}

type metadataSnapshot struct {
	GeneratedTime string         `json:"generated_time"`
	Stats         history.Stats  `json:"stats"`
	SuccessRate   float64        `json:"success_rate"`
	Runs          []*history.Run `json:"runs"`
}

// GenerateMetadataSnapshot writes a timestamped summary of every recorded
// run into the staging directory and returns its path.
func (m *Manager) GenerateMetadataSnapshot(ctx context.Context) (string, error) {
	stats, err := m.store.Stats(ctx)
	if err != nil {
		return "", err
	}
	runs, err := m.store.List(ctx)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	snapshot := metadataSnapshot{
		GeneratedTime: now.Format(time.RFC3339),
		Stats:         stats,
		SuccessRate:   stats.SuccessRate(),
		Runs:          runs,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(m.cfg.Paths.StagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	path := filepath.Join(m.cfg.Paths.StagingDir, fmt.Sprintf("metadata_snapshot_%s.json", now.Format("20060102T150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	m.logger.Info("metadata snapshot written",
		logging.String("path", path),
		logging.Int("runs", len(runs)))
	return path, nil
}
