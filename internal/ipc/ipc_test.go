package ipc_test

import (
	"context"
	"image"
	"image/color"
	"testing"

	"amberpipe/internal/daemon"
	"amberpipe/internal/history"
	"amberpipe/internal/ipc"
	"amberpipe/internal/testsupport"
)

func startServer(t *testing.T) (*ipc.Client, *daemon.Daemon, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon: %v", err)
	}
	t.Cleanup(d.Close)

	server, err := ipc.NewServer(context.Background(), cfg.Paths.SocketPath, d, nil)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, d, cfg.Paths.WatchDir
}

func TestStartStatusStopOverSocket(t *testing.T) {
	client, _, _ := startServer(t)

	start, err := client.Start()
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !start.Started {
		t.Fatalf("start = %+v", start)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Status.Running {
		t.Fatalf("status = %+v", status.Status)
	}

	stop, err := client.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !stop.Stopped {
		t.Fatalf("stop = %+v", stop)
	}
}

func TestProcessAndHistoryOverSocket(t *testing.T) {
	client, _, watchDir := startServer(t)

	sprite := testsupport.SpriteImage(64, 64, image.Rect(10, 10, 50, 50), color.NRGBA{G: 180, A: 255})
	path := testsupport.WriteImage(t, watchDir, "UI_Gem.png", sprite)

	proc, err := client.Process(path)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.Run.Status != history.StatusCompleted {
		t.Fatalf("run = %+v", proc.Run)
	}

	hist, err := client.History()
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist.Runs) != 1 || hist.Runs[0].Filename != "UI_Gem.png" {
		t.Fatalf("history = %+v", hist.Runs)
	}

	cleared, err := client.ClearHistory()
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.Removed != 1 {
		t.Fatalf("removed = %d", cleared.Removed)
	}
}

func TestBatchConfigOverSocket(t *testing.T) {
	client, _, _ := startServer(t)

	cfg, err := client.BatchConfig()
	if err != nil {
		t.Fatalf("batch config: %v", err)
	}
	if cfg.Limit != 4 {
		t.Fatalf("default limit = %d", cfg.Limit)
	}

	if _, err := client.SetBatchConfig(6); err != nil {
		t.Fatalf("set: %v", err)
	}
	cfg, err = client.BatchConfig()
	if err != nil {
		t.Fatalf("batch config: %v", err)
	}
	if cfg.Limit != 6 {
		t.Fatalf("limit = %d, want 6", cfg.Limit)
	}

	if _, err := client.SetBatchConfig(42); err == nil {
		t.Fatal("accepted out-of-range limit")
	}
}

func TestRuleAdministrationOverSocket(t *testing.T) {
	client, _, _ := startServer(t)

	list, err := client.RuleList()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Rules) != 4 {
		t.Fatalf("default rules = %d, want 4", len(list.Rules))
	}

	if _, err := client.RuleAdd(ipc.RuleSpec{Prefix: "FX", Steps: []string{"sharpen"}, Category: "Effect"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := client.RuleAdd(ipc.RuleSpec{Prefix: "BAD", Steps: []string{"nope"}}); err == nil {
		t.Fatal("accepted unknown step")
	}

	list, err = client.RuleList()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Rules) != 5 {
		t.Fatalf("rules after add = %d", len(list.Rules))
	}

	if _, err := client.RuleRemove("FX"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	list, err = client.RuleList()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Rules) != 4 {
		t.Fatalf("rules after remove = %d", len(list.Rules))
	}
}

func TestSnapshotOverSocket(t *testing.T) {
	client, _, _ := startServer(t)

	snap, err := client.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Path == "" {
		t.Fatal("empty snapshot path")
	}
}
