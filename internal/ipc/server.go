package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sort"
	"sync"

	"log/slog"

	"amberpipe/internal/daemon"
	"amberpipe/internal/history"
	"amberpipe/internal/logging"
	"amberpipe/internal/logs"
	"amberpipe/internal/naming"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithComponent(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Amberpipe", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "monitoring started"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status, err := s.daemon.Status(s.ctx)
	if err != nil {
		return err
	}
	resp.Status = status
	return nil
}

func (s *service) Process(req ProcessRequest, resp *ProcessResponse) error {
	if req.Path == "" {
		return errors.New("path is required")
	}
	run, err := s.daemon.Manager().ProcessFile(s.ctx, req.Path)
	if err != nil {
		return err
	}
	resp.Run = run
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	statuses := make([]history.Status, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		statuses = append(statuses, history.Status(status))
	}
	runs, err := s.daemon.Manager().History(s.ctx, statuses...)
	if err != nil {
		return err
	}
	resp.Runs = runs
	return nil
}

func (s *service) ClearHistory(_ ClearHistoryRequest, resp *ClearHistoryResponse) error {
	removed, err := s.daemon.Manager().ClearHistory(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) BatchConfig(_ BatchConfigRequest, resp *BatchConfigResponse) error {
	snapshot := s.daemon.Manager().BatchConfig()
	resp.Limit = snapshot.Limit
	resp.Running = snapshot.Running
	return nil
}

func (s *service) SetBatchConfig(req SetBatchConfigRequest, resp *SetBatchConfigResponse) error {
	if err := s.daemon.Manager().SetBatchConfig(req.Limit); err != nil {
		return err
	}
	resp.Limit = req.Limit
	return nil
}

func (s *service) RuleList(_ RuleListRequest, resp *RuleListResponse) error {
	rules := s.daemon.Manager().Rules()
	prefixes := make([]string, 0, len(rules))
	for prefix := range rules {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	resp.Rules = make([]RuleSpec, 0, len(rules))
	for _, prefix := range prefixes {
		rule := rules[prefix]
		steps := make([]string, 0, len(rule.Steps))
		for _, step := range rule.Steps {
			steps = append(steps, step.String())
		}
		resp.Rules = append(resp.Rules, RuleSpec{Prefix: prefix, Steps: steps, Category: rule.Category})
	}
	return nil
}

func (s *service) RuleAdd(req RuleAddRequest, resp *RuleAddResponse) error {
	if req.Rule.Prefix == "" {
		return errors.New("rule prefix is required")
	}
	steps := make([]naming.Step, 0, len(req.Rule.Steps))
	for _, raw := range req.Rule.Steps {
		step, ok := naming.ParseStep(raw)
		if !ok {
			return fmt.Errorf("unknown step %q", raw)
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return errors.New("rule needs at least one step")
	}
	s.daemon.Manager().AddRule(req.Rule.Prefix, steps, req.Rule.Category)
	resp.Added = true
	return nil
}

func (s *service) RuleRemove(req RuleRemoveRequest, resp *RuleRemoveResponse) error {
	if req.Prefix == "" {
		return errors.New("rule prefix is required")
	}
	s.daemon.Manager().RemoveRule(req.Prefix)
	resp.Removed = true
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	var result logs.TailResult
	var err error
	if req.Offset < 0 {
		result, err = logs.Last(s.daemon.LogPath(), req.Limit)
	} else {
		result, err = logs.Since(s.daemon.LogPath(), req.Offset)
	}
	if err != nil {
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) Snapshot(_ SnapshotRequest, resp *SnapshotResponse) error {
	path, err := s.daemon.Manager().GenerateMetadataSnapshot(s.ctx)
	if err != nil {
		return err
	}
	resp.Path = path
	return nil
}
