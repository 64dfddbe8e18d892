package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests that the daemon begin monitoring.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Amberpipe.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests that the daemon halt monitoring.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Amberpipe.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Amberpipe.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Process runs the pipeline for one file and waits for the result.
func (c *Client) Process(path string) (*ProcessResponse, error) {
	var resp ProcessResponse
	if err := c.client.Call("Amberpipe.Process", ProcessRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History lists recorded runs.
func (c *Client) History(statuses ...string) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call("Amberpipe.History", HistoryRequest{Statuses: statuses}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearHistory removes finished runs.
func (c *Client) ClearHistory() (*ClearHistoryResponse, error) {
	var resp ClearHistoryResponse
	if err := c.client.Call("Amberpipe.ClearHistory", ClearHistoryRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BatchConfig reads the concurrency bound.
func (c *Client) BatchConfig() (*BatchConfigResponse, error) {
	var resp BatchConfigResponse
	if err := c.client.Call("Amberpipe.BatchConfig", BatchConfigRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetBatchConfig changes the concurrency bound.
func (c *Client) SetBatchConfig(limit int) (*SetBatchConfigResponse, error) {
	var resp SetBatchConfigResponse
	if err := c.client.Call("Amberpipe.SetBatchConfig", SetBatchConfigRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RuleList fetches the naming rule table.
func (c *Client) RuleList() (*RuleListResponse, error) {
	var resp RuleListResponse
	if err := c.client.Call("Amberpipe.RuleList", RuleListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RuleAdd installs or replaces a naming rule.
func (c *Client) RuleAdd(rule RuleSpec) (*RuleAddResponse, error) {
	var resp RuleAddResponse
	if err := c.client.Call("Amberpipe.RuleAdd", RuleAddRequest{Rule: rule}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RuleRemove deletes a naming rule.
func (c *Client) RuleRemove(prefix string) (*RuleRemoveResponse, error) {
	var resp RuleRemoveResponse
	if err := c.client.Call("Amberpipe.RuleRemove", RuleRemoveRequest{Prefix: prefix}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail reads daemon log lines.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Amberpipe.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Snapshot writes a metadata snapshot and returns its path.
func (c *Client) Snapshot() (*SnapshotResponse, error) {
	var resp SnapshotResponse
	if err := c.client.Call("Amberpipe.Snapshot", SnapshotRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
