package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/buildtrack/internal/common"
)

// RemoteError is a failed remote primitive. Message is the upstream error text.
type RemoteError struct {
	Err     error
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// RPCConfig configures an RPCClient.
type RPCConfig struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
}

// RPCClient is a Store that calls the backend function over HTTP.
type RPCClient struct {
	http     *http.Client
	logger   *slog.Logger
	endpoint string
	apiKey   string
}

// NewRPCClient creates a client for the function at cfg.Endpoint.
func NewRPCClient(cfg RPCConfig) (*RPCClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: remote endpoint", common.ErrMissingConfig)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &RPCClient{
		http:     client,
		logger:   common.OrDefault(cfg.Logger),
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
	}, nil
}

func (c *RPCClient) call(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", req.Action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", req.Action, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("apikey", c.apiKey)
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("calling remote function", "action", req.Action, "sheet_type", req.SheetType)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &RemoteError{Action: req.Action, Message: err.Error(), Err: fmt.Errorf("%w: %w", common.ErrUnreachable, err)}
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &RemoteError{Action: req.Action, Message: err.Error(), Err: fmt.Errorf("%w: %w", common.ErrUnreachable, err)}
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		remoteErr := &RemoteError{
			Action:  req.Action,
			Message: fmt.Sprintf("unexpected response (HTTP %d)", httpResp.StatusCode),
			Err:     err,
		}
		if httpResp.StatusCode == http.StatusTooManyRequests {
			remoteErr.Err = common.ErrRateLimit
		} else if httpResp.StatusCode >= http.StatusInternalServerError {
			remoteErr.Err = fmt.Errorf("%w: %w", common.ErrUnreachable, err)
		}
		return nil, remoteErr
	}

	if !resp.Success {
		remoteErr := &RemoteError{Action: req.Action, Message: resp.Error}
		if httpResp.StatusCode == http.StatusTooManyRequests {
			remoteErr.Err = common.ErrRateLimit
		}
		return nil, remoteErr
	}

	return &resp, nil
}

func (c *RPCClient) send(ctx context.Context, req Request) error {
	_, err := c.call(ctx, req)
	return err
}

// Provision implements Store.
func (c *RPCClient) Provision(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, Request{Action: ActionCreate})
	if err != nil {
		return "", err
	}
	if resp.SpreadsheetID == "" {
		return "", &RemoteError{Action: ActionCreate, Message: "response carried no spreadsheetId"}
	}
	return resp.SpreadsheetID, nil
}

// EnsureSchema implements Store.
func (c *RPCClient) EnsureSchema(ctx context.Context, spreadsheetID string) error {
	return c.send(ctx, Request{Action: ActionInitialize, SpreadsheetID: spreadsheetID})
}

// ReadCollection implements Store.
func (c *RPCClient) ReadCollection(ctx context.Context, spreadsheetID string, col Collection) ([]Record, error) {
	resp, err := c.call(ctx, Request{Action: ActionRead, SpreadsheetID: spreadsheetID, SheetType: string(col)})
	if err != nil {
		return nil, err
	}

	var records []Record
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &records); err != nil {
			return nil, &RemoteError{Action: ActionRead, Message: "malformed data", Err: err}
		}
	}
	return records, nil
}

// ReadAll implements Store.
func (c *RPCClient) ReadAll(ctx context.Context, spreadsheetID string) (Snapshot, error) {
	resp, err := c.call(ctx, Request{Action: ActionReadAll, SpreadsheetID: spreadsheetID})
	if err != nil {
		return nil, err
	}

	var byKey map[string][]Record
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &byKey); err != nil {
			return nil, &RemoteError{Action: ActionReadAll, Message: "malformed data", Err: err}
		}
	}

	snap := make(Snapshot, len(byKey))
	for key, records := range byKey {
		col := Collection(key)
		if !col.Valid() {
			c.logger.Debug("ignoring unknown collection in readAll", "collection", key)
			continue
		}
		snap[col] = records
	}
	return snap, nil
}

// AppendRows implements Store.
func (c *RPCClient) AppendRows(ctx context.Context, spreadsheetID string, col Collection, rows []Row) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	return c.send(ctx, Request{Action: ActionAppend, SpreadsheetID: spreadsheetID, SheetType: string(col), Data: data})
}

// UpdateRow implements Store.
func (c *RPCClient) UpdateRow(ctx context.Context, spreadsheetID string, col Collection, rowIndex int, row Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	return c.send(ctx, Request{
		Action:        ActionUpdate,
		SpreadsheetID: spreadsheetID,
		SheetType:     string(col),
		RowIndex:      &rowIndex,
		Data:          data,
	})
}

// DeleteRow implements Store.
func (c *RPCClient) DeleteRow(ctx context.Context, spreadsheetID string, col Collection, rowIndex int) error {
	return c.send(ctx, Request{
		Action:        ActionDelete,
		SpreadsheetID: spreadsheetID,
		SheetType:     string(col),
		RowIndex:      &rowIndex,
	})
}

// Apply implements Store.
func (c *RPCClient) Apply(ctx context.Context, spreadsheetID string, ops []Op) error {
	return c.send(ctx, Request{Action: ActionBatch, SpreadsheetID: spreadsheetID, Ops: ops})
}
