package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/buildtrack/internal/common"
)

// GoogleStore is a Store backed directly by the Google Sheets v4 API.
type GoogleStore struct {
	service  *sheets.Service
	limiter  *rate.Limiter
	logger   *slog.Logger
	sheetIDs map[string]map[string]int64
	config   Config
	mu       sync.Mutex
}

// NewGoogleStore authenticates with the configured credentials and returns a
// store for the Sheets API.
func NewGoogleStore(ctx context.Context, config Config, logger *slog.Logger) (*GoogleStore, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewGoogleStoreWithService(service, config, logger), nil
}

// NewGoogleStoreWithService wraps an already constructed Sheets service.
func NewGoogleStoreWithService(service *sheets.Service, config Config, logger *slog.Logger) *GoogleStore {
	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = DefaultConfig().RequestsPerMinute
	}
	if config.SpreadsheetName == "" {
		config.SpreadsheetName = DefaultSpreadsheetName
	}

	return &GoogleStore{
		service:  service,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), min(rpm, 10)),
		logger:   common.OrDefault(logger),
		sheetIDs: make(map[string]map[string]int64),
		config:   config,
	}
}

// createSheetsService builds an authenticated Sheets client for the
// configured auth method.
func createSheetsService(ctx context.Context, config Config, logger *slog.Logger) (*sheets.Service, error) {
	method, err := config.Auth()
	if err != nil {
		return nil, err
	}

	var tokenSource oauth2.TokenSource
	switch method {
	case AuthServiceAccount:
		tokenSource, err = serviceAccountTokens(ctx, config.ServiceAccountPath)
	default:
		tokenSource, err = oauthTokens(ctx, config, logger)
	}
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (g *GoogleStore) wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// remoteError converts an API failure into a RemoteError carrying the
// upstream message.
func remoteError(action string, err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &RemoteError{Action: action, Message: err.Error(), Err: err}
		}
		return &RemoteError{Action: action, Message: err.Error(), Err: fmt.Errorf("%w: %w", common.ErrUnreachable, err)}
	}

	remote := &RemoteError{Action: action, Message: apiErr.Message, Err: apiErr}
	if remote.Message == "" {
		remote.Message = apiErr.Error()
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		remote.Err = fmt.Errorf("%w: %w", common.ErrRateLimit, apiErr)
	case apiErr.Code == http.StatusNotFound:
		remote.Err = fmt.Errorf("%w: %w", common.ErrNotFound, apiErr)
	case apiErr.Code >= http.StatusInternalServerError:
		remote.Err = fmt.Errorf("%w: %w", common.ErrUnreachable, apiErr)
	}
	return remote
}

// Provision implements Store. Every tab is created with the spreadsheet and
// all header rows are written in one values batch.
func (g *GoogleStore) Provision(ctx context.Context) (string, error) {
	tabs := make([]*sheets.Sheet, 0, len(order))
	for _, c := range order {
		tabs = append(tabs, &sheets.Sheet{
			Properties: &sheets.SheetProperties{
				Title:          c.SheetName(),
				GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
			},
		})
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    g.config.SpreadsheetName,
			TimeZone: g.config.TimeZone,
		},
		Sheets: tabs,
	}

	if err := g.wait(ctx); err != nil {
		return "", err
	}
	created, err := g.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", remoteError(ActionCreate, err)
	}

	g.cacheSheetIDs(created.SpreadsheetId, created.Sheets)

	if err := g.writeHeaders(ctx, created.SpreadsheetId, order); err != nil {
		return "", err
	}

	g.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (g *GoogleStore) writeHeaders(ctx context.Context, spreadsheetID string, cols []Collection) error {
	if len(cols) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, 0, len(cols))
	for _, c := range cols {
		data = append(data, &sheets.ValueRange{
			Range:  c.SheetName() + "!A1",
			Values: [][]any{toValues(c.Headers())},
		})
	}

	if err := g.wait(ctx); err != nil {
		return err
	}
	_, err := g.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return remoteError(ActionInitialize, err)
	}
	return nil
}

// EnsureSchema implements Store. Missing tabs are added; empty header rows
// and header rows that predate appended columns are rewritten.
func (g *GoogleStore) EnsureSchema(ctx context.Context, spreadsheetID string) error {
	ids, err := g.loadSheetIDs(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	var requests []*sheets.Request
	for _, c := range order {
		if _, ok := ids[c.SheetName()]; ok {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title:          c.SheetName(),
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
			},
		})
	}

	if len(requests) > 0 {
		if err := g.wait(ctx); err != nil {
			return err
		}
		resp, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		if err != nil {
			return remoteError(ActionInitialize, err)
		}
		for _, reply := range resp.Replies {
			if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
				g.setSheetID(spreadsheetID, reply.AddSheet.Properties.Title, reply.AddSheet.Properties.SheetId)
			}
		}
		g.logger.Info("added missing tabs", "spreadsheet_id", spreadsheetID, "count", len(requests))
	}

	ranges := make([]string, 0, len(order))
	for _, c := range order {
		ranges = append(ranges, c.SheetName()+"!1:1")
	}
	if err := g.wait(ctx); err != nil {
		return err
	}
	resp, err := g.service.Spreadsheets.Values.BatchGet(spreadsheetID).Ranges(ranges...).Context(ctx).Do()
	if err != nil {
		return remoteError(ActionInitialize, err)
	}

	var stale []Collection
	for i, c := range order {
		var current []string
		if i < len(resp.ValueRanges) && len(resp.ValueRanges[i].Values) > 0 {
			current = fromValues(resp.ValueRanges[i].Values[0])
		}
		want := c.Headers()
		if len(current) < len(want) && slices.Equal(current, want[:len(current)]) {
			stale = append(stale, c)
		}
	}

	return g.writeHeaders(ctx, spreadsheetID, stale)
}

// ReadCollection implements Store.
func (g *GoogleStore) ReadCollection(ctx context.Context, spreadsheetID string, c Collection) ([]Record, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := g.service.Spreadsheets.Values.Get(spreadsheetID, c.DataRange()).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteError(ActionRead, err)
	}
	return valuesToRecords(resp.Values), nil
}

// ReadAll implements Store. It issues one batch read and falls back to
// reading tab by tab, treating tabs that cannot be read as empty, when the
// batch is rejected.
func (g *GoogleStore) ReadAll(ctx context.Context, spreadsheetID string) (Snapshot, error) {
	ranges := make([]string, 0, len(order))
	for _, c := range order {
		ranges = append(ranges, c.DataRange())
	}

	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	resp, err := g.service.Spreadsheets.Values.BatchGet(spreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err == nil && len(resp.ValueRanges) == len(order) {
		snap := make(Snapshot, len(order))
		for i, c := range order {
			snap[c] = valuesToRecords(resp.ValueRanges[i].Values)
		}
		return snap, nil
	}

	var apiErr *googleapi.Error
	if err != nil && (!errors.As(err, &apiErr) || apiErr.Code != http.StatusBadRequest) {
		return nil, remoteError(ActionReadAll, err)
	}

	g.logger.Debug("batch read rejected, reading tabs individually", "spreadsheet_id", spreadsheetID)

	snap := make(Snapshot, len(order))
	for _, c := range order {
		records, err := g.ReadCollection(ctx, spreadsheetID, c)
		if err != nil {
			if !errors.As(err, &apiErr) || apiErr.Code != http.StatusBadRequest {
				return nil, err
			}
			g.logger.Warn("tab unreadable, treating as empty", "tab", c.SheetName(), "error", err)
			records = []Record{}
		}
		snap[c] = records
	}
	return snap, nil
}

// AppendRows implements Store.
func (g *GoogleStore) AppendRows(ctx context.Context, spreadsheetID string, c Collection, rows []Row) error {
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		values = append(values, toValues(r))
	}

	if err := g.wait(ctx); err != nil {
		return err
	}
	_, err := g.service.Spreadsheets.Values.Append(spreadsheetID, c.SheetName(), &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return remoteError(ActionAppend, err)
	}

	g.logger.Debug("appended rows", "tab", c.SheetName(), "rows", len(rows))
	return nil
}

// UpdateRow implements Store.
func (g *GoogleStore) UpdateRow(ctx context.Context, spreadsheetID string, c Collection, rowIndex int, row Row) error {
	if err := g.wait(ctx); err != nil {
		return err
	}
	_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, c.RowRange(rowIndex), &sheets.ValueRange{
		Values: [][]any{toValues(row)},
	}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return remoteError(ActionUpdate, err)
	}

	g.logger.Debug("updated row", "tab", c.SheetName(), "row_index", rowIndex)
	return nil
}

// DeleteRow implements Store.
func (g *GoogleStore) DeleteRow(ctx context.Context, spreadsheetID string, c Collection, rowIndex int) error {
	return g.batch(ctx, ActionDelete, spreadsheetID, []Op{{Kind: OpDelete, Collection: c, RowIndex: rowIndex}})
}

// Apply implements Store. The ops become the sub-requests of one
// spreadsheets.batchUpdate, which the API applies atomically and in order.
func (g *GoogleStore) Apply(ctx context.Context, spreadsheetID string, ops []Op) error {
	return g.batch(ctx, ActionBatch, spreadsheetID, ops)
}

func (g *GoogleStore) batch(ctx context.Context, action, spreadsheetID string, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}

	ids, err := g.loadSheetIDs(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	requests := make([]*sheets.Request, 0, len(ops))
	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
		sheetID, ok := ids[op.Collection.SheetName()]
		if !ok {
			return fmt.Errorf("op %d: tab %s: %w", i, op.Collection.SheetName(), common.ErrNotFound)
		}
		requests = append(requests, opRequest(sheetID, op))
	}

	if err := g.wait(ctx); err != nil {
		return err
	}
	_, err = g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return remoteError(action, err)
	}

	g.logger.Debug("applied batch", "spreadsheet_id", spreadsheetID, "ops", len(ops))
	return nil
}

func opRequest(sheetID int64, op Op) *sheets.Request {
	switch op.Kind {
	case OpAppend:
		return &sheets.Request{
			AppendCells: &sheets.AppendCellsRequest{
				SheetId: sheetID,
				Rows:    []*sheets.RowData{rowData(op.Row)},
				Fields:  "userEnteredValue",
			},
		}
	case OpUpdate:
		return &sheets.Request{
			UpdateCells: &sheets.UpdateCellsRequest{
				Start: &sheets.GridCoordinate{
					SheetId:     sheetID,
					RowIndex:    int64(op.RowIndex) + 1,
					ColumnIndex: 0,
				},
				Rows:   []*sheets.RowData{rowData(op.Row)},
				Fields: "userEnteredValue",
			},
		}
	default:
		return &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(op.RowIndex) + 1,
					EndIndex:   int64(op.RowIndex) + 2,
				},
			},
		}
	}
}

// rowData stores canonical decimal cells as numbers and everything else as
// literal text.
func rowData(row Row) *sheets.RowData {
	cells := make([]*sheets.CellData, len(row))
	for i, s := range row {
		cell := &sheets.CellData{}
		if s != "" {
			if d, err := decimal.NewFromString(s); err == nil && d.String() == s {
				f := d.InexactFloat64()
				cell.UserEnteredValue = &sheets.ExtendedValue{NumberValue: &f}
			} else {
				text := s
				cell.UserEnteredValue = &sheets.ExtendedValue{StringValue: &text}
			}
		}
		cells[i] = cell
	}
	return &sheets.RowData{Values: cells}
}

func (g *GoogleStore) loadSheetIDs(ctx context.Context, spreadsheetID string) (map[string]int64, error) {
	g.mu.Lock()
	cached, ok := g.sheetIDs[spreadsheetID]
	if ok && len(cached) >= len(order) {
		out := make(map[string]int64, len(cached))
		for k, v := range cached {
			out[k] = v
		}
		g.mu.Unlock()
		return out, nil
	}
	g.mu.Unlock()

	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	ss, err := g.service.Spreadsheets.Get(spreadsheetID).
		Fields(googleapi.Field("sheets.properties(sheetId,title)")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, remoteError(ActionInitialize, err)
	}

	g.cacheSheetIDs(spreadsheetID, ss.Sheets)

	out := make(map[string]int64, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			out[s.Properties.Title] = s.Properties.SheetId
		}
	}
	return out, nil
}

func (g *GoogleStore) cacheSheetIDs(spreadsheetID string, tabs []*sheets.Sheet) {
	for _, s := range tabs {
		if s.Properties != nil {
			g.setSheetID(spreadsheetID, s.Properties.Title, s.Properties.SheetId)
		}
	}
}

func (g *GoogleStore) setSheetID(spreadsheetID, title string, id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids, ok := g.sheetIDs[spreadsheetID]
	if !ok {
		ids = make(map[string]int64)
		g.sheetIDs[spreadsheetID] = ids
	}
	ids[title] = id
}

func toValues(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

func fromValues(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		s, err := cellString(c)
		if err != nil {
			s = fmt.Sprint(c)
		}
		out[i] = s
	}
	return out
}

// valuesToRecords keys data rows by the first row. A tab with no data rows
// reads as empty.
func valuesToRecords(values [][]any) []Record {
	if len(values) < 2 {
		return []Record{}
	}
	headers := fromValues(values[0])
	records := make([]Record, 0, len(values)-1)
	for _, row := range values[1:] {
		records = append(records, RowToRecord(headers, fromValues(row)))
	}
	return records
}

func serviceAccountTokens(ctx context.Context, path string) (oauth2.TokenSource, error) {
	jsonKey, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key file: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	return jwtConfig.TokenSource(ctx), nil
}

// oauthTokens prefers the configured refresh token over the token file.
// Refreshed tokens are written back to the token file when one is set.
func oauthTokens(ctx context.Context, config Config, logger *slog.Logger) (oauth2.TokenSource, error) {
	client := OAuth2Config{ClientID: config.ClientID, ClientSecret: config.ClientSecret}.oauth("")

	token := &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}
	if token.RefreshToken == "" {
		saved, err := LoadToken(config.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("unable to load token file %s: %w", config.TokenFile, err)
		}
		token = saved
	}
	return newSavingTokenSource(client.TokenSource(ctx, token), config.TokenFile, logger), nil
}
