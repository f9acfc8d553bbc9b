// Package function serves the remote store contract over HTTP: a single
// POST endpoint taking an action and answering {success, data, error}.
package function

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

// Options configures the handler.
type Options struct {
	Logger *slog.Logger
	// APIKey, when set, must be presented in the apikey header or as a
	// bearer token.
	APIKey         string
	AllowedOrigins []string
}

type handler struct {
	store  sheets.Store
	logger *slog.Logger
	apiKey string
}

// NewHandler returns the function's HTTP handler over store.
func NewHandler(store sheets.Store, opts Options) http.Handler {
	h := &handler{
		store:  store,
		logger: common.OrDefault(opts.Logger),
		apiKey: opts.APIKey,
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:         300,
	}))

	router.Options("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Post("/", h.serve)

	return router
}

func (h *handler) authorized(r *http.Request) bool {
	if h.apiKey == "" {
		return true
	}
	return r.Header.Get("apikey") == h.apiKey || r.Header.Get("Authorization") == "Bearer "+h.apiKey
}

func (h *handler) serve(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.write(w, http.StatusUnauthorized, sheets.Response{Error: "unauthorized"})
		return
	}

	var req sheets.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	h.logger.Info("Processing action", "action", req.Action, "sheet_type", req.SheetType)

	resp, err := h.dispatch(r.Context(), req)
	if err != nil {
		h.logger.Error("function call failed", "action", req.Action, "error", err)
		h.fail(w, err)
		return
	}

	resp.Success = true
	h.write(w, http.StatusOK, resp)
}

func (h *handler) dispatch(ctx context.Context, req sheets.Request) (sheets.Response, error) {
	switch req.Action {
	case sheets.ActionCreate:
		id, err := h.store.Provision(ctx)
		if err != nil {
			return sheets.Response{}, err
		}
		return sheets.Response{SpreadsheetID: id, Message: "Spreadsheet created with all sheets and headers"}, nil

	case sheets.ActionInitialize:
		if req.SpreadsheetID == "" {
			return sheets.Response{}, errors.New("spreadsheetId is required")
		}
		if err := h.store.EnsureSchema(ctx, req.SpreadsheetID); err != nil {
			return sheets.Response{}, err
		}
		return sheets.Response{SpreadsheetID: req.SpreadsheetID, Message: "Sheets initialized"}, nil

	case sheets.ActionRead:
		col, err := target(req, true, "spreadsheetId and sheetType are required")
		if err != nil {
			return sheets.Response{}, err
		}
		records, err := h.store.ReadCollection(ctx, req.SpreadsheetID, col)
		if err != nil {
			return sheets.Response{}, err
		}
		return withData(records)

	case sheets.ActionReadAll:
		if req.SpreadsheetID == "" {
			return sheets.Response{}, errors.New("spreadsheetId is required")
		}
		snap, err := h.store.ReadAll(ctx, req.SpreadsheetID)
		if err != nil {
			return sheets.Response{}, err
		}
		all := make(map[sheets.Collection][]sheets.Record, len(snap))
		for _, c := range sheets.Collections() {
			records := snap[c]
			if records == nil {
				records = []sheets.Record{}
			}
			all[c] = records
		}
		return withData(all)

	case sheets.ActionAppend:
		col, err := target(req, len(req.Data) > 0, "spreadsheetId, sheetType, and data are required")
		if err != nil {
			return sheets.Response{}, err
		}
		rows, err := decodeRows(req.Data)
		if err != nil {
			return sheets.Response{}, err
		}
		return sheets.Response{}, h.store.AppendRows(ctx, req.SpreadsheetID, col, rows)

	case sheets.ActionUpdate:
		col, err := target(req, len(req.Data) > 0 && req.RowIndex != nil, "spreadsheetId, sheetType, data, and rowIndex are required")
		if err != nil {
			return sheets.Response{}, err
		}
		var row sheets.Row
		if err := json.Unmarshal(req.Data, &row); err != nil {
			return sheets.Response{}, err
		}
		return sheets.Response{}, h.store.UpdateRow(ctx, req.SpreadsheetID, col, *req.RowIndex, row)

	case sheets.ActionDelete:
		col, err := target(req, req.RowIndex != nil, "spreadsheetId, sheetType, and rowIndex are required")
		if err != nil {
			return sheets.Response{}, err
		}
		return sheets.Response{}, h.store.DeleteRow(ctx, req.SpreadsheetID, col, *req.RowIndex)

	case sheets.ActionBatch:
		if req.SpreadsheetID == "" || len(req.Ops) == 0 {
			return sheets.Response{}, errors.New("spreadsheetId and ops are required")
		}
		for i, op := range req.Ops {
			if err := op.Validate(); err != nil {
				return sheets.Response{}, fmt.Errorf("op %d: %w", i, err)
			}
		}
		return sheets.Response{}, h.store.Apply(ctx, req.SpreadsheetID, req.Ops)

	default:
		return sheets.Response{}, fmt.Errorf("Unknown action: %s", req.Action)
	}
}

// target resolves the request's collection. complete reports whether the
// action's other required fields are present.
func target(req sheets.Request, complete bool, missing string) (sheets.Collection, error) {
	if req.SpreadsheetID == "" || req.SheetType == "" || !complete {
		return "", errors.New(missing)
	}
	return sheets.ParseCollection(req.SheetType)
}

// decodeRows accepts a list of rows or a single row.
func decodeRows(data json.RawMessage) ([]sheets.Row, error) {
	var rows []sheets.Row
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}
	var row sheets.Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("data must be a row or a list of rows: %w", err)
	}
	return []sheets.Row{row}, nil
}

func withData(v any) (sheets.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return sheets.Response{}, fmt.Errorf("encode data: %w", err)
	}
	return sheets.Response{Data: data}, nil
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	msg := err.Error()
	var remote *sheets.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		msg = remote.Message
	}
	h.write(w, http.StatusInternalServerError, sheets.Response{Error: msg})
}

func (h *handler) write(w http.ResponseWriter, status int, resp sheets.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
