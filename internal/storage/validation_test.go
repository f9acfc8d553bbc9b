package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePendingOp(t *testing.T) {
	valid := service.RowOp{Kind: sheets.OpAppend, Collection: sheets.Projects, RecordID: "p1", Row: sheets.Row{"p1"}}

	tests := []struct {
		op   *service.PendingOp
		want error
		name string
	}{
		{
			name: "valid",
			op:   &service.PendingOp{SpreadsheetID: "s", Ops: []service.RowOp{valid}},
		},
		{
			name: "delete needs no row",
			op: &service.PendingOp{SpreadsheetID: "s", Ops: []service.RowOp{
				{Kind: sheets.OpDelete, Collection: sheets.Bills, RecordID: "b1"},
			}},
		},
		{
			name: "nil op",
			want: ErrNilParameter,
		},
		{
			name: "no spreadsheet",
			op:   &service.PendingOp{Ops: []service.RowOp{valid}},
			want: ErrEmptyString,
		},
		{
			name: "no row ops",
			op:   &service.PendingOp{SpreadsheetID: "s"},
			want: ErrEmptySlice,
		},
		{
			name: "unknown collection",
			op: &service.PendingOp{SpreadsheetID: "s", Ops: []service.RowOp{
				{Kind: sheets.OpAppend, Collection: "Invoices", RecordID: "x", Row: sheets.Row{"x"}},
			}},
			want: ErrUnknownSheet,
		},
		{
			name: "update without row",
			op: &service.PendingOp{SpreadsheetID: "s", Ops: []service.RowOp{
				{Kind: sheets.OpUpdate, Collection: sheets.Projects, RecordID: "p1"},
			}},
			want: ErrInvalidRowOp,
		},
		{
			name: "missing record id",
			op: &service.PendingOp{SpreadsheetID: "s", Ops: []service.RowOp{
				{Kind: sheets.OpDelete, Collection: sheets.Projects},
			}},
			want: ErrInvalidRowOp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePendingOp(tt.op)
			if tt.want == nil {
				if err != nil {
					t.Errorf("validatePendingOp() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("validatePendingOp() error = %v, want %v", err, tt.want)
			}
		})
	}
}
