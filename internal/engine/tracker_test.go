package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

func TestTrackerResolve(t *testing.T) {
	rows := seedTracker("s", sheets.Snapshot{
		sheets.Projects: {{"id": "a"}, {"id": "b"}},
	})

	got := rows.resolve([]service.RowOp{
		{Kind: sheets.OpUpdate, Collection: sheets.Projects, RecordID: "c", Row: sheets.Row{"c"}},
		{Kind: sheets.OpDelete, Collection: sheets.Projects, RecordID: "x"},
		{Kind: sheets.OpDelete, Collection: sheets.Projects, RecordID: "a"},
		{Kind: sheets.OpUpdate, Collection: sheets.Projects, RecordID: "b", Row: sheets.Row{"b"}},
		{Kind: sheets.OpAppend, Collection: sheets.Projects, RecordID: "c", Row: sheets.Row{"c2"}},
	})

	assert.Equal(t, []sheets.Op{
		{Kind: sheets.OpAppend, Collection: sheets.Projects, Row: sheets.Row{"c"}},
		{Kind: sheets.OpDelete, Collection: sheets.Projects, RowIndex: 0},
		{Kind: sheets.OpUpdate, Collection: sheets.Projects, RowIndex: 0, Row: sheets.Row{"b"}},
		{Kind: sheets.OpUpdate, Collection: sheets.Projects, RowIndex: 1, Row: sheets.Row{"c2"}},
	}, got)
	assert.Equal(t, []string{"b", "c"}, rows.rows[sheets.Projects])
}

func TestTrackerCloneIsIndependent(t *testing.T) {
	rows := seedTracker("s", sheets.Snapshot{sheets.Bills: {{"id": "b1"}}})

	staged := rows.clone()
	staged.add(sheets.Bills, "b2")

	assert.Equal(t, []string{"b1"}, rows.rows[sheets.Bills])
	assert.Equal(t, 1, staged.index(sheets.Bills, "b2"))
	assert.Equal(t, -1, staged.index(sheets.Bills, ""))
}

func TestOverlay(t *testing.T) {
	snap := sheets.Snapshot{
		sheets.Transactions: {
			{"id": "t1", "amount": "10"},
			{"id": "t2", "amount": "20"},
		},
	}

	overlay(snap, []service.PendingOp{
		{Ops: []service.RowOp{
			{Kind: sheets.OpUpdate, Collection: sheets.Transactions, RecordID: "t1", Row: sheets.Row{"t1", "", "deposit", "", "15", "bank"}},
			{Kind: sheets.OpDelete, Collection: sheets.Transactions, RecordID: "t2"},
		}},
		{Ops: []service.RowOp{
			{Kind: sheets.OpAppend, Collection: sheets.Transactions, RecordID: "t3", Row: sheets.Row{"t3", "", "withdrawal", "", "5", "cash"}},
		}},
	})

	records := snap[sheets.Transactions]
	require.Len(t, records, 2)
	assert.Equal(t, "15", records[0]["amount"])
	assert.Equal(t, "t3", records[1].ID())
	assert.Equal(t, "cash", records[1]["mode"])
}
