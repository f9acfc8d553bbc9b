package engine

import (
	"slices"

	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

// tracker is the remote order of record ids per collection for one
// spreadsheet. Position i is data row i of the tab.
type tracker struct {
	rows          map[sheets.Collection][]string
	spreadsheetID string
}

func newTracker(spreadsheetID string) *tracker {
	return &tracker{spreadsheetID: spreadsheetID, rows: make(map[sheets.Collection][]string)}
}

func seedTracker(spreadsheetID string, snap sheets.Snapshot) *tracker {
	t := newTracker(spreadsheetID)
	for c, records := range snap {
		ids := make([]string, len(records))
		for i, r := range records {
			ids[i] = r.ID()
		}
		t.rows[c] = ids
	}
	return t
}

func (t *tracker) clone() *tracker {
	out := newTracker(t.spreadsheetID)
	for c, ids := range t.rows {
		out.rows[c] = slices.Clone(ids)
	}
	return out
}

// index returns the row position of id in c, or -1.
func (t *tracker) index(c sheets.Collection, id string) int {
	if id == "" {
		return -1
	}
	return slices.Index(t.rows[c], id)
}

func (t *tracker) add(c sheets.Collection, id string) {
	t.rows[c] = append(t.rows[c], id)
}

func (t *tracker) remove(c sheets.Collection, idx int) {
	t.rows[c] = slices.Delete(t.rows[c], idx, idx+1)
}

// resolve turns id-addressed row ops into positional ops, advancing t as the
// remote will once they land. An append or update for an id already on the
// remote overwrites its row; an update for an unknown id is appended; a
// delete for an unknown id is dropped.
func (t *tracker) resolve(ops []service.RowOp) []sheets.Op {
	out := make([]sheets.Op, 0, len(ops))
	for _, op := range ops {
		idx := t.index(op.Collection, op.RecordID)
		switch op.Kind {
		case sheets.OpAppend, sheets.OpUpdate:
			if idx >= 0 {
				out = append(out, sheets.Op{Kind: sheets.OpUpdate, Collection: op.Collection, RowIndex: idx, Row: op.Row})
				continue
			}
			t.add(op.Collection, op.RecordID)
			out = append(out, sheets.Op{Kind: sheets.OpAppend, Collection: op.Collection, Row: op.Row})
		case sheets.OpDelete:
			if idx < 0 {
				continue
			}
			t.remove(op.Collection, idx)
			out = append(out, sheets.Op{Kind: sheets.OpDelete, Collection: op.Collection, RowIndex: idx})
		}
	}
	return out
}

// overlay applies queued row ops to a freshly read snapshot by record id.
func overlay(snap sheets.Snapshot, pending []service.PendingOp) {
	for _, p := range pending {
		for _, op := range p.Ops {
			records := snap[op.Collection]
			idx := slices.IndexFunc(records, func(r sheets.Record) bool { return r.ID() == op.RecordID })

			switch op.Kind {
			case sheets.OpAppend, sheets.OpUpdate:
				rec := sheets.RowToRecord(op.Collection.Headers(), op.Row)
				if idx >= 0 {
					records[idx] = rec
				} else {
					records = append(records, rec)
				}
			case sheets.OpDelete:
				if idx >= 0 {
					records = slices.Delete(records, idx, idx+1)
				}
			}
			snap[op.Collection] = records
		}
	}
}
