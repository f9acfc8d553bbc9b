package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/buildtrack/internal/model"
)

func TestSchemaHeaders(t *testing.T) {
	assert.Equal(t, []string{
		"id", "name", "customer", "startDate", "status",
		"totalBilled", "totalReceived", "totalMaterialCost", "totalLabourCost", "totalOtherCost",
	}, Projects.Headers())
	assert.Equal(t, []string{
		"id", "date", "employeeId", "employeeName", "month", "costType",
		"paymentMode", "amount", "projectId", "projectName",
	}, SalaryPayments.Headers())
	assert.Equal(t, "ContractorWorks", Contractors.SheetName())
	assert.Len(t, Collections(), 12)

	for _, c := range Collections() {
		assert.Equal(t, "id", c.Headers()[0], c)
	}
}

func TestCollectionRanges(t *testing.T) {
	assert.Equal(t, "Bills!A2", Bills.RowRange(0))
	assert.Equal(t, "Bills!A7", Bills.RowRange(5))
	assert.Equal(t, "Projects!A:J", Projects.DataRange())
	assert.Equal(t, "Materials!A:M", Materials.DataRange())
	assert.Equal(t, "AA", columnName(27))
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection("contractorPayments")
	require.NoError(t, err)
	assert.Equal(t, ContractorPayments, c)

	_, err = ParseCollection("invoices")
	assert.EqualError(t, err, "Invalid sheetType: invoices")
}

func TestEncodeRowsMatchHeaders(t *testing.T) {
	records := []any{
		model.Project{}, model.MaterialPurchase{}, model.CustomerBill{}, model.CustomerPayment{},
		model.ContractorWork{}, model.ContractorPayment{}, model.Employee{}, model.SalaryPayment{},
		model.BankTransaction{}, model.MaterialItem{}, model.Supplier{}, model.SupplierPayment{},
	}
	for _, r := range records {
		c, row, err := Encode(r)
		require.NoError(t, err)
		assert.Len(t, row, c.Width(), "%T", r)
	}

	_, _, err := Encode("not a record")
	assert.Error(t, err)
}

func TestEncodeSalaryPaymentKeepsProjectColumns(t *testing.T) {
	c, row, err := Encode(model.SalaryPayment{
		ID:          "sp1",
		Date:        time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		EmployeeID:  "e1",
		Month:       "2024-03",
		CostType:    model.AssignedProject,
		PaymentMode: model.ModeBank,
		Amount:      decimal.NewFromInt(25000),
		ProjectID:   "p1",
		ProjectName: "Villa",
	})
	require.NoError(t, err)
	assert.Equal(t, SalaryPayments, c)
	assert.Equal(t, Row{"sp1", "2024-03-31", "e1", "", "2024-03", "project", "bank", "25000", "p1", "Villa"}, row)
}

func TestDecodeLedgerDefaults(t *testing.T) {
	snap := Snapshot{
		Projects: {
			{"id": "p1", "name": "Villa", "status": "bogus", "totalBilled": "1,200,000", "startDate": "2024-01-15"},
		},
		Payments:           {{"id": "pay1", "paymentMode": ""}},
		ContractorPayments: {{"id": "cp1", "paymentMode": "cheque"}},
		SalaryPayments:     {{"id": "sp1", "paymentMode": "", "costType": "", "month": "45352"}},
		Contractors:        {{"id": "w1", "contractorType": "", "status": "done", "workValue": "abc"}},
		Employees:          {{"id": "e1", "assignedTo": "site"}},
		Transactions:       {{"id": "t1", "type": "", "mode": "", "date": "45306"}},
		SupplierPayments:   {{"id": "sup1", "paymentMode": "wire"}},
	}

	l := DecodeLedger(snap)

	require.Len(t, l.Projects, 1)
	p := l.Projects[0]
	assert.Equal(t, model.ProjectActive, p.Status)
	assert.True(t, decimal.NewFromInt(1200000).Equal(p.TotalBilled))
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), p.StartDate)
	assert.True(t, p.TotalReceived.IsZero())

	assert.Equal(t, model.ModeBank, l.Payments[0].PaymentMode)
	assert.Equal(t, model.ModeCash, l.ContractorPayments[0].PaymentMode)
	assert.Equal(t, model.ModeBank, l.SalaryPayments[0].PaymentMode)
	assert.Equal(t, model.AssignedOffice, l.SalaryPayments[0].CostType)
	assert.Equal(t, "2024-03", l.SalaryPayments[0].Month)
	assert.Equal(t, model.ContractorLabour, l.Contractors[0].ContractorType)
	assert.Equal(t, model.StatusPending, l.Contractors[0].Status)
	assert.True(t, l.Contractors[0].WorkValue.IsZero())
	assert.Equal(t, model.AssignedOffice, l.Employees[0].AssignedTo)
	assert.Equal(t, model.Deposit, l.Transactions[0].Type)
	assert.Equal(t, model.ModeBank, l.Transactions[0].Mode)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), l.Transactions[0].Date)
	assert.Equal(t, model.ModeBank, l.SupplierPayments[0].PaymentMode)

	assert.Empty(t, l.Bills)
	assert.NotNil(t, l.Bills)
}

func TestEncodeDecodeBill(t *testing.T) {
	bill := model.CustomerBill{
		ID:             "b1",
		BillNumber:     "INV-001",
		Date:           time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		ProjectID:      "p1",
		ProjectName:    "Villa",
		Customer:       "Mehta",
		Amount:         decimal.RequireFromString("1200000.50"),
		AmountReceived: decimal.NewFromInt(700000),
		Status:         model.StatusPartial,
	}

	c, row, err := Encode(bill)
	require.NoError(t, err)

	l := DecodeLedger(Snapshot{c: {RowToRecord(c.Headers(), row)}})
	require.Len(t, l.Bills, 1)
	got := l.Bills[0]
	assert.True(t, bill.Amount.Equal(got.Amount))
	assert.True(t, bill.AmountReceived.Equal(got.AmountReceived))
	got.Amount, got.AmountReceived = bill.Amount, bill.AmountReceived
	assert.Equal(t, bill, got)
}

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "", FormatDay(time.Time{}))
	assert.Equal(t, "2024-12-05", FormatDay(time.Date(2024, 12, 5, 13, 0, 0, 0, time.UTC)))
	assert.True(t, ParseDay("yesterday").IsZero())
	assert.True(t, ParseDay("").IsZero())
}

func TestRowToRecordPadsShortRows(t *testing.T) {
	r := RowToRecord([]string{"id", "name", "unit"}, []string{"m1"})
	assert.Equal(t, Record{"id": "m1", "name": "", "unit": ""}, r)
	assert.Equal(t, "m1", r.ID())
	assert.Equal(t, Row{"m1", "", "", ""}, MaterialItems.RecordToRow(r))
}

func TestRowsToSnapshotRoundTripsLedger(t *testing.T) {
	l := &model.Ledger{
		Projects: []model.Project{{ID: "p1", Name: "Villa", Customer: "Rao", Status: model.ProjectActive}},
		Bills:    []model.CustomerBill{{ID: "b1", ProjectID: "p1", Amount: decimal.NewFromInt(100), Status: model.StatusPending}},
	}
	rows := EncodeLedger(l)
	rows["Invoices"] = []Row{{"x"}}

	snap := RowsToSnapshot(rows)
	assert.NotContains(t, snap, Collection("Invoices"))

	got := DecodeLedger(snap)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, "Villa", got.Projects[0].Name)
	require.Len(t, got.Bills, 1)
	assert.True(t, got.Bills[0].Amount.Equal(decimal.NewFromInt(100)))
}
