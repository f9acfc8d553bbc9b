package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/buildtrack/internal/model"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestProfit(t *testing.T) {
	tests := []struct {
		name        string
		project     model.Project
		wantProfit  decimal.Decimal
		wantPercent decimal.Decimal
	}{
		{
			name: "profitable project",
			project: model.Project{
				TotalBilled: d(1000), TotalMaterialCost: d(300),
				TotalLabourCost: d(200), TotalOtherCost: d(100),
			},
			wantProfit:  d(400),
			wantPercent: d(40),
		},
		{
			name: "loss making project",
			project: model.Project{
				TotalBilled: d(500), TotalMaterialCost: d(600),
			},
			wantProfit:  d(-100),
			wantPercent: d(-20),
		},
		{
			name:        "nothing billed yields zero percent",
			project:     model.Project{TotalMaterialCost: d(50)},
			wantProfit:  d(-50),
			wantPercent: decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.wantProfit.Equal(Profit(tt.project)), "profit %s", Profit(tt.project))
			assert.True(t, tt.wantPercent.Equal(ProfitPercent(tt.project)), "percent %s", ProfitPercent(tt.project))
		})
	}
}

func TestBalances(t *testing.T) {
	txns := []model.BankTransaction{
		{Type: model.Deposit, Mode: model.ModeBank, Amount: d(1000)},
		{Type: model.Deposit, Mode: model.ModeUPI, Amount: d(250)},
		{Type: model.Withdrawal, Mode: model.ModeBank, Amount: d(400)},
		{Type: model.Deposit, Mode: model.ModeCash, Amount: d(300)},
		{Type: model.Withdrawal, Mode: model.ModeCash, Amount: d(120)},
		{Type: model.Withdrawal, Mode: model.ModeUPI, Amount: d(50)},
	}

	assert.True(t, d(800).Equal(BankBalance(txns)), "bank %s", BankBalance(txns))
	assert.True(t, d(180).Equal(CashBalance(txns)), "cash %s", CashBalance(txns))
	assert.True(t, BankBalance(nil).IsZero())
}

func TestApplyCustomerPayment(t *testing.T) {
	tests := []struct {
		name         string
		bill         model.CustomerBill
		amount       decimal.Decimal
		wantReceived decimal.Decimal
		wantStatus   model.PaymentStatus
	}{
		{
			name:         "final instalment settles the bill",
			bill:         model.CustomerBill{Amount: d(1200000), AmountReceived: d(700000), Status: model.StatusPartial},
			amount:       d(500000),
			wantReceived: d(1200000),
			wantStatus:   model.StatusPaid,
		},
		{
			name:         "first instalment is partial",
			bill:         model.CustomerBill{Amount: d(1000), Status: model.StatusPending},
			amount:       d(400),
			wantReceived: d(400),
			wantStatus:   model.StatusPartial,
		},
		{
			name:         "overpayment is paid",
			bill:         model.CustomerBill{Amount: d(1000), AmountReceived: d(900)},
			amount:       d(500),
			wantReceived: d(1400),
			wantStatus:   model.StatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyCustomerPayment(tt.bill, tt.amount)
			assert.True(t, tt.wantReceived.Equal(got.AmountReceived), "received %s", got.AmountReceived)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.True(t, tt.bill.Amount.Equal(got.Amount))
		})
	}
}

func TestApplyContractorPayment(t *testing.T) {
	work := model.ContractorWork{WorkValue: d(150000), AmountPaid: d(50000), Status: model.StatusPartial}

	partial := ApplyContractorPayment(work, d(40000))
	assert.True(t, d(90000).Equal(partial.AmountPaid))
	assert.Equal(t, model.StatusPartial, partial.Status)

	paid := ApplyContractorPayment(partial, d(60000))
	assert.True(t, d(150000).Equal(paid.AmountPaid))
	assert.Equal(t, model.StatusPaid, paid.Status)
	assert.True(t, WorkPending(paid).IsZero())
}

func sampleLedger() *model.Ledger {
	return &model.Ledger{
		Projects: []model.Project{
			{ID: "p1", Name: "Villa", Status: model.ProjectActive, TotalOtherCost: d(10)},
			{ID: "p2", Name: "Office", Status: model.ProjectCompleted},
		},
		Bills: []model.CustomerBill{
			{ID: "b1", ProjectID: "p1", Amount: d(1000), AmountReceived: d(400), Status: model.StatusPartial},
			{ID: "b2", ProjectID: "p1", Amount: d(500), AmountReceived: d(500), Status: model.StatusPaid},
			{ID: "b3", ProjectID: "p2", Amount: d(2000), Status: model.StatusPending},
		},
		Materials: []model.MaterialPurchase{
			{ID: "m1", ProjectID: "p1", SupplierID: "s1", Material: "Cement", Unit: "bag", Quantity: d(10), TotalAmount: d(300)},
			{ID: "m2", ProjectID: "p1", SupplierID: "s1", Material: "Cement", Unit: "bag", Quantity: d(5), TotalAmount: d(150)},
			{ID: "m3", ProjectID: "p1", SupplierID: "s2", Material: "Steel", Unit: "kg", Quantity: d(100), TotalAmount: d(700)},
		},
		Contractors: []model.ContractorWork{
			{ID: "w1", ProjectID: "p1", WorkValue: d(200), AmountPaid: d(50), Status: model.StatusPartial},
			{ID: "w2", ProjectID: "p2", WorkValue: d(900), Status: model.StatusPending},
		},
		SalaryPayments: []model.SalaryPayment{
			{ID: "sp1", CostType: model.AssignedProject, ProjectID: "p1", Amount: d(75)},
			{ID: "sp2", CostType: model.AssignedOffice, Amount: d(1000)},
		},
		Suppliers: []model.Supplier{
			{ID: "s1", Name: "Acme Cement"},
			{ID: "s2", Name: "Steel Co", TotalPurchased: d(99999)},
		},
		SupplierPayments: []model.SupplierPayment{
			{ID: "pay1", SupplierID: "s1", Amount: d(200)},
		},
		Employees: []model.Employee{
			{ID: "e1", AssignedTo: model.AssignedProject, Salary: d(20000)},
			{ID: "e2", AssignedTo: model.AssignedOffice, Salary: d(30000)},
		},
		Transactions: []model.BankTransaction{
			{Type: model.Deposit, Mode: model.ModeBank, Amount: d(5000)},
			{Type: model.Deposit, Mode: model.ModeCash, Amount: d(700)},
		},
	}
}

func TestProjectTotals(t *testing.T) {
	l := sampleLedger()

	got := ProjectTotals(l, l.Projects[0])
	assert.True(t, d(1500).Equal(got.TotalBilled), "billed %s", got.TotalBilled)
	assert.True(t, d(900).Equal(got.TotalReceived), "received %s", got.TotalReceived)
	assert.True(t, d(1150).Equal(got.TotalMaterialCost), "material %s", got.TotalMaterialCost)
	assert.True(t, d(275).Equal(got.TotalLabourCost), "labour %s", got.TotalLabourCost)
	assert.True(t, d(10).Equal(got.TotalOtherCost), "other cost is user maintained")
	assert.False(t, SameProjectTotals(l.Projects[0], got))
	assert.True(t, SameProjectTotals(got, ProjectTotals(l, got)))
}

func TestSupplierBalances(t *testing.T) {
	rows := SupplierBalances(sampleLedger())
	require.Len(t, rows, 2)

	assert.True(t, d(450).Equal(rows[0].Supplier.TotalPurchased))
	assert.True(t, d(200).Equal(rows[0].Supplier.TotalPaid))
	assert.True(t, d(250).Equal(rows[0].Pending))

	// The stale cached figure is ignored in favour of the purchase collection.
	assert.True(t, d(700).Equal(rows[1].Supplier.TotalPurchased))
}

func TestMaterialUsage(t *testing.T) {
	usage := MaterialUsage(sampleLedger())
	require.Len(t, usage, 2)

	villa := usage[0]
	require.Len(t, villa.Lines, 2)
	assert.Equal(t, "Cement", villa.Lines[0].Name)
	assert.True(t, d(15).Equal(villa.Lines[0].Quantity))
	assert.True(t, d(450).Equal(villa.Lines[0].Total))
	assert.Equal(t, "Steel", villa.Lines[1].Name)
	assert.True(t, d(1150).Equal(villa.TotalCost))

	assert.Empty(t, usage[1].Lines)
	assert.True(t, usage[1].TotalCost.IsZero())
}

func TestPendingReports(t *testing.T) {
	l := sampleLedger()

	bills := CustomerPendingReport(l)
	require.Len(t, bills, 2)
	assert.Equal(t, "b3", bills[0].Bill.ID)
	assert.True(t, d(2000).Equal(bills[0].Pending))
	assert.Equal(t, "b1", bills[1].Bill.ID)

	works := ContractorPendingReport(l)
	require.Len(t, works, 2)
	assert.Equal(t, "w2", works[0].Work.ID)
	assert.True(t, d(150).Equal(works[1].Pending))
}

func TestSummarize(t *testing.T) {
	l := sampleLedger()
	for i := range l.Projects {
		l.Projects[i] = ProjectTotals(l, l.Projects[i])
	}

	s := Summarize(l)
	assert.Equal(t, 1, s.ActiveProjects)
	assert.Equal(t, 2, s.TotalProjects)
	assert.True(t, d(3500).Equal(s.TotalBilled), "billed %s", s.TotalBilled)
	assert.True(t, d(900).Equal(s.TotalReceived))
	assert.True(t, d(2600).Equal(s.PendingFromCustomers))
	assert.True(t, d(1050).Equal(s.PendingToContractors))
	assert.True(t, d(5000).Equal(s.BankBalance))
	assert.True(t, d(700).Equal(s.CashBalance))
	assert.Len(t, s.RecentPendingBills, 2)

	split := SalaryCostSplit(l)
	assert.True(t, d(20000).Equal(split.Project))
	assert.True(t, d(30000).Equal(split.Office))
}
