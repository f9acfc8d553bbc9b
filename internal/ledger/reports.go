package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/buildtrack/internal/model"
)

// ProjectReport is one row of the project profit and loss report.
type ProjectReport struct {
	Project         model.Project
	Profit          decimal.Decimal
	ProfitPercent   decimal.Decimal
	CustomerPending decimal.Decimal
}

// ProjectPL builds the profit and loss row for every project.
func ProjectPL(l *model.Ledger) []ProjectReport {
	rows := make([]ProjectReport, 0, len(l.Projects))
	for _, p := range l.Projects {
		rows = append(rows, ProjectReport{
			Project:         p,
			Profit:          Profit(p),
			ProfitPercent:   ProfitPercent(p),
			CustomerPending: CustomerPending(p),
		})
	}
	return rows
}

// MaterialLine aggregates purchases of one material on one project.
type MaterialLine struct {
	Name     string
	Unit     string
	Quantity decimal.Decimal
	Total    decimal.Decimal
}

// ProjectMaterials is the material usage of one project.
type ProjectMaterials struct {
	Project   model.Project
	Lines     []MaterialLine
	TotalCost decimal.Decimal
}

// MaterialUsage groups every project's purchases by material name, in order
// of first purchase.
func MaterialUsage(l *model.Ledger) []ProjectMaterials {
	usage := make([]ProjectMaterials, 0, len(l.Projects))
	for _, p := range l.Projects {
		var (
			lines []MaterialLine
			index = map[string]int{}
			total = decimal.Zero
		)
		for _, m := range l.Materials {
			if m.ProjectID != p.ID {
				continue
			}
			i, ok := index[m.Material]
			if !ok {
				i = len(lines)
				index[m.Material] = i
				lines = append(lines, MaterialLine{Name: m.Material, Unit: m.Unit})
			}
			lines[i].Quantity = lines[i].Quantity.Add(m.Quantity)
			lines[i].Total = lines[i].Total.Add(m.TotalAmount)
			total = total.Add(m.TotalAmount)
		}
		usage = append(usage, ProjectMaterials{Project: p, Lines: lines, TotalCost: total})
	}
	return usage
}

// PendingBill is an unpaid bill with what is still owed.
type PendingBill struct {
	Bill    model.CustomerBill
	Pending decimal.Decimal
}

// CustomerPendingReport lists unpaid bills, largest outstanding first.
func CustomerPendingReport(l *model.Ledger) []PendingBill {
	var rows []PendingBill
	for _, b := range l.Bills {
		if b.Status == model.StatusPaid {
			continue
		}
		rows = append(rows, PendingBill{Bill: b, Pending: BillPending(b)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Pending.GreaterThan(rows[j].Pending)
	})
	return rows
}

// PendingWork is unpaid contractor work with what is still owed.
type PendingWork struct {
	Work    model.ContractorWork
	Pending decimal.Decimal
}

// ContractorPendingReport lists unpaid contractor work, largest outstanding first.
func ContractorPendingReport(l *model.Ledger) []PendingWork {
	var rows []PendingWork
	for _, w := range l.Contractors {
		if w.Status == model.StatusPaid {
			continue
		}
		rows = append(rows, PendingWork{Work: w, Pending: WorkPending(w)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Pending.GreaterThan(rows[j].Pending)
	})
	return rows
}

// SupplierBalance is a supplier's totals derived from purchases and payments.
type SupplierBalance struct {
	Supplier model.Supplier
	Pending  decimal.Decimal
}

// SupplierBalances derives every supplier's purchased, paid and pending
// amounts from the purchase and payment collections.
func SupplierBalances(l *model.Ledger) []SupplierBalance {
	rows := make([]SupplierBalance, 0, len(l.Suppliers))
	for _, s := range l.Suppliers {
		s = SupplierTotals(l, s)
		rows = append(rows, SupplierBalance{Supplier: s, Pending: SupplierPending(s)})
	}
	return rows
}

// SalarySplit is the monthly salary bill split by where it is booked.
type SalarySplit struct {
	Project decimal.Decimal
	Office  decimal.Decimal
}

// SalaryCostSplit sums monthly salaries of project and office staff.
func SalaryCostSplit(l *model.Ledger) SalarySplit {
	var split SalarySplit
	for _, e := range l.Employees {
		if e.AssignedTo == model.AssignedProject {
			split.Project = split.Project.Add(e.Salary)
		} else {
			split.Office = split.Office.Add(e.Salary)
		}
	}
	return split
}

// Summary holds the dashboard figures.
type Summary struct {
	TotalBilled          decimal.Decimal
	TotalReceived        decimal.Decimal
	TotalProfit          decimal.Decimal
	PendingFromCustomers decimal.Decimal
	PendingToContractors decimal.Decimal
	BankBalance          decimal.Decimal
	CashBalance          decimal.Decimal
	RecentPendingBills   []model.CustomerBill
	ActiveProjects       int
	TotalProjects        int
}

// Summarize computes the dashboard figures.
func Summarize(l *model.Ledger) Summary {
	s := Summary{
		TotalProjects:        len(l.Projects),
		TotalBilled:          sum(l.Projects, func(p model.Project) decimal.Decimal { return p.TotalBilled }),
		TotalReceived:        sum(l.Projects, func(p model.Project) decimal.Decimal { return p.TotalReceived }),
		TotalProfit:          sum(l.Projects, Profit),
		PendingFromCustomers: sum(l.Bills, BillPending),
		PendingToContractors: sum(l.Contractors, WorkPending),
		BankBalance:          BankBalance(l.Transactions),
		CashBalance:          CashBalance(l.Transactions),
	}
	for _, p := range l.Projects {
		if p.Status == model.ProjectActive {
			s.ActiveProjects++
		}
	}
	for _, b := range l.Bills {
		if b.Status != model.StatusPaid && len(s.RecentPendingBills) < 5 {
			s.RecentPendingBills = append(s.RecentPendingBills, b)
		}
	}
	return s
}
