package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/buildtrack/internal/model"
)

// ProjectTotals recomputes the cached totals of p from the ledger's child
// collections. TotalOtherCost has no child collection and is kept as is.
func ProjectTotals(l *model.Ledger, p model.Project) model.Project {
	p.TotalBilled = decimal.Zero
	p.TotalReceived = decimal.Zero
	for _, b := range l.Bills {
		if b.ProjectID == p.ID {
			p.TotalBilled = p.TotalBilled.Add(b.Amount)
			p.TotalReceived = p.TotalReceived.Add(b.AmountReceived)
		}
	}

	p.TotalMaterialCost = decimal.Zero
	for _, m := range l.Materials {
		if m.ProjectID == p.ID {
			p.TotalMaterialCost = p.TotalMaterialCost.Add(m.TotalAmount)
		}
	}

	p.TotalLabourCost = decimal.Zero
	for _, w := range l.Contractors {
		if w.ProjectID == p.ID {
			p.TotalLabourCost = p.TotalLabourCost.Add(w.WorkValue)
		}
	}
	for _, s := range l.SalaryPayments {
		if s.CostType == model.AssignedProject && s.ProjectID == p.ID {
			p.TotalLabourCost = p.TotalLabourCost.Add(s.Amount)
		}
	}

	return p
}

// SupplierTotals recomputes what has been bought from and paid to s.
func SupplierTotals(l *model.Ledger, s model.Supplier) model.Supplier {
	s.TotalPurchased = decimal.Zero
	for _, m := range l.Materials {
		if m.SupplierID == s.ID {
			s.TotalPurchased = s.TotalPurchased.Add(m.TotalAmount)
		}
	}

	s.TotalPaid = decimal.Zero
	for _, p := range l.SupplierPayments {
		if p.SupplierID == s.ID {
			s.TotalPaid = s.TotalPaid.Add(p.Amount)
		}
	}

	return s
}

// SameProjectTotals reports whether two projects carry identical cached totals.
func SameProjectTotals(a, b model.Project) bool {
	return a.TotalBilled.Equal(b.TotalBilled) &&
		a.TotalReceived.Equal(b.TotalReceived) &&
		a.TotalMaterialCost.Equal(b.TotalMaterialCost) &&
		a.TotalLabourCost.Equal(b.TotalLabourCost) &&
		a.TotalOtherCost.Equal(b.TotalOtherCost)
}

// SameSupplierTotals reports whether two suppliers carry identical cached totals.
func SameSupplierTotals(a, b model.Supplier) bool {
	return a.TotalPurchased.Equal(b.TotalPurchased) && a.TotalPaid.Equal(b.TotalPaid)
}
