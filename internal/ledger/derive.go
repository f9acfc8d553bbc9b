// Package ledger holds the pure derivations over a model.Ledger: balances,
// profit, pending amounts, payment application and report rows.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/buildtrack/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Profit is billed minus material, labour and other cost.
func Profit(p model.Project) decimal.Decimal {
	return p.TotalBilled.
		Sub(p.TotalMaterialCost).
		Sub(p.TotalLabourCost).
		Sub(p.TotalOtherCost)
}

// ProfitPercent is profit as a percentage of billed, or zero when nothing
// has been billed.
func ProfitPercent(p model.Project) decimal.Decimal {
	if p.TotalBilled.IsZero() {
		return decimal.Zero
	}
	return Profit(p).Div(p.TotalBilled).Mul(hundred)
}

// BankBalance is the signed sum of bank and UPI transactions.
func BankBalance(txns []model.BankTransaction) decimal.Decimal {
	return balance(txns, model.PaymentMode.IsBank)
}

// CashBalance is the signed sum of cash transactions.
func CashBalance(txns []model.BankTransaction) decimal.Decimal {
	return balance(txns, func(m model.PaymentMode) bool { return m == model.ModeCash })
}

func balance(txns []model.BankTransaction, include func(model.PaymentMode) bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if !include(t.Mode) {
			continue
		}
		if t.Type == model.Withdrawal {
			total = total.Sub(t.Amount)
		} else {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// BillPending is what the customer still owes on a bill. It is not clamped.
func BillPending(b model.CustomerBill) decimal.Decimal {
	return b.Amount.Sub(b.AmountReceived)
}

// WorkPending is what is still owed to the contractor. It is not clamped.
func WorkPending(w model.ContractorWork) decimal.Decimal {
	return w.WorkValue.Sub(w.AmountPaid)
}

// CustomerPending is billed minus received for a project.
func CustomerPending(p model.Project) decimal.Decimal {
	return p.TotalBilled.Sub(p.TotalReceived)
}

// SupplierPending is purchased minus paid for a supplier.
func SupplierPending(s model.Supplier) decimal.Decimal {
	return s.TotalPurchased.Sub(s.TotalPaid)
}

func sum[T any](items []T, value func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(value(item))
	}
	return total
}
