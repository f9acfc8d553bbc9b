package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/buildtrack/internal/model"
)

// SettlementStatus derives the status of a bill or work from the settled and
// total amounts.
func SettlementStatus(settled, total decimal.Decimal) model.PaymentStatus {
	switch {
	case settled.GreaterThanOrEqual(total):
		return model.StatusPaid
	case settled.IsPositive():
		return model.StatusPartial
	default:
		return model.StatusPending
	}
}

// ApplyCustomerPayment returns the bill after receiving amount against it.
func ApplyCustomerPayment(bill model.CustomerBill, amount decimal.Decimal) model.CustomerBill {
	bill.AmountReceived = bill.AmountReceived.Add(amount)
	bill.Status = SettlementStatus(bill.AmountReceived, bill.Amount)
	return bill
}

// ApplyContractorPayment returns the work after paying amount against it.
func ApplyContractorPayment(work model.ContractorWork, amount decimal.Decimal) model.ContractorWork {
	work.AmountPaid = work.AmountPaid.Add(amount)
	work.Status = SettlementStatus(work.AmountPaid, work.WorkValue)
	return work
}
