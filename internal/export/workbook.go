// Package export writes the ledger reports to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/buildtrack/internal/ledger"
	"github.com/Veraticus/buildtrack/internal/model"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

// Sheet names, in workbook order.
const (
	ProjectPLSheet         = "Project P&L"
	MaterialUsageSheet     = "Material Usage"
	CustomerPendingSheet   = "Customer Pending"
	ContractorPendingSheet = "Contractor Pending"
	SupplierBalancesSheet  = "Supplier Balances"
	CashBankSheet          = "Cash & Bank"
)

type sheet struct {
	name    string
	headers []string
	rows    func(l *model.Ledger) [][]any
}

var sheetsInOrder = []sheet{
	{ProjectPLSheet, []string{"Project", "Customer", "Status", "Billed", "Received", "Material", "Labour", "Other", "Profit", "Profit %", "Pending"}, projectRows},
	{MaterialUsageSheet, []string{"Project", "Material", "Unit", "Quantity", "Total"}, materialRows},
	{CustomerPendingSheet, []string{"Bill", "Date", "Project", "Customer", "Amount", "Received", "Pending", "Status"}, customerRows},
	{ContractorPendingSheet, []string{"Contractor", "Type", "Project", "Date", "Work Value", "Paid", "Pending", "Status"}, contractorRows},
	{SupplierBalancesSheet, []string{"Supplier", "Phone", "Purchased", "Paid", "Pending"}, supplierRows},
	{CashBankSheet, []string{"Date", "Type", "Mode", "Description", "Amount"}, cashBankRows},
}

// Workbook builds one sheet per report. The caller closes the file.
func Workbook(l *model.Ledger) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheetsInOrder {
		if i == 0 {
			err = f.SetSheetName("Sheet1", s.name)
		} else {
			_, err = f.NewSheet(s.name)
		}
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, l, header); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, l *model.Ledger) error {
	f, err := Workbook(l)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, l *model.Ledger, header int) error {
	headers := make([]any, len(s.headers))
	for i, h := range s.headers {
		headers[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &headers); err != nil {
		return fmt.Errorf("sheet %s: failed to write headers: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, header); err != nil {
		return fmt.Errorf("sheet %s: failed to style headers: %w", s.name, err)
	}

	for i, row := range s.rows(l) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("sheet %s: failed to write row %d: %w", s.name, i+2, err)
		}
	}
	return nil
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func projectRows(l *model.Ledger) [][]any {
	var rows [][]any
	for _, r := range ledger.ProjectPL(l) {
		p := r.Project
		rows = append(rows, []any{
			p.Name, p.Customer, string(p.Status),
			amount(p.TotalBilled), amount(p.TotalReceived),
			amount(p.TotalMaterialCost), amount(p.TotalLabourCost), amount(p.TotalOtherCost),
			amount(r.Profit), amount(r.ProfitPercent), amount(r.CustomerPending),
		})
	}
	return rows
}

func materialRows(l *model.Ledger) [][]any {
	var rows [][]any
	for _, pm := range ledger.MaterialUsage(l) {
		for _, line := range pm.Lines {
			rows = append(rows, []any{pm.Project.Name, line.Name, line.Unit, amount(line.Quantity), amount(line.Total)})
		}
	}
	return rows
}

func customerRows(l *model.Ledger) [][]any {
	var rows [][]any
	for _, r := range ledger.CustomerPendingReport(l) {
		b := r.Bill
		rows = append(rows, []any{
			b.BillNumber, sheets.FormatDay(b.Date), b.ProjectName, b.Customer,
			amount(b.Amount), amount(b.AmountReceived), amount(r.Pending), string(b.Status),
		})
	}
	return rows
}

func contractorRows(l *model.Ledger) [][]any {
	var rows [][]any
	for _, r := range ledger.ContractorPendingReport(l) {
		w := r.Work
		rows = append(rows, []any{
			w.ContractorName, string(w.ContractorType), w.ProjectName, sheets.FormatDay(w.Date),
			amount(w.WorkValue), amount(w.AmountPaid), amount(r.Pending), string(w.Status),
		})
	}
	return rows
}

func supplierRows(l *model.Ledger) [][]any {
	var rows [][]any
	for _, r := range ledger.SupplierBalances(l) {
		s := r.Supplier
		rows = append(rows, []any{s.Name, s.Phone, amount(s.TotalPurchased), amount(s.TotalPaid), amount(r.Pending)})
	}
	return rows
}

// cashBankRows lists every transaction, withdrawals negative, followed by
// the bank and cash balances.
func cashBankRows(l *model.Ledger) [][]any {
	rows := make([][]any, 0, len(l.Transactions)+3)
	for _, t := range l.Transactions {
		value := t.Amount
		if t.Type == model.Withdrawal {
			value = value.Neg()
		}
		rows = append(rows, []any{sheets.FormatDay(t.Date), string(t.Type), string(t.Mode), t.Description, amount(value)})
	}
	rows = append(rows,
		[]any{},
		[]any{"", "", "", "Bank balance", amount(ledger.BankBalance(l.Transactions))},
		[]any{"", "", "", "Cash balance", amount(ledger.CashBalance(l.Transactions))},
	)
	return rows
}
