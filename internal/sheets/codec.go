package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/buildtrack/internal/model"
)

// Row is one stored row, one cell per header column.
type Row []string

// Record is one stored row keyed by header name.
type Record map[string]string

// Snapshot holds every collection's records as read from the remote.
type Snapshot map[Collection][]Record

// field maps one column to one struct field. The accessor returns a pointer
// so the same definition serves both directions.
type field[T any] struct {
	get  func(*T) string
	set  func(*T, string)
	name string
}

type codec[T any] []field[T]

func (c codec[T]) headers() []string {
	h := make([]string, len(c))
	for i, f := range c {
		h[i] = f.name
	}
	return h
}

func (c codec[T]) encode(v T) Row {
	row := make(Row, len(c))
	for i, f := range c {
		row[i] = f.get(&v)
	}
	return row
}

func (c codec[T]) decode(r Record) T {
	var v T
	for _, f := range c {
		f.set(&v, strings.TrimSpace(r[f.name]))
	}
	return v
}

func (c codec[T]) decodeAll(records []Record) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, c.decode(r))
	}
	return out
}

func text[T any](name string, p func(*T) *string) field[T] {
	return field[T]{
		name: name,
		get:  func(v *T) string { return *p(v) },
		set:  func(v *T, s string) { *p(v) = s },
	}
}

func money[T any](name string, p func(*T) *decimal.Decimal) field[T] {
	return field[T]{
		name: name,
		get:  func(v *T) string { return p(v).String() },
		set:  func(v *T, s string) { *p(v) = ParseMoney(s) },
	}
}

func day[T any](name string, p func(*T) *time.Time) field[T] {
	return field[T]{
		name: name,
		get:  func(v *T) string { return FormatDay(*p(v)) },
		set:  func(v *T, s string) { *p(v) = ParseDay(s) },
	}
}

func month[T any](name string, p func(*T) *string) field[T] {
	return field[T]{
		name: name,
		get:  func(v *T) string { return *p(v) },
		set:  func(v *T, s string) { *p(v) = parseMonth(s) },
	}
}

func enum[T any, E ~string](name string, p func(*T) *E, parse func(string) E) field[T] {
	return field[T]{
		name: name,
		get:  func(v *T) string { return string(*p(v)) },
		set:  func(v *T, s string) { *p(v) = parse(s) },
	}
}

func mode(fallback model.PaymentMode) func(string) model.PaymentMode {
	return func(s string) model.PaymentMode { return model.ParsePaymentMode(s, fallback) }
}

// ParseMoney decodes a stored amount. Unparseable cells decode to zero.
func ParseMoney(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// spreadsheet serial day zero
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDay decodes a stored date. Cells the spreadsheet converted to serial
// day numbers are accepted. Anything else decodes to the zero time.
func ParseDay(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		return serialEpoch.AddDate(0, 0, int(math.Floor(serial)))
	}
	return time.Time{}
}

// FormatDay encodes a date as YYYY-MM-DD, or "" for the zero time.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func parseMonth(s string) string {
	if _, err := time.Parse("2006-01", s); err == nil {
		return s
	}
	if t := ParseDay(s); !t.IsZero() {
		return t.Format("2006-01")
	}
	return s
}

var projectCodec = codec[model.Project]{
	text("id", func(v *model.Project) *string { return &v.ID }),
	text("name", func(v *model.Project) *string { return &v.Name }),
	text("customer", func(v *model.Project) *string { return &v.Customer }),
	day("startDate", func(v *model.Project) *time.Time { return &v.StartDate }),
	enum("status", func(v *model.Project) *model.ProjectStatus { return &v.Status }, model.ParseProjectStatus),
	money("totalBilled", func(v *model.Project) *decimal.Decimal { return &v.TotalBilled }),
	money("totalReceived", func(v *model.Project) *decimal.Decimal { return &v.TotalReceived }),
	money("totalMaterialCost", func(v *model.Project) *decimal.Decimal { return &v.TotalMaterialCost }),
	money("totalLabourCost", func(v *model.Project) *decimal.Decimal { return &v.TotalLabourCost }),
	money("totalOtherCost", func(v *model.Project) *decimal.Decimal { return &v.TotalOtherCost }),
}

var materialCodec = codec[model.MaterialPurchase]{
	text("id", func(v *model.MaterialPurchase) *string { return &v.ID }),
	day("date", func(v *model.MaterialPurchase) *time.Time { return &v.Date }),
	text("projectId", func(v *model.MaterialPurchase) *string { return &v.ProjectID }),
	text("projectName", func(v *model.MaterialPurchase) *string { return &v.ProjectName }),
	text("supplier", func(v *model.MaterialPurchase) *string { return &v.Supplier }),
	text("material", func(v *model.MaterialPurchase) *string { return &v.Material }),
	text("unit", func(v *model.MaterialPurchase) *string { return &v.Unit }),
	money("quantity", func(v *model.MaterialPurchase) *decimal.Decimal { return &v.Quantity }),
	money("unitPrice", func(v *model.MaterialPurchase) *decimal.Decimal { return &v.UnitPrice }),
	money("totalAmount", func(v *model.MaterialPurchase) *decimal.Decimal { return &v.TotalAmount }),
	text("supplierId", func(v *model.MaterialPurchase) *string { return &v.SupplierID }),
	text("materialItemId", func(v *model.MaterialPurchase) *string { return &v.MaterialItemID }),
	money("amountPaid", func(v *model.MaterialPurchase) *decimal.Decimal { return &v.AmountPaid }),
}

var billCodec = codec[model.CustomerBill]{
	text("id", func(v *model.CustomerBill) *string { return &v.ID }),
	text("billNumber", func(v *model.CustomerBill) *string { return &v.BillNumber }),
	day("date", func(v *model.CustomerBill) *time.Time { return &v.Date }),
	text("projectId", func(v *model.CustomerBill) *string { return &v.ProjectID }),
	text("projectName", func(v *model.CustomerBill) *string { return &v.ProjectName }),
	text("customer", func(v *model.CustomerBill) *string { return &v.Customer }),
	text("description", func(v *model.CustomerBill) *string { return &v.Description }),
	money("amount", func(v *model.CustomerBill) *decimal.Decimal { return &v.Amount }),
	money("amountReceived", func(v *model.CustomerBill) *decimal.Decimal { return &v.AmountReceived }),
	enum("status", func(v *model.CustomerBill) *model.PaymentStatus { return &v.Status }, model.ParsePaymentStatus),
}

var paymentCodec = codec[model.CustomerPayment]{
	text("id", func(v *model.CustomerPayment) *string { return &v.ID }),
	day("date", func(v *model.CustomerPayment) *time.Time { return &v.Date }),
	text("billId", func(v *model.CustomerPayment) *string { return &v.BillID }),
	text("billNumber", func(v *model.CustomerPayment) *string { return &v.BillNumber }),
	text("projectId", func(v *model.CustomerPayment) *string { return &v.ProjectID }),
	text("projectName", func(v *model.CustomerPayment) *string { return &v.ProjectName }),
	text("customer", func(v *model.CustomerPayment) *string { return &v.Customer }),
	enum("paymentMode", func(v *model.CustomerPayment) *model.PaymentMode { return &v.PaymentMode }, mode(model.ModeBank)),
	money("amount", func(v *model.CustomerPayment) *decimal.Decimal { return &v.Amount }),
}

var contractorCodec = codec[model.ContractorWork]{
	text("id", func(v *model.ContractorWork) *string { return &v.ID }),
	day("date", func(v *model.ContractorWork) *time.Time { return &v.Date }),
	text("contractorId", func(v *model.ContractorWork) *string { return &v.ContractorID }),
	text("contractorName", func(v *model.ContractorWork) *string { return &v.ContractorName }),
	enum("contractorType", func(v *model.ContractorWork) *model.ContractorType { return &v.ContractorType }, model.ParseContractorType),
	text("projectId", func(v *model.ContractorWork) *string { return &v.ProjectID }),
	text("projectName", func(v *model.ContractorWork) *string { return &v.ProjectName }),
	text("description", func(v *model.ContractorWork) *string { return &v.Description }),
	money("workValue", func(v *model.ContractorWork) *decimal.Decimal { return &v.WorkValue }),
	money("amountPaid", func(v *model.ContractorWork) *decimal.Decimal { return &v.AmountPaid }),
	enum("status", func(v *model.ContractorWork) *model.PaymentStatus { return &v.Status }, model.ParsePaymentStatus),
}

var contractorPaymentCodec = codec[model.ContractorPayment]{
	text("id", func(v *model.ContractorPayment) *string { return &v.ID }),
	day("date", func(v *model.ContractorPayment) *time.Time { return &v.Date }),
	text("workId", func(v *model.ContractorPayment) *string { return &v.WorkID }),
	text("contractorId", func(v *model.ContractorPayment) *string { return &v.ContractorID }),
	text("contractorName", func(v *model.ContractorPayment) *string { return &v.ContractorName }),
	text("projectId", func(v *model.ContractorPayment) *string { return &v.ProjectID }),
	text("projectName", func(v *model.ContractorPayment) *string { return &v.ProjectName }),
	enum("paymentMode", func(v *model.ContractorPayment) *model.PaymentMode { return &v.PaymentMode }, mode(model.ModeCash)),
	money("amount", func(v *model.ContractorPayment) *decimal.Decimal { return &v.Amount }),
}

var employeeCodec = codec[model.Employee]{
	text("id", func(v *model.Employee) *string { return &v.ID }),
	text("name", func(v *model.Employee) *string { return &v.Name }),
	text("role", func(v *model.Employee) *string { return &v.Role }),
	money("salary", func(v *model.Employee) *decimal.Decimal { return &v.Salary }),
	enum("assignedTo", func(v *model.Employee) *model.Assignment { return &v.AssignedTo }, model.ParseAssignment),
	text("projectId", func(v *model.Employee) *string { return &v.ProjectID }),
	text("projectName", func(v *model.Employee) *string { return &v.ProjectName }),
}

var salaryCodec = codec[model.SalaryPayment]{
	text("id", func(v *model.SalaryPayment) *string { return &v.ID }),
	day("date", func(v *model.SalaryPayment) *time.Time { return &v.Date }),
	text("employeeId", func(v *model.SalaryPayment) *string { return &v.EmployeeID }),
	text("employeeName", func(v *model.SalaryPayment) *string { return &v.EmployeeName }),
	month("month", func(v *model.SalaryPayment) *string { return &v.Month }),
	enum("costType", func(v *model.SalaryPayment) *model.Assignment { return &v.CostType }, model.ParseAssignment),
	enum("paymentMode", func(v *model.SalaryPayment) *model.PaymentMode { return &v.PaymentMode }, mode(model.ModeBank)),
	money("amount", func(v *model.SalaryPayment) *decimal.Decimal { return &v.Amount }),
	text("projectId", func(v *model.SalaryPayment) *string { return &v.ProjectID }),
	text("projectName", func(v *model.SalaryPayment) *string { return &v.ProjectName }),
}

var transactionCodec = codec[model.BankTransaction]{
	text("id", func(v *model.BankTransaction) *string { return &v.ID }),
	day("date", func(v *model.BankTransaction) *time.Time { return &v.Date }),
	enum("type", func(v *model.BankTransaction) *model.TransactionType { return &v.Type }, model.ParseTransactionType),
	text("description", func(v *model.BankTransaction) *string { return &v.Description }),
	money("amount", func(v *model.BankTransaction) *decimal.Decimal { return &v.Amount }),
	enum("mode", func(v *model.BankTransaction) *model.PaymentMode { return &v.Mode }, mode(model.ModeBank)),
}

var materialItemCodec = codec[model.MaterialItem]{
	text("id", func(v *model.MaterialItem) *string { return &v.ID }),
	text("name", func(v *model.MaterialItem) *string { return &v.Name }),
	text("unit", func(v *model.MaterialItem) *string { return &v.Unit }),
	text("description", func(v *model.MaterialItem) *string { return &v.Description }),
}

var supplierCodec = codec[model.Supplier]{
	text("id", func(v *model.Supplier) *string { return &v.ID }),
	text("name", func(v *model.Supplier) *string { return &v.Name }),
	text("phone", func(v *model.Supplier) *string { return &v.Phone }),
	text("address", func(v *model.Supplier) *string { return &v.Address }),
	money("totalPurchased", func(v *model.Supplier) *decimal.Decimal { return &v.TotalPurchased }),
	money("totalPaid", func(v *model.Supplier) *decimal.Decimal { return &v.TotalPaid }),
}

var supplierPaymentCodec = codec[model.SupplierPayment]{
	text("id", func(v *model.SupplierPayment) *string { return &v.ID }),
	day("date", func(v *model.SupplierPayment) *time.Time { return &v.Date }),
	text("supplierId", func(v *model.SupplierPayment) *string { return &v.SupplierID }),
	text("supplierName", func(v *model.SupplierPayment) *string { return &v.SupplierName }),
	money("amount", func(v *model.SupplierPayment) *decimal.Decimal { return &v.Amount }),
	enum("paymentMode", func(v *model.SupplierPayment) *model.PaymentMode { return &v.PaymentMode }, mode(model.ModeBank)),
	text("description", func(v *model.SupplierPayment) *string { return &v.Description }),
}

// Encode serializes a ledger record into its collection's row.
func Encode(record any) (Collection, Row, error) {
	switch v := record.(type) {
	case model.Project:
		return Projects, projectCodec.encode(v), nil
	case model.MaterialPurchase:
		return Materials, materialCodec.encode(v), nil
	case model.CustomerBill:
		return Bills, billCodec.encode(v), nil
	case model.CustomerPayment:
		return Payments, paymentCodec.encode(v), nil
	case model.ContractorWork:
		return Contractors, contractorCodec.encode(v), nil
	case model.ContractorPayment:
		return ContractorPayments, contractorPaymentCodec.encode(v), nil
	case model.Employee:
		return Employees, employeeCodec.encode(v), nil
	case model.SalaryPayment:
		return SalaryPayments, salaryCodec.encode(v), nil
	case model.BankTransaction:
		return Transactions, transactionCodec.encode(v), nil
	case model.MaterialItem:
		return MaterialItems, materialItemCodec.encode(v), nil
	case model.Supplier:
		return Suppliers, supplierCodec.encode(v), nil
	case model.SupplierPayment:
		return SupplierPayments, supplierPaymentCodec.encode(v), nil
	default:
		return "", nil, fmt.Errorf("no collection for %T", record)
	}
}

// DecodeLedger builds a ledger from a snapshot. Missing collections decode
// to empty slices.
func DecodeLedger(s Snapshot) *model.Ledger {
	return &model.Ledger{
		Projects:           projectCodec.decodeAll(s[Projects]),
		Materials:          materialCodec.decodeAll(s[Materials]),
		Bills:              billCodec.decodeAll(s[Bills]),
		Payments:           paymentCodec.decodeAll(s[Payments]),
		Contractors:        contractorCodec.decodeAll(s[Contractors]),
		ContractorPayments: contractorPaymentCodec.decodeAll(s[ContractorPayments]),
		Employees:          employeeCodec.decodeAll(s[Employees]),
		SalaryPayments:     salaryCodec.decodeAll(s[SalaryPayments]),
		Transactions:       transactionCodec.decodeAll(s[Transactions]),
		MaterialItems:      materialItemCodec.decodeAll(s[MaterialItems]),
		Suppliers:          supplierCodec.decodeAll(s[Suppliers]),
		SupplierPayments:   supplierPaymentCodec.decodeAll(s[SupplierPayments]),
	}
}

// EncodeLedger serializes every collection of l into rows.
func EncodeLedger(l *model.Ledger) map[Collection][]Row {
	out := make(map[Collection][]Row, len(order))
	encodeAll(out, Projects, projectCodec, l.Projects)
	encodeAll(out, Materials, materialCodec, l.Materials)
	encodeAll(out, Bills, billCodec, l.Bills)
	encodeAll(out, Payments, paymentCodec, l.Payments)
	encodeAll(out, Contractors, contractorCodec, l.Contractors)
	encodeAll(out, ContractorPayments, contractorPaymentCodec, l.ContractorPayments)
	encodeAll(out, Employees, employeeCodec, l.Employees)
	encodeAll(out, SalaryPayments, salaryCodec, l.SalaryPayments)
	encodeAll(out, Transactions, transactionCodec, l.Transactions)
	encodeAll(out, MaterialItems, materialItemCodec, l.MaterialItems)
	encodeAll(out, Suppliers, supplierCodec, l.Suppliers)
	encodeAll(out, SupplierPayments, supplierPaymentCodec, l.SupplierPayments)
	return out
}

func encodeAll[T any](out map[Collection][]Row, c Collection, cd codec[T], items []T) {
	for _, v := range items {
		out[c] = append(out[c], cd.encode(v))
	}
}

// RowsToSnapshot keys every row by its collection's headers.
func RowsToSnapshot(rows map[Collection][]Row) Snapshot {
	snap := make(Snapshot, len(rows))
	for c, rs := range rows {
		if !c.Valid() {
			continue
		}
		headers := c.Headers()
		records := make([]Record, 0, len(rs))
		for _, r := range rs {
			records = append(records, RowToRecord(headers, r))
		}
		snap[c] = records
	}
	return snap
}

// RowToRecord keys a row's cells by headers. Missing trailing cells are "".
func RowToRecord(headers []string, row []string) Record {
	r := make(Record, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(row) {
			r[h] = row[i]
		} else {
			r[h] = ""
		}
	}
	return r
}

// RecordToRow orders a record's cells by c's headers.
func (c Collection) RecordToRow(r Record) Row {
	h := schema[c].headers
	row := make(Row, len(h))
	for i, name := range h {
		row[i] = r[name]
	}
	return row
}

// ID returns the record's id cell.
func (r Record) ID() string {
	return r["id"]
}
