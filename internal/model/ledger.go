// Package model defines the ledger records tracked for a construction business.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a construction job billed to a customer. The Total* fields are
// cached aggregates of the project's child records.
type Project struct {
	StartDate         time.Time
	TotalBilled       decimal.Decimal `validate:"gte=0"`
	TotalReceived     decimal.Decimal `validate:"gte=0"`
	TotalMaterialCost decimal.Decimal `validate:"gte=0"`
	TotalLabourCost   decimal.Decimal `validate:"gte=0"`
	TotalOtherCost    decimal.Decimal `validate:"gte=0"`
	ID                string          `validate:"required"`
	Name              string          `validate:"required"`
	Customer          string
	Status            ProjectStatus `validate:"oneof=active completed on-hold"`
}

// MaterialItem is a catalog entry for something that gets purchased.
type MaterialItem struct {
	ID          string `validate:"required"`
	Name        string `validate:"required"`
	Unit        string
	Description string
}

// Supplier sells materials. TotalPurchased and TotalPaid are cached.
type Supplier struct {
	TotalPurchased decimal.Decimal `validate:"gte=0"`
	TotalPaid      decimal.Decimal `validate:"gte=0"`
	ID             string          `validate:"required"`
	Name           string          `validate:"required"`
	Phone          string
	Address        string
}

// MaterialPurchase is a delivery of material to a project.
type MaterialPurchase struct {
	Date           time.Time
	Quantity       decimal.Decimal `validate:"gte=0"`
	UnitPrice      decimal.Decimal `validate:"gte=0"`
	TotalAmount    decimal.Decimal `validate:"gte=0"`
	AmountPaid     decimal.Decimal `validate:"gte=0"`
	ID             string          `validate:"required"`
	ProjectID      string          `validate:"required"`
	ProjectName    string
	SupplierID     string
	Supplier       string
	MaterialItemID string
	Material       string `validate:"required"`
	Unit           string
}

// SupplierPayment is money paid to a supplier.
type SupplierPayment struct {
	Date         time.Time
	Amount       decimal.Decimal `validate:"gte=0"`
	ID           string          `validate:"required"`
	SupplierID   string          `validate:"required"`
	SupplierName string
	PaymentMode  PaymentMode `validate:"oneof=cash bank upi"`
	Description  string
}

// CustomerBill is an invoice raised against a project.
type CustomerBill struct {
	Date           time.Time
	Amount         decimal.Decimal `validate:"gte=0"`
	AmountReceived decimal.Decimal `validate:"gte=0"`
	ID             string          `validate:"required"`
	BillNumber     string
	ProjectID      string `validate:"required"`
	ProjectName    string
	Customer       string
	Description    string
	Status         PaymentStatus `validate:"oneof=pending partial paid"`
}

// CustomerPayment is money received against exactly one bill.
type CustomerPayment struct {
	Date        time.Time
	Amount      decimal.Decimal `validate:"gte=0"`
	ID          string          `validate:"required"`
	BillID      string          `validate:"required"`
	BillNumber  string
	ProjectID   string
	ProjectName string
	Customer    string
	PaymentMode PaymentMode `validate:"oneof=cash bank upi"`
}

// ContractorWork is work done by a contractor on a project and owed to them.
type ContractorWork struct {
	Date           time.Time
	WorkValue      decimal.Decimal `validate:"gte=0"`
	AmountPaid     decimal.Decimal `validate:"gte=0"`
	ID             string          `validate:"required"`
	ContractorID   string
	ContractorName string `validate:"required"`
	ContractorType ContractorType `validate:"oneof=labour machine"`
	ProjectID      string         `validate:"required"`
	ProjectName    string
	Description    string
	Status         PaymentStatus `validate:"oneof=pending partial paid"`
}

// ContractorPayment is money paid against one ContractorWork.
type ContractorPayment struct {
	Date           time.Time
	Amount         decimal.Decimal `validate:"gte=0"`
	ID             string          `validate:"required"`
	WorkID         string          `validate:"required"`
	ContractorID   string
	ContractorName string
	ProjectID      string
	ProjectName    string
	PaymentMode    PaymentMode `validate:"oneof=cash bank upi"`
}

// Employee is a salaried staff member assigned to a project or the office.
type Employee struct {
	Salary      decimal.Decimal `validate:"gte=0"`
	ID          string          `validate:"required"`
	Name        string          `validate:"required"`
	Role        string
	AssignedTo  Assignment `validate:"oneof=project office"`
	ProjectID   string     `validate:"required_if=AssignedTo project"`
	ProjectName string
}

// SalaryPayment snapshots the employee's assignment at the time of payment.
type SalaryPayment struct {
	Date         time.Time
	Amount       decimal.Decimal `validate:"gte=0"`
	ID           string          `validate:"required"`
	EmployeeID   string          `validate:"required"`
	EmployeeName string
	Month        string
	CostType     Assignment `validate:"oneof=project office"`
	PaymentMode  PaymentMode `validate:"oneof=cash bank upi"`
	ProjectID    string
	ProjectName  string
}

// BankTransaction is a deposit or withdrawal on the bank or cash account.
type BankTransaction struct {
	Date        time.Time
	Amount      decimal.Decimal `validate:"gte=0"`
	ID          string          `validate:"required"`
	Type        TransactionType `validate:"oneof=deposit withdrawal"`
	Description string
	Mode        PaymentMode `validate:"oneof=cash bank upi"`
}

// Ledger is the full set of collections for one business.
type Ledger struct {
	Projects           []Project
	Materials          []MaterialPurchase
	Bills              []CustomerBill
	Payments           []CustomerPayment
	Contractors        []ContractorWork
	ContractorPayments []ContractorPayment
	Employees          []Employee
	SalaryPayments     []SalaryPayment
	Transactions       []BankTransaction
	MaterialItems      []MaterialItem
	Suppliers          []Supplier
	SupplierPayments   []SupplierPayment
}

// Clone returns a copy whose slices can be modified without touching l.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return &Ledger{}
	}
	return &Ledger{
		Projects:           clone(l.Projects),
		Materials:          clone(l.Materials),
		Bills:              clone(l.Bills),
		Payments:           clone(l.Payments),
		Contractors:        clone(l.Contractors),
		ContractorPayments: clone(l.ContractorPayments),
		Employees:          clone(l.Employees),
		SalaryPayments:     clone(l.SalaryPayments),
		Transactions:       clone(l.Transactions),
		MaterialItems:      clone(l.MaterialItems),
		Suppliers:          clone(l.Suppliers),
		SupplierPayments:   clone(l.SupplierPayments),
	}
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// Project returns the project with the given id.
func (l *Ledger) Project(id string) (Project, bool) {
	return find(l.Projects, func(p Project) bool { return p.ID == id })
}

// Supplier returns the supplier with the given id.
func (l *Ledger) Supplier(id string) (Supplier, bool) {
	return find(l.Suppliers, func(s Supplier) bool { return s.ID == id })
}

// MaterialItem returns the catalog item with the given id.
func (l *Ledger) MaterialItem(id string) (MaterialItem, bool) {
	return find(l.MaterialItems, func(m MaterialItem) bool { return m.ID == id })
}

// Bill returns the bill with the given id.
func (l *Ledger) Bill(id string) (CustomerBill, bool) {
	return find(l.Bills, func(b CustomerBill) bool { return b.ID == id })
}

// Work returns the contractor work with the given id.
func (l *Ledger) Work(id string) (ContractorWork, bool) {
	return find(l.Contractors, func(w ContractorWork) bool { return w.ID == id })
}

// Employee returns the employee with the given id.
func (l *Ledger) Employee(id string) (Employee, bool) {
	return find(l.Employees, func(e Employee) bool { return e.ID == id })
}

func find[T any](s []T, match func(T) bool) (T, bool) {
	for _, v := range s {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
