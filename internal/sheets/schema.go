package sheets

import "fmt"

// Collection names one of the ledger's record collections. Each collection
// is stored in its own tab with a fixed header row.
type Collection string

// The collections, keyed the way the wire contract names them.
const (
	Projects           Collection = "projects"
	Materials          Collection = "materials"
	Bills              Collection = "bills"
	Payments           Collection = "payments"
	Contractors        Collection = "contractors"
	ContractorPayments Collection = "contractorPayments"
	Employees          Collection = "employees"
	SalaryPayments     Collection = "salaryPayments"
	Transactions       Collection = "transactions"
	MaterialItems      Collection = "materialItems"
	Suppliers          Collection = "suppliers"
	SupplierPayments   Collection = "supplierPayments"
)

type tab struct {
	name    string
	headers []string
}

// Headers come from the codecs, so a row and its header cannot disagree.
// Column order is the cell order of every stored row. Columns may only ever
// be appended.
var schema = map[Collection]tab{
	Projects:           {"Projects", projectCodec.headers()},
	Materials:          {"Materials", materialCodec.headers()},
	Bills:              {"Bills", billCodec.headers()},
	Payments:           {"Payments", paymentCodec.headers()},
	Contractors:        {"ContractorWorks", contractorCodec.headers()},
	ContractorPayments: {"ContractorPayments", contractorPaymentCodec.headers()},
	Employees:          {"Employees", employeeCodec.headers()},
	SalaryPayments:     {"SalaryPayments", salaryCodec.headers()},
	Transactions:       {"Transactions", transactionCodec.headers()},
	MaterialItems:      {"MaterialItems", materialItemCodec.headers()},
	Suppliers:          {"Suppliers", supplierCodec.headers()},
	SupplierPayments:   {"SupplierPayments", supplierPaymentCodec.headers()},
}

var order = []Collection{
	Projects, Materials, Bills, Payments, Contractors, ContractorPayments,
	Employees, SalaryPayments, Transactions, MaterialItems, Suppliers, SupplierPayments,
}

// Collections returns every collection in tab order.
func Collections() []Collection {
	out := make([]Collection, len(order))
	copy(out, order)
	return out
}

// ParseCollection returns the collection with the given key.
func ParseCollection(key string) (Collection, error) {
	if _, ok := schema[Collection(key)]; !ok {
		return "", fmt.Errorf("Invalid sheetType: %s", key)
	}
	return Collection(key), nil
}

// Valid reports whether c is a known collection.
func (c Collection) Valid() bool {
	_, ok := schema[c]
	return ok
}

// SheetName is the title of the tab holding c.
func (c Collection) SheetName() string {
	return schema[c].name
}

// Headers returns the header row of c.
func (c Collection) Headers() []string {
	h := schema[c].headers
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// Width is the number of columns of c.
func (c Collection) Width() int {
	return len(schema[c].headers)
}

// DataRange is the A1 range covering every column of c.
func (c Collection) DataRange() string {
	return fmt.Sprintf("%s!A:%s", c.SheetName(), columnName(c.Width()))
}

// RowRange is the A1 anchor of the data row at rowIndex. Row 1 holds the
// headers, so the first data row is row 2.
func (c Collection) RowRange(rowIndex int) string {
	return fmt.Sprintf("%s!A%d", c.SheetName(), rowIndex+2)
}

func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
