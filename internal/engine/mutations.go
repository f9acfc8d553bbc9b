package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/ledger"
	"github.com/Veraticus/buildtrack/internal/model"
	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

// change edits a working copy of the ledger and returns the row ops of its
// remote leg. Returning an error discards the copy.
type change func(l *model.Ledger) ([]service.RowOp, error)

// mutate applies fn locally and, when connected, queues and pushes its remote
// leg. A failed push leaves the change applied and queued; it is reported
// through the notifier, not the returned error.
func (e *Engine) mutate(ctx context.Context, fn change) error {
	e.mu.Lock()
	next := e.ledger.Clone()
	ops, err := fn(next)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.ledger = next
	e.saveCache(ctx)

	id := e.spreadsheetID
	if id == "" || len(ops) == 0 {
		e.mu.Unlock()
		return nil
	}
	err = e.enqueue(ctx, ops)
	e.mu.Unlock()

	if err != nil {
		e.notify(service.LevelError, "Sync failed", err.Error())
		return &common.SyncError{Collection: string(ops[0].Collection), RecordID: ops[0].RecordID, Err: err}
	}

	e.remote.Lock()
	defer e.remote.Unlock()

	if _, err := e.flushLocked(ctx, id, nil); err != nil {
		e.logger.Debug("Remote change left queued", "error", err)
	}
	return nil
}

// leg accumulates the row ops of one mutation.
type leg struct {
	err error
	ops []service.RowOp
}

func (b *leg) add(kind sheets.OpKind, id string, record any) {
	if b.err != nil {
		return
	}
	c, row, err := sheets.Encode(record)
	if err != nil {
		b.err = err
		return
	}
	if kind == sheets.OpDelete {
		row = nil
	}
	b.ops = append(b.ops, service.RowOp{Kind: kind, Collection: c, RecordID: id, Row: row})
}

func (b *leg) done() ([]service.RowOp, error) {
	return b.ops, b.err
}

func check(entity, id string, record any) error {
	if err := model.Validate(record); err != nil {
		return common.NewValidationError(entity, id, fmt.Errorf("%w: %w", common.ErrInvalidRecord, err))
	}
	return nil
}

func duplicate(entity, id string) error {
	return common.NewValidationError(entity, id, fmt.Errorf("%w: id already exists", common.ErrInvalidRecord))
}

func missing(entity, id, relation, ref string) error {
	return common.NewValidationError(entity, id, fmt.Errorf("%s %q: %w", relation, ref, common.ErrNotFound))
}

func referenced(entity, id string, refs []string) error {
	return common.NewValidationError(entity, id, fmt.Errorf("%w: %s", common.ErrReferenced, strings.Join(refs, ", ")))
}

// dep is a count of dependent records of one kind.
type dep struct {
	name string
	n    int
}

// refs describes the non-zero dependent counts, e.g. "2 bills".
func refs(deps ...dep) []string {
	var out []string
	for _, d := range deps {
		if d.n > 0 {
			out = append(out, fmt.Sprintf("%d %s", d.n, d.name))
		}
	}
	return out
}

func count[T any](s []T, match func(T) bool) int {
	n := 0
	for _, v := range s {
		if match(v) {
			n++
		}
	}
	return n
}

func indexByID[T any](s []T, id string, key func(T) string) int {
	return slices.IndexFunc(s, func(v T) bool { return key(v) == id })
}

func projectID(p model.Project) string { return p.ID }
func itemID(m model.MaterialItem) string { return m.ID }
func supplierID(s model.Supplier) string { return s.ID }
func billID(b model.CustomerBill) string { return b.ID }
func workID(w model.ContractorWork) string { return w.ID }
func transactionID(t model.BankTransaction) string { return t.ID }

// refreshProject recomputes a project's cached totals and queues its row
// update when they changed.
func refreshProject(l *model.Ledger, b *leg, id string) {
	i := indexByID(l.Projects, id, projectID)
	if i < 0 {
		return
	}
	next := ledger.ProjectTotals(l, l.Projects[i])
	if ledger.SameProjectTotals(l.Projects[i], next) {
		return
	}
	l.Projects[i] = next
	b.add(sheets.OpUpdate, id, next)
}

// refreshSupplier is refreshProject for suppliers.
func refreshSupplier(l *model.Ledger, b *leg, id string) {
	i := indexByID(l.Suppliers, id, supplierID)
	if i < 0 {
		return
	}
	next := ledger.SupplierTotals(l, l.Suppliers[i])
	if ledger.SameSupplierTotals(l.Suppliers[i], next) {
		return
	}
	l.Suppliers[i] = next
	b.add(sheets.OpUpdate, id, next)
}

// AddProject adds a project. Cached totals are derived from its children,
// so a new project starts at zero apart from TotalOtherCost.
func (e *Engine) AddProject(ctx context.Context, p model.Project) (model.Project, error) {
	if p.ID == "" {
		p.ID = model.NewID()
	}
	if p.Status == "" {
		p.Status = model.ProjectActive
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		if err := check("project", p.ID, p); err != nil {
			return nil, err
		}
		if _, ok := l.Project(p.ID); ok {
			return nil, duplicate("project", p.ID)
		}
		p = ledger.ProjectTotals(l, p)
		l.Projects = append(l.Projects, p)

		var b leg
		b.add(sheets.OpAppend, p.ID, p)
		return b.done()
	})
	return p, err
}

// UpdateProject replaces a project's details. Cached totals are recomputed.
func (e *Engine) UpdateProject(ctx context.Context, p model.Project) (model.Project, error) {
	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		if err := check("project", p.ID, p); err != nil {
			return nil, err
		}
		i := indexByID(l.Projects, p.ID, projectID)
		if i < 0 {
			return nil, common.NewValidationError("project", p.ID, common.ErrNotFound)
		}
		p = ledger.ProjectTotals(l, p)
		l.Projects[i] = p

		var b leg
		b.add(sheets.OpUpdate, p.ID, p)
		return b.done()
	})
	return p, err
}

// DeleteProject removes a project that nothing references.
func (e *Engine) DeleteProject(ctx context.Context, id string) error {
	return e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		i := indexByID(l.Projects, id, projectID)
		if i < 0 {
			return nil, common.NewValidationError("project", id, common.ErrNotFound)
		}

		deps := refs(
			dep{"materials", count(l.Materials, func(m model.MaterialPurchase) bool { return m.ProjectID == id })},
			dep{"bills", count(l.Bills, func(b model.CustomerBill) bool { return b.ProjectID == id })},
			dep{"payments", count(l.Payments, func(p model.CustomerPayment) bool { return p.ProjectID == id })},
			dep{"contractor works", count(l.Contractors, func(w model.ContractorWork) bool { return w.ProjectID == id })},
			dep{"contractor payments", count(l.ContractorPayments, func(p model.ContractorPayment) bool { return p.ProjectID == id })},
			dep{"employees", count(l.Employees, func(em model.Employee) bool {
				return em.AssignedTo == model.AssignedProject && em.ProjectID == id
			})},
			dep{"salary payments", count(l.SalaryPayments, func(s model.SalaryPayment) bool {
				return s.CostType == model.AssignedProject && s.ProjectID == id
			})},
		)
		if len(deps) > 0 {
			return nil, referenced("project", id, deps)
		}

		removed := l.Projects[i]
		l.Projects = slices.Delete(l.Projects, i, i+1)

		var b leg
		b.add(sheets.OpDelete, id, removed)
		return b.done()
	})
}

// AddMaterialItem adds a catalog item.
func (e *Engine) AddMaterialItem(ctx context.Context, m model.MaterialItem) (model.MaterialItem, error) {
	if m.ID == "" {
		m.ID = model.NewID()
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		if err := check("material item", m.ID, m); err != nil {
			return nil, err
		}
		if _, ok := l.MaterialItem(m.ID); ok {
			return nil, duplicate("material item", m.ID)
		}
		l.MaterialItems = append(l.MaterialItems, m)

		var b leg
		b.add(sheets.OpAppend, m.ID, m)
		return b.done()
	})
	return m, err
}

// UpdateMaterialItem replaces a catalog item.
func (e *Engine) UpdateMaterialItem(ctx context.Context, m model.MaterialItem) (model.MaterialItem, error) {
	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		if err := check("material item", m.ID, m); err != nil {
			return nil, err
		}
		i := indexByID(l.MaterialItems, m.ID, itemID)
		if i < 0 {
			return nil, common.NewValidationError("material item", m.ID, common.ErrNotFound)
		}
		l.MaterialItems[i] = m

		var b leg
		b.add(sheets.OpUpdate, m.ID, m)
		return b.done()
	})
	return m, err
}

// DeleteMaterialItem removes a catalog item no purchase refers to.
func (e *Engine) DeleteMaterialItem(ctx context.Context, id string) error {
	return e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		i := indexByID(l.MaterialItems, id, itemID)
		if i < 0 {
			return nil, common.NewValidationError("material item", id, common.ErrNotFound)
		}
		deps := refs(dep{"purchases", count(l.Materials, func(m model.MaterialPurchase) bool { return m.MaterialItemID == id })})
		if len(deps) > 0 {
			return nil, referenced("material item", id, deps)
		}

		removed := l.MaterialItems[i]
		l.MaterialItems = slices.Delete(l.MaterialItems, i, i+1)

		var b leg
		b.add(sheets.OpDelete, id, removed)
		return b.done()
	})
}

// AddSupplier adds a supplier. Its totals are derived from purchases and
// payments.
func (e *Engine) AddSupplier(ctx context.Context, s model.Supplier) (model.Supplier, error) {
	if s.ID == "" {
		s.ID = model.NewID()
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		if err := check("supplier", s.ID, s); err != nil {
			return nil, err
		}
		if _, ok := l.Supplier(s.ID); ok {
			return nil, duplicate("supplier", s.ID)
		}
		s = ledger.SupplierTotals(l, s)
		l.Suppliers = append(l.Suppliers, s)

		var b leg
		b.add(sheets.OpAppend, s.ID, s)
		return b.done()
	})
	return s, err
}

// UpdateSupplier replaces a supplier's details. Totals are recomputed.
func (e *Engine) UpdateSupplier(ctx context.Context, s model.Supplier) (model.Supplier, error) {
	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		if err := check("supplier", s.ID, s); err != nil {
			return nil, err
		}
		i := indexByID(l.Suppliers, s.ID, supplierID)
		if i < 0 {
			return nil, common.NewValidationError("supplier", s.ID, common.ErrNotFound)
		}
		s = ledger.SupplierTotals(l, s)
		l.Suppliers[i] = s

		var b leg
		b.add(sheets.OpUpdate, s.ID, s)
		return b.done()
	})
	return s, err
}

// DeleteSupplier removes a supplier with no purchases or payments.
func (e *Engine) DeleteSupplier(ctx context.Context, id string) error {
	return e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		i := indexByID(l.Suppliers, id, supplierID)
		if i < 0 {
			return nil, common.NewValidationError("supplier", id, common.ErrNotFound)
		}
		deps := refs(
			dep{"purchases", count(l.Materials, func(m model.MaterialPurchase) bool { return m.SupplierID == id })},
			dep{"payments", count(l.SupplierPayments, func(p model.SupplierPayment) bool { return p.SupplierID == id })},
		)
		if len(deps) > 0 {
			return nil, referenced("supplier", id, deps)
		}

		removed := l.Suppliers[i]
		l.Suppliers = slices.Delete(l.Suppliers, i, i+1)

		var b leg
		b.add(sheets.OpDelete, id, removed)
		return b.done()
	})
}

// AddMaterial records a material purchase. TotalAmount defaults to
// quantity times unit price; display names are filled from the referenced
// records.
func (e *Engine) AddMaterial(ctx context.Context, m model.MaterialPurchase) (model.MaterialPurchase, error) {
	if m.ID == "" {
		m.ID = model.NewID()
	}
	if m.TotalAmount.IsZero() {
		m.TotalAmount = m.Quantity.Mul(m.UnitPrice)
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		p, ok := l.Project(m.ProjectID)
		if !ok {
			return nil, missing("material", m.ID, "project", m.ProjectID)
		}
		if m.ProjectName == "" {
			m.ProjectName = p.Name
		}
		if m.SupplierID != "" {
			s, ok := l.Supplier(m.SupplierID)
			if !ok {
				return nil, missing("material", m.ID, "supplier", m.SupplierID)
			}
			if m.Supplier == "" {
				m.Supplier = s.Name
			}
		}
		if m.MaterialItemID != "" {
			item, ok := l.MaterialItem(m.MaterialItemID)
			if !ok {
				return nil, missing("material", m.ID, "material item", m.MaterialItemID)
			}
			if m.Material == "" {
				m.Material = item.Name
			}
			if m.Unit == "" {
				m.Unit = item.Unit
			}
		}
		if err := check("material", m.ID, m); err != nil {
			return nil, err
		}
		if indexByID(l.Materials, m.ID, func(v model.MaterialPurchase) string { return v.ID }) >= 0 {
			return nil, duplicate("material", m.ID)
		}
		l.Materials = append(l.Materials, m)

		var b leg
		b.add(sheets.OpAppend, m.ID, m)
		refreshProject(l, &b, m.ProjectID)
		refreshSupplier(l, &b, m.SupplierID)
		return b.done()
	})
	return m, err
}

// AddSupplierPayment records a payment to a supplier.
func (e *Engine) AddSupplierPayment(ctx context.Context, p model.SupplierPayment) (model.SupplierPayment, error) {
	if p.ID == "" {
		p.ID = model.NewID()
	}
	if p.PaymentMode == "" {
		p.PaymentMode = model.ModeBank
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		s, ok := l.Supplier(p.SupplierID)
		if !ok {
			return nil, missing("supplier payment", p.ID, "supplier", p.SupplierID)
		}
		if p.SupplierName == "" {
			p.SupplierName = s.Name
		}
		if err := check("supplier payment", p.ID, p); err != nil {
			return nil, err
		}
		l.SupplierPayments = append(l.SupplierPayments, p)

		var b leg
		b.add(sheets.OpAppend, p.ID, p)
		refreshSupplier(l, &b, p.SupplierID)
		return b.done()
	})
	return p, err
}

// AddBill raises a bill against a project.
func (e *Engine) AddBill(ctx context.Context, bill model.CustomerBill) (model.CustomerBill, error) {
	if bill.ID == "" {
		bill.ID = model.NewID()
	}
	if bill.Status == "" {
		bill.Status = model.StatusPending
		if bill.AmountReceived.IsPositive() {
			bill.Status = ledger.SettlementStatus(bill.AmountReceived, bill.Amount)
		}
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		p, ok := l.Project(bill.ProjectID)
		if !ok {
			return nil, missing("bill", bill.ID, "project", bill.ProjectID)
		}
		if bill.ProjectName == "" {
			bill.ProjectName = p.Name
		}
		if bill.Customer == "" {
			bill.Customer = p.Customer
		}
		if err := check("bill", bill.ID, bill); err != nil {
			return nil, err
		}
		if _, ok := l.Bill(bill.ID); ok {
			return nil, duplicate("bill", bill.ID)
		}
		l.Bills = append(l.Bills, bill)

		var b leg
		b.add(sheets.OpAppend, bill.ID, bill)
		refreshProject(l, &b, bill.ProjectID)
		return b.done()
	})
	return bill, err
}

// AddPayment records a customer payment together with the caller's updated
// bill. Both rows, and the project's refreshed totals, go out as one request.
func (e *Engine) AddPayment(ctx context.Context, p model.CustomerPayment, updated model.CustomerBill) (model.CustomerPayment, error) {
	if p.BillID == "" {
		p.BillID = updated.ID
	}
	if p.BillID != updated.ID {
		return p, common.NewValidationError("payment", p.ID,
			fmt.Errorf("%w: payment is for bill %q, not %q", common.ErrInvalidRecord, p.BillID, updated.ID))
	}
	return e.addPayment(ctx, p, func(model.CustomerBill) model.CustomerBill { return updated })
}

// RecordCustomerPayment records p and settles it against its bill.
func (e *Engine) RecordCustomerPayment(ctx context.Context, p model.CustomerPayment) (model.CustomerPayment, error) {
	return e.addPayment(ctx, p, func(current model.CustomerBill) model.CustomerBill {
		return ledger.ApplyCustomerPayment(current, p.Amount)
	})
}

func (e *Engine) addPayment(ctx context.Context, p model.CustomerPayment, settle func(model.CustomerBill) model.CustomerBill) (model.CustomerPayment, error) {
	if p.ID == "" {
		p.ID = model.NewID()
	}
	if p.PaymentMode == "" {
		p.PaymentMode = model.ModeBank
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		i := indexByID(l.Bills, p.BillID, billID)
		if i < 0 {
			return nil, missing("payment", p.ID, "bill", p.BillID)
		}
		bill := settle(l.Bills[i])
		if p.BillNumber == "" {
			p.BillNumber = bill.BillNumber
		}
		if p.ProjectID == "" {
			p.ProjectID = bill.ProjectID
		}
		if p.ProjectName == "" {
			p.ProjectName = bill.ProjectName
		}
		if p.Customer == "" {
			p.Customer = bill.Customer
		}
		if err := check("payment", p.ID, p); err != nil {
			return nil, err
		}
		if err := check("bill", bill.ID, bill); err != nil {
			return nil, err
		}
		l.Payments = append(l.Payments, p)
		l.Bills[i] = bill

		var b leg
		b.add(sheets.OpAppend, p.ID, p)
		b.add(sheets.OpUpdate, bill.ID, bill)
		refreshProject(l, &b, bill.ProjectID)
		return b.done()
	})
	return p, err
}

// AddContractorWork records work owed to a contractor.
func (e *Engine) AddContractorWork(ctx context.Context, w model.ContractorWork) (model.ContractorWork, error) {
	if w.ID == "" {
		w.ID = model.NewID()
	}
	if w.ContractorType == "" {
		w.ContractorType = model.ContractorLabour
	}
	if w.Status == "" {
		w.Status = model.StatusPending
		if w.AmountPaid.IsPositive() {
			w.Status = ledger.SettlementStatus(w.AmountPaid, w.WorkValue)
		}
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		p, ok := l.Project(w.ProjectID)
		if !ok {
			return nil, missing("contractor work", w.ID, "project", w.ProjectID)
		}
		if w.ProjectName == "" {
			w.ProjectName = p.Name
		}
		if err := check("contractor work", w.ID, w); err != nil {
			return nil, err
		}
		if _, ok := l.Work(w.ID); ok {
			return nil, duplicate("contractor work", w.ID)
		}
		l.Contractors = append(l.Contractors, w)

		var b leg
		b.add(sheets.OpAppend, w.ID, w)
		refreshProject(l, &b, w.ProjectID)
		return b.done()
	})
	return w, err
}

// AddContractorPayment records a contractor payment together with the
// caller's updated work, sent as one request.
func (e *Engine) AddContractorPayment(ctx context.Context, p model.ContractorPayment, updated model.ContractorWork) (model.ContractorPayment, error) {
	if p.WorkID == "" {
		p.WorkID = updated.ID
	}
	if p.WorkID != updated.ID {
		return p, common.NewValidationError("contractor payment", p.ID,
			fmt.Errorf("%w: payment is for work %q, not %q", common.ErrInvalidRecord, p.WorkID, updated.ID))
	}
	return e.addContractorPayment(ctx, p, func(model.ContractorWork) model.ContractorWork { return updated })
}

// RecordContractorPayment records p and settles it against its work.
func (e *Engine) RecordContractorPayment(ctx context.Context, p model.ContractorPayment) (model.ContractorPayment, error) {
	return e.addContractorPayment(ctx, p, func(current model.ContractorWork) model.ContractorWork {
		return ledger.ApplyContractorPayment(current, p.Amount)
	})
}

func (e *Engine) addContractorPayment(ctx context.Context, p model.ContractorPayment, settle func(model.ContractorWork) model.ContractorWork) (model.ContractorPayment, error) {
	if p.ID == "" {
		p.ID = model.NewID()
	}
	if p.PaymentMode == "" {
		p.PaymentMode = model.ModeCash
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		i := indexByID(l.Contractors, p.WorkID, workID)
		if i < 0 {
			return nil, missing("contractor payment", p.ID, "work", p.WorkID)
		}
		work := settle(l.Contractors[i])
		if p.ContractorID == "" {
			p.ContractorID = work.ContractorID
		}
		if p.ContractorName == "" {
			p.ContractorName = work.ContractorName
		}
		if p.ProjectID == "" {
			p.ProjectID = work.ProjectID
		}
		if p.ProjectName == "" {
			p.ProjectName = work.ProjectName
		}
		if err := check("contractor payment", p.ID, p); err != nil {
			return nil, err
		}
		if err := check("contractor work", work.ID, work); err != nil {
			return nil, err
		}
		l.ContractorPayments = append(l.ContractorPayments, p)
		l.Contractors[i] = work

		var b leg
		b.add(sheets.OpAppend, p.ID, p)
		b.add(sheets.OpUpdate, work.ID, work)
		refreshProject(l, &b, work.ProjectID)
		return b.done()
	})
	return p, err
}

// AddEmployee adds a staff member.
func (e *Engine) AddEmployee(ctx context.Context, em model.Employee) (model.Employee, error) {
	if em.ID == "" {
		em.ID = model.NewID()
	}
	if em.AssignedTo == "" {
		em.AssignedTo = model.AssignedOffice
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		if em.AssignedTo == model.AssignedProject {
			p, ok := l.Project(em.ProjectID)
			if !ok {
				return nil, missing("employee", em.ID, "project", em.ProjectID)
			}
			if em.ProjectName == "" {
				em.ProjectName = p.Name
			}
		}
		if err := check("employee", em.ID, em); err != nil {
			return nil, err
		}
		if _, ok := l.Employee(em.ID); ok {
			return nil, duplicate("employee", em.ID)
		}
		l.Employees = append(l.Employees, em)

		var b leg
		b.add(sheets.OpAppend, em.ID, em)
		return b.done()
	})
	return em, err
}

// AddSalaryPayment records a salary payment. Unless the caller sets a cost
// type, the employee's current assignment is snapshotted onto the payment.
func (e *Engine) AddSalaryPayment(ctx context.Context, s model.SalaryPayment) (model.SalaryPayment, error) {
	if s.ID == "" {
		s.ID = model.NewID()
	}
	if s.PaymentMode == "" {
		s.PaymentMode = model.ModeBank
	}
	if s.Month == "" && !s.Date.IsZero() {
		s.Month = s.Date.Format("2006-01")
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		em, ok := l.Employee(s.EmployeeID)
		if !ok {
			return nil, missing("salary payment", s.ID, "employee", s.EmployeeID)
		}
		if s.EmployeeName == "" {
			s.EmployeeName = em.Name
		}
		if s.CostType == "" {
			s.CostType = em.AssignedTo
			s.ProjectID = em.ProjectID
			s.ProjectName = em.ProjectName
		}
		if s.CostType == model.AssignedProject {
			p, ok := l.Project(s.ProjectID)
			if !ok {
				return nil, missing("salary payment", s.ID, "project", s.ProjectID)
			}
			if s.ProjectName == "" {
				s.ProjectName = p.Name
			}
		}
		if err := check("salary payment", s.ID, s); err != nil {
			return nil, err
		}
		l.SalaryPayments = append(l.SalaryPayments, s)

		var b leg
		b.add(sheets.OpAppend, s.ID, s)
		if s.CostType == model.AssignedProject {
			refreshProject(l, &b, s.ProjectID)
		}
		return b.done()
	})
	return s, err
}

// AddTransaction records a bank or cash movement.
func (e *Engine) AddTransaction(ctx context.Context, t model.BankTransaction) (model.BankTransaction, error) {
	if t.ID == "" {
		t.ID = model.NewID()
	}
	if t.Mode == "" {
		t.Mode = model.ModeBank
	}

	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		if err := check("transaction", t.ID, t); err != nil {
			return nil, err
		}
		if indexByID(l.Transactions, t.ID, transactionID) >= 0 {
			return nil, duplicate("transaction", t.ID)
		}
		l.Transactions = append(l.Transactions, t)

		var b leg
		b.add(sheets.OpAppend, t.ID, t)
		return b.done()
	})
	return t, err
}

// ImportTransactions adds every transaction whose id is not already in the
// ledger, as one remote request, and returns how many were added.
func (e *Engine) ImportTransactions(ctx context.Context, txns []model.BankTransaction) (int, error) {
	added := 0
	err := e.mutate(ctx, func(l *model.Ledger) ([]service.RowOp, error) {
		var b leg
		for _, t := range txns {
			if t.ID == "" {
				t.ID = model.NewID()
			}
			if t.Mode == "" {
				t.Mode = model.ModeBank
			}
			if indexByID(l.Transactions, t.ID, transactionID) >= 0 {
				continue
			}
			if err := check("transaction", t.ID, t); err != nil {
				return nil, err
			}
			l.Transactions = append(l.Transactions, t)
			b.add(sheets.OpAppend, t.ID, t)
			added++
		}
		return b.done()
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
