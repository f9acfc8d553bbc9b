package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnums(t *testing.T) {
	assert.Equal(t, ProjectOnHold, ParseProjectStatus("on-hold"))
	assert.Equal(t, ProjectActive, ParseProjectStatus("archived"))
	assert.Equal(t, ProjectActive, ParseProjectStatus(""))

	assert.Equal(t, StatusPartial, ParsePaymentStatus("partial"))
	assert.Equal(t, StatusPending, ParsePaymentStatus("PAID"))

	assert.Equal(t, ModeUPI, ParsePaymentMode("upi", ModeCash))
	assert.Equal(t, ModeCash, ParsePaymentMode("cheque", ModeCash))
	assert.Equal(t, ModeBank, ParsePaymentMode("", ModeBank))

	assert.Equal(t, ContractorMachine, ParseContractorType("machine"))
	assert.Equal(t, ContractorLabour, ParseContractorType("crane"))

	assert.Equal(t, AssignedProject, ParseAssignment("project"))
	assert.Equal(t, AssignedOffice, ParseAssignment(""))

	assert.Equal(t, Withdrawal, ParseTransactionType("withdrawal"))
	assert.Equal(t, Deposit, ParseTransactionType("transfer"))
}

func TestPaymentModeIsBank(t *testing.T) {
	assert.True(t, ModeBank.IsBank())
	assert.True(t, ModeUPI.IsBank())
	assert.False(t, ModeCash.IsBank())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		record  any
		name    string
		wantMsg string
		wantErr bool
	}{
		{
			name:   "valid project",
			record: Project{ID: "p1", Name: "Villa", Status: ProjectActive},
		},
		{
			name:    "project without name",
			record:  Project{ID: "p1", Status: ProjectActive},
			wantErr: true,
			wantMsg: "Name failed required",
		},
		{
			name:    "negative bill amount",
			record:  CustomerBill{ID: "b1", ProjectID: "p1", Amount: decimal.NewFromInt(-5), Status: StatusPending},
			wantErr: true,
			wantMsg: "Amount failed gte=0",
		},
		{
			name:    "unknown transaction type",
			record:  BankTransaction{ID: "t1", Type: "transfer", Mode: ModeBank},
			wantErr: true,
			wantMsg: "Type failed oneof",
		},
		{
			name:    "project employee without project",
			record:  Employee{ID: "e1", Name: "Ravi", AssignedTo: AssignedProject},
			wantErr: true,
			wantMsg: "ProjectID failed required_if",
		},
		{
			name:   "office employee without project",
			record: Employee{ID: "e1", Name: "Ravi", AssignedTo: AssignedOffice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.record)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLedgerCloneIsIndependent(t *testing.T) {
	l := &Ledger{Projects: []Project{{ID: "p1", Name: "Villa"}}}

	c := l.Clone()
	c.Projects[0].Name = "Changed"
	c.Projects = append(c.Projects, Project{ID: "p2"})

	assert.Equal(t, "Villa", l.Projects[0].Name)
	assert.Len(t, l.Projects, 1)

	var nilLedger *Ledger
	assert.NotNil(t, nilLedger.Clone())
}

func TestLedgerLookups(t *testing.T) {
	l := &Ledger{
		Bills:     []CustomerBill{{ID: "b1"}, {ID: "b2", BillNumber: "INV-2"}},
		Suppliers: []Supplier{{ID: "s1", Name: "Acme"}},
	}

	b, ok := l.Bill("b2")
	require.True(t, ok)
	assert.Equal(t, "INV-2", b.BillNumber)

	_, ok = l.Bill("missing")
	assert.False(t, ok)

	s, ok := l.Supplier("s1")
	require.True(t, ok)
	assert.Equal(t, "Acme", s.Name)
}

func TestIDs(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)

	assert.Equal(t, StableID("ofx", "FIT123"), StableID("ofx", "FIT123"))
	assert.NotEqual(t, StableID("ofx", "FIT123"), StableID("ofx", "FIT124"))
}
