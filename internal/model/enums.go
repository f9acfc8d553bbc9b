package model

// ProjectStatus is the lifecycle state of a construction project.
type ProjectStatus string

const (
	// ProjectActive is a project currently under construction.
	ProjectActive ProjectStatus = "active"
	// ProjectCompleted is a handed-over project.
	ProjectCompleted ProjectStatus = "completed"
	// ProjectOnHold is a paused project.
	ProjectOnHold ProjectStatus = "on-hold"
)

// ParseProjectStatus decodes a stored status, falling back to ProjectActive.
func ParseProjectStatus(s string) ProjectStatus {
	switch ProjectStatus(s) {
	case ProjectActive, ProjectCompleted, ProjectOnHold:
		return ProjectStatus(s)
	default:
		return ProjectActive
	}
}

// PaymentStatus tracks how much of a bill or contractor work has been settled.
type PaymentStatus string

const (
	// StatusPending means nothing has been settled yet.
	StatusPending PaymentStatus = "pending"
	// StatusPartial means some but not all of the amount has been settled.
	StatusPartial PaymentStatus = "partial"
	// StatusPaid means the full amount has been settled.
	StatusPaid PaymentStatus = "paid"
)

// ParsePaymentStatus decodes a stored status, falling back to StatusPending.
func ParsePaymentStatus(s string) PaymentStatus {
	switch PaymentStatus(s) {
	case StatusPending, StatusPartial, StatusPaid:
		return PaymentStatus(s)
	default:
		return StatusPending
	}
}

// PaymentMode is how money moved.
type PaymentMode string

const (
	// ModeCash is a cash payment.
	ModeCash PaymentMode = "cash"
	// ModeBank is a bank transfer or cheque.
	ModeBank PaymentMode = "bank"
	// ModeUPI is a UPI transfer. It settles against the bank account.
	ModeUPI PaymentMode = "upi"
)

// ParsePaymentMode decodes a stored mode, returning fallback for unknown input.
func ParsePaymentMode(s string, fallback PaymentMode) PaymentMode {
	switch PaymentMode(s) {
	case ModeCash, ModeBank, ModeUPI:
		return PaymentMode(s)
	default:
		return fallback
	}
}

// IsBank reports whether the mode settles against the bank account.
func (m PaymentMode) IsBank() bool {
	return m == ModeBank || m == ModeUPI
}

// ContractorType distinguishes labour gangs from machine hire.
type ContractorType string

const (
	// ContractorLabour is a labour contractor.
	ContractorLabour ContractorType = "labour"
	// ContractorMachine is a machine hire contractor.
	ContractorMachine ContractorType = "machine"
)

// ParseContractorType decodes a stored type, falling back to ContractorLabour.
func ParseContractorType(s string) ContractorType {
	if ContractorType(s) == ContractorMachine {
		return ContractorMachine
	}
	return ContractorLabour
}

// Assignment says where an employee's cost is booked.
type Assignment string

const (
	// AssignedProject books the cost against a project.
	AssignedProject Assignment = "project"
	// AssignedOffice books the cost as general overhead.
	AssignedOffice Assignment = "office"
)

// ParseAssignment decodes a stored assignment, falling back to AssignedOffice.
func ParseAssignment(s string) Assignment {
	if Assignment(s) == AssignedProject {
		return AssignedProject
	}
	return AssignedOffice
}

// TransactionType is the direction of a bank or cash movement.
type TransactionType string

const (
	// Deposit adds money to the account.
	Deposit TransactionType = "deposit"
	// Withdrawal removes money from the account.
	Withdrawal TransactionType = "withdrawal"
)

// ParseTransactionType decodes a stored type, falling back to Deposit.
func ParseTransactionType(s string) TransactionType {
	if TransactionType(s) == Withdrawal {
		return Withdrawal
	}
	return Deposit
}
