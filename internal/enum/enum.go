package enum

// ── Ledger entry types (CHECK constrained in DB) ──

const (
	EntryTypeIncome  = "INCOME"
	EntryTypeExpense = "EXPENSE"
)

// ── Roles (CHECK constrained in DB) ──

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
)

// ── Sales channels ──

const (
	ChannelCounter  = "COUNTER"
	ChannelDelivery = "DELIVERY"
	ChannelTable    = "TABLE"
)

// Channels lists every sales channel folded into a register summary.
var Channels = []string{ChannelCounter, ChannelDelivery, ChannelTable}

// ── Payment methods ──
// Canonical set. Channel adapters normalize their own labels ("dinheiro",
// "money", ...) to these before records reach the calculator.

const (
	PaymentMethodCash       = "CASH"
	PaymentMethodPix        = "PIX"
	PaymentMethodCreditCard = "CREDIT_CARD"
	PaymentMethodDebitCard  = "DEBIT_CARD"
	PaymentMethodVoucher    = "VOUCHER"
	PaymentMethodMixed      = "MIXED"
	PaymentMethodOther      = "OTHER"
)

// IsValidPaymentMethod reports whether pm is one of the canonical payment methods.
func IsValidPaymentMethod(pm string) bool {
	switch pm {
	case PaymentMethodCash, PaymentMethodPix, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodVoucher, PaymentMethodMixed,
		PaymentMethodOther:
		return true
	}
	return false
}

// IsValidEntryType reports whether t is a ledger entry type.
func IsValidEntryType(t string) bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}
