// Package permission centralizes the yes/no capability checks the register
// core asks before mutating historical ledger entries. The core never
// inspects role strings itself.
package permission

import "github.com/braseiro-pos/api/internal/enum"

// Capabilities gating ledger entry mutation.
const (
	CapManageCashEntries = "manage_cash_entries"
	CapEditCashEntries   = "edit_cash_entries"
	CapDeleteCashEntries = "delete_cash_entries"
)

// Oracle answers capability questions about an actor role.
type Oracle interface {
	HasCapability(role, capability string) bool
}

// RoleOracle maps roles to capability sets. ADMIN holds everything;
// MANAGER may edit and delete but not rewrite amounts; CASHIER may only
// fix the payment method of an entry (a routine till correction).
type RoleOracle struct {
	grants map[string]map[string]bool
}

func NewRoleOracle() *RoleOracle {
	return &RoleOracle{
		grants: map[string]map[string]bool{
			enum.UserRoleAdmin: {
				CapManageCashEntries: true,
				CapEditCashEntries:   true,
				CapDeleteCashEntries: true,
			},
			enum.UserRoleManager: {
				CapEditCashEntries:   true,
				CapDeleteCashEntries: true,
			},
			enum.UserRoleCashier: {
				CapEditCashEntries: true,
			},
		},
	}
}

func (o *RoleOracle) HasCapability(role, capability string) bool {
	return o.grants[role][capability]
}
