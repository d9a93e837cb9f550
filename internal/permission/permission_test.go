package permission_test

import (
	"testing"

	"github.com/braseiro-pos/api/internal/permission"
)

func TestRoleOracle(t *testing.T) {
	oracle := permission.NewRoleOracle()

	cases := []struct {
		role       string
		capability string
		want       bool
	}{
		{"ADMIN", permission.CapManageCashEntries, true},
		{"ADMIN", permission.CapEditCashEntries, true},
		{"ADMIN", permission.CapDeleteCashEntries, true},
		{"MANAGER", permission.CapManageCashEntries, false},
		{"MANAGER", permission.CapEditCashEntries, true},
		{"MANAGER", permission.CapDeleteCashEntries, true},
		{"CASHIER", permission.CapManageCashEntries, false},
		{"CASHIER", permission.CapEditCashEntries, true},
		{"CASHIER", permission.CapDeleteCashEntries, false},
		{"WAITER", permission.CapEditCashEntries, false},
		{"", permission.CapEditCashEntries, false},
	}
	for _, tc := range cases {
		got := oracle.HasCapability(tc.role, tc.capability)
		if got != tc.want {
			t.Errorf("HasCapability(%q, %q): got %v, want %v", tc.role, tc.capability, got, tc.want)
		}
	}
}
