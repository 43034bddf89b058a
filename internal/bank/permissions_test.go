package bank_test

import (
	"testing"

	"github.com/alialsharqawi/bank-backoffice/internal/bank"
)

func TestPermissionGrants(t *testing.T) {
	testCases := []struct {
		name     string
		held     bank.Permission
		required bank.Permission
		expected bool
	}{
		{
			name:     "full access passes every check",
			held:     bank.PermAll,
			required: bank.PermDeleteClient | bank.PermManageAdmins,
			expected: true,
		},
		{
			name:     "mask 5 grants list and find",
			held:     bank.PermListClients | bank.PermFindClient,
			required: bank.PermFindClient,
			expected: true,
		},
		{
			name:     "mask 5 does not grant delete",
			held:     bank.PermListClients | bank.PermFindClient,
			required: bank.PermDeleteClient,
			expected: false,
		},
		{
			name:     "all required bits must be held",
			held:     bank.PermListClients | bank.PermAddClient,
			required: bank.PermListClients | bank.PermDeleteClient,
			expected: false,
		},
		{
			name:     "no permissions grants nothing",
			held:     0,
			required: bank.PermListClients,
			expected: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.held.Grants(testCase.required); got != testCase.expected {
				t.Fatalf("held %d, required %d: expected %v, got %v",
					testCase.held, testCase.required, testCase.expected, got)
			}
		})
	}
}

func TestPermissionBitValues(t *testing.T) {
	// the mask values are part of the on-disk format and must never move
	expected := map[bank.Permission]int{
		bank.PermListClients:   1,
		bank.PermAddClient:     2,
		bank.PermFindClient:    4,
		bank.PermUpdateClient:  8,
		bank.PermTotalBalances: 16,
		bank.PermTransactions:  32,
		bank.PermDeleteClient:  64,
		bank.PermManageAdmins:  128,
		bank.PermAll:           -1,
	}

	for perm, value := range expected {
		if int(perm) != value {
			t.Fatalf("expected %d, got %d", value, int(perm))
		}
	}
}
