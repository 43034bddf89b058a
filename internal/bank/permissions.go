package bank

// Permission is a bitmask over admin capabilities. PermAll (-1) is a
// sentinel granting everything. The values are persisted as plain integers
// in Admins.text and must not be renumbered.
type Permission int

const (
	PermListClients   Permission = 1 << iota // 1
	PermAddClient                            // 2
	PermFindClient                           // 4
	PermUpdateClient                         // 8
	PermTotalBalances                        // 16
	PermTransactions                         // 32
	PermDeleteClient                         // 64
	PermManageAdmins                         // 128
)

const PermAll Permission = -1

// Grants reports whether p covers every bit of required. The check is a
// pure predicate; enforcement is the caller's job.
func (p Permission) Grants(required Permission) bool {
	if p == PermAll {
		return true
	}
	return p&required == required
}
