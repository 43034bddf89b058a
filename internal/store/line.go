package store

import "strings"

// Entity files and log files use different delimiters; both formats predate
// this codebase and must be preserved.
const (
	// FieldSep separates fields of an entity record (Admins.text,
	// Clients.txt, Currencies.txt, Transactions.txt).
	FieldSep = " || "
	// LogSep separates fields of ledger and session-log records.
	LogSep = "#//#"
)

// SplitFields splits one stored line into its fields.
func SplitFields(line, sep string) []string {
	return strings.Split(line, sep)
}

// JoinFields assembles fields into one stored line.
func JoinFields(fields []string, sep string) string {
	return strings.Join(fields, sep)
}
