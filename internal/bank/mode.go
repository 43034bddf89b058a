package bank

// Mode is the lifecycle tag that decides what Save does. An entity starts
// Empty (a find miss or a deleted record), becomes New when constructed
// with a chosen primary key, and Existing once it is on disk.
type Mode int

const (
	ModeEmpty Mode = iota
	ModeNew
	ModeExisting
)

func (m Mode) String() string {
	switch m {
	case ModeEmpty:
		return "empty"
	case ModeNew:
		return "new"
	case ModeExisting:
		return "existing"
	default:
		return "unknown"
	}
}
