package spec

const (
	// MaxFields is the largest number of fields an object may have.
	MaxFields = 1 << 16
	// MaxVars is the largest frame a method may declare, arguments and locals together.
	MaxVars = 1 << 16
)
