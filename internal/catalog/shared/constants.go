package shared

const (
	// DefaultLimit is the catalog page size when none is configured.
	DefaultLimit = 10

	// Flash kinds
	FlashSuccess = "success"
	FlashError   = "error"
)
