package lookup

import (
	"fmt"
	"strings"
)

// ValidationError is returned when the raw query fails validation. It is a
// user-correctable condition; the query never reached the cache, the quota
// ledger, or the provider.
type ValidationError struct {
	Reasons []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s", strings.Join(e.Reasons, "; "))
}
