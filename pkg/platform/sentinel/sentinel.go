package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (wrapped with the
// operation and the driver error) so services can translate them into domain
// errors without knowing which driver produced them.
//
//   - ErrNotFound: row does not exist
//   - ErrDuplicateEntry: a uniqueness constraint rejected the write
//   - ErrConnection: the store could not be reached or dropped the connection
//   - ErrQuery: any other statement failure
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrConnection     = errors.New("connection error")
	ErrQuery          = errors.New("query error")
)

// Kind returns the storage sentinel carried by err, or nil when err does not
// wrap any of them.
func Kind(err error) error {
	for _, kind := range []error{ErrNotFound, ErrDuplicateEntry, ErrConnection, ErrQuery} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
