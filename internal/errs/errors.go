package errs

import "errors"

// Error kinds surfaced by the fee and ledger core. Callers match with
// errors.Is and map them onto transport-level responses.
var (
	// ErrInvalidInput indicates a malformed or out-of-range caller-supplied
	// value (non-positive deal value, malformed address, fee outside bounds).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a get-by-key found no item.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable indicates a transport or backend failure from the
	// underlying key-value store, including timeouts.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUpstreamFailure indicates the chain client or pinning gateway
	// returned an error. The upstream message is wrapped, not interpreted.
	ErrUpstreamFailure = errors.New("upstream failure")
)
