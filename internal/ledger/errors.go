package ledger

import "errors"

// Every operation returns one of these kinds (or an allocator error from
// internal/calculator) so the API layer can map authorization, not-found and
// conflict failures to distinct responses. NotAuthorized is deliberately
// separate from WalletNotFound: non-members must not learn whether a wallet
// exists.
var (
	// ErrWalletNotFound is returned when the wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrNotAuthorized is returned when the requester lacks the role or
	// membership an operation requires.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrAlreadyMember is returned when adding a user who is already in the
	// wallet's member list.
	ErrAlreadyMember = errors.New("user is already a member")

	// ErrSplitNotFound is returned when a split record id is not in the
	// wallet's history.
	ErrSplitNotFound = errors.New("split not found")

	// ErrShareNotFound is returned when the target user has no share in the
	// split record.
	ErrShareNotFound = errors.New("share not found")

	// ErrConcurrentModification is returned when a mutation lost a race with
	// another writer. The ledger never retries; callers own retry policy.
	ErrConcurrentModification = errors.New("wallet was modified concurrently")
)
