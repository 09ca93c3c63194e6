package errs

import "errors"

// Common sentinel errors for cross-layer signaling.
var (
	ErrNotFound = errors.New("not_found")

	// Validation rejections. Raised before any store access.
	ErrInvalidIdentifier = errors.New("invalid_identifier")
	ErrInvalidPassword   = errors.New("invalid_password")
	ErrInvalidRoom       = errors.New("invalid_room")
	ErrInvalidDate       = errors.New("invalid_date")

	// ErrDuplicateAccount is returned when the account id is already registered.
	ErrDuplicateAccount = errors.New("duplicate_account")
	// ErrAuthenticationFailed covers both unknown ids and wrong passwords.
	ErrAuthenticationFailed = errors.New("authentication_failed")
	// ErrUnauthenticated means the request carries no usable session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSlotTaken is returned when the (room, date) pair is already reserved.
	ErrSlotTaken = errors.New("slot_taken")
	// ErrStoreUnavailable wraps storage connectivity failures.
	ErrStoreUnavailable = errors.New("store_unavailable")
)

// Code returns the stable machine-readable code for err: "ok" for nil,
// "internal" when err wraps none of the sentinels above.
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	for _, s := range []error{
		ErrInvalidIdentifier, ErrInvalidPassword, ErrInvalidRoom, ErrInvalidDate,
		ErrDuplicateAccount, ErrAuthenticationFailed, ErrUnauthenticated,
		ErrSlotTaken, ErrStoreUnavailable, ErrNotFound,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal"
}
