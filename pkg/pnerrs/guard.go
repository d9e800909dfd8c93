package pnerrs

import "fmt"

// GuardError represents a local refusal to touch a resource other than
// the one the running server is wired to.
type GuardError struct {
	*BaseError
	attempted string
	permitted string
}

// NewKeysetMismatchError refuses an update of attempted because the
// environment keys belong to permitted.
func NewKeysetMismatchError(attempted, permitted string) *GuardError {
	return newGuardError(
		ErrCodeKeysetMismatch,
		fmt.Sprintf(
			"refusing to update keyset %q: this server is configured with the keys of keyset %q "+
				"(PUBNUB_PUBLISH_KEY/PUBNUB_SUBSCRIBE_KEY); only keyset %q may be updated",
			attempted, permitted, permitted,
		),
		attempted,
		permitted,
	)
}

// NewKeysetUnknownError refuses an update because no keyset owned by the
// account matches the environment keys.
func NewKeysetUnknownError(attempted string) *GuardError {
	return newGuardError(
		ErrCodeKeysetUnknown,
		fmt.Sprintf(
			"refusing to update keyset %q: no keyset in this account matches "+
				"PUBNUB_PUBLISH_KEY/PUBNUB_SUBSCRIBE_KEY, so no keyset may be updated",
			attempted,
		),
		attempted,
		"",
	)
}

func newGuardError(code ErrorCode, message, attempted, permitted string) *GuardError {
	err := &GuardError{
		BaseError: NewBaseError(CategoryGuard, code, message, nil),
		attempted: attempted,
		permitted: permitted,
	}
	_ = err.WithMetadata("attempted", attempted)
	_ = err.WithMetadata("permitted", permitted)

	return err
}

// Name returns the error name.
func (*GuardError) Name() string {
	return "GuardError"
}

// Attempted returns the id the caller tried to modify.
func (e *GuardError) Attempted() string {
	return e.attempted
}

// Permitted returns the id the caller may modify.
func (e *GuardError) Permitted() string {
	return e.permitted
}
