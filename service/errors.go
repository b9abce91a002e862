// Package service implements the domain services on top of the entity store:
// user registration, wishlist validation, and the friend-request lifecycle.
package service

// Error is a service-level failure with a stable machine-readable code.
type Error struct {
	code string
	msg  string
}

// Error returns the human-readable message.
func (e *Error) Error() string { return e.msg }

// Code returns the stable error code.
func (e *Error) Code() string { return e.code }

var (
	// ErrValidation is returned for malformed user input. The caller
	// re-prompts without losing dialog state.
	ErrValidation = &Error{code: "VALIDATION", msg: "service: invalid input"}
	// ErrAlreadyFriendsOrPending is returned when a friend request collides
	// with an existing friendship or a pending request in either direction.
	ErrAlreadyFriendsOrPending = &Error{code: "ALREADY_FRIENDS_OR_PENDING", msg: "service: already friends or request pending"}
)
