package storage

// Error is a storage-level failure with a stable machine-readable code.
// The code surfaces in handler summary logs as err_code.
type Error struct {
	code string
	msg  string
}

// Error returns the human-readable message.
func (e *Error) Error() string { return e.msg }

// Code returns the stable error code.
func (e *Error) Code() string { return e.code }

var (
	// ErrNotFound is returned when a referenced record does not exist
	// or does not belong to the acting user.
	ErrNotFound = &Error{code: "NOT_FOUND", msg: "storage: record not found"}
	// ErrUserExists is returned when the external chat id is already registered.
	ErrUserExists = &Error{code: "USER_EXISTS", msg: "storage: user already registered"}
	// ErrSelfRelation is returned for friendship operations on a single user.
	ErrSelfRelation = &Error{code: "SELF_RELATION", msg: "storage: user cannot befriend self"}
	// ErrAlreadyFriends is returned when a request is created for an existing friendship.
	ErrAlreadyFriends = &Error{code: "ALREADY_FRIENDS", msg: "storage: users are already friends"}
	// ErrRequestExists is returned when a pending request already connects the pair.
	ErrRequestExists = &Error{code: "REQUEST_EXISTS", msg: "storage: friend request already pending"}
	// ErrNoSuchRequest is returned when the pending request is gone
	// (accepted, rejected, or cancelled by the other side).
	ErrNoSuchRequest = &Error{code: "NO_SUCH_REQUEST", msg: "storage: no such friend request"}
)
