package domain

import "errors"

var (
	// ErrInvalidInput is returned when a required field is empty or blank.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateUser is returned when registering a username that is already taken.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMismatch is returned when a new password and its confirmation differ.
	ErrMismatch = errors.New("passwords do not match")
	// ErrUnauthenticated is returned when an operation needs a logged-in user.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned when looking up a non-existent account or product.
	ErrNotFound = errors.New("not found")
	// ErrCorruptStore is returned when a persisted file cannot be decoded.
	ErrCorruptStore = errors.New("corrupt store")
)

// ErrorKind classifies errors returned by the services so a front-end can
// translate them into messages without string matching.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidInput
	KindDuplicateUser
	KindInvalidCredentials
	KindMismatch
	KindUnauthenticated
	KindNotFound
	KindCorruptStore
)

//nolint:gochecknoglobals
var kindErrors = []struct {
	kind ErrorKind
	err  error
}{
	{KindInvalidInput, ErrInvalidInput},
	{KindDuplicateUser, ErrDuplicateUser},
	{KindInvalidCredentials, ErrInvalidCredentials},
	{KindMismatch, ErrMismatch},
	{KindUnauthenticated, ErrUnauthenticated},
	{KindNotFound, ErrNotFound},
	{KindCorruptStore, ErrCorruptStore},
}

// KindOf returns the kind of the first sentinel error found in err's chain.
// Credential errors win over not-found errors, so a failed login for an
// unknown user still classifies as KindInvalidCredentials.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	if errors.Is(err, ErrInvalidCredentials) {
		return KindInvalidCredentials
	}

	for _, ke := range kindErrors {
		if errors.Is(err, ke.err) {
			return ke.kind
		}
	}

	return KindUnknown
}

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindDuplicateUser:
		return "DuplicateUser"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindMismatch:
		return "Mismatch"
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindNotFound:
		return "NotFound"
	case KindCorruptStore:
		return "CorruptStore"
	case KindUnknown:
		fallthrough
	default:
		return "Unknown"
	}
}
