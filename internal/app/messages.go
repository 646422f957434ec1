package app

import "github.com/mkrupp/storefront/internal/domain"

//nolint:gochecknoglobals
var kindMessages = map[domain.ErrorKind]string{
	domain.KindInvalidInput:       "Please fill in all required fields.",
	domain.KindDuplicateUser:      "That username is already taken.",
	domain.KindInvalidCredentials: "Incorrect username or password.",
	domain.KindMismatch:           "The new passwords do not match.",
	domain.KindUnauthenticated:    "You need to log in first.",
	domain.KindNotFound:           "Not found.",
	domain.KindCorruptStore:       "The account store is damaged and cannot be read.",
}

// errorMessage translates err into the text shown to the user.
func errorMessage(err error) string {
	if msg, ok := kindMessages[domain.KindOf(err)]; ok {
		return msg
	}

	return "Something went wrong: " + err.Error()
}
