package services

import "errors"

// The services return a closed set of error kinds. Handlers translate them to
// HTTP status codes at the boundary; nothing in this package knows about
// transport codes.

// NotFoundError indicates a lookup miss. The same error is returned for a
// record owned by a different user so callers cannot probe for existence.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// InvalidStateError indicates an operation against a record whose status no
// longer permits it, such as paying an already-settled purchase.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

// ValidationError names the first request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DuplicateReferralError indicates a referral edge already exists for a
// (referrer, referred) pair.
type DuplicateReferralError struct {
	ReferrerID uint
	ReferredID uint
}

func (e *DuplicateReferralError) Error() string {
	return "referral already exists for this user"
}

var (
	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("An account with this email already exists. Please log in instead")

	// ErrInvalidReferralCode is returned when the supplied referral code does
	// not resolve to any user.
	ErrInvalidReferralCode = errors.New("The referral code you entered is not valid. Please check and try again")

	// ErrInvalidCredentials is returned on login failure. The same error
	// covers unknown email and wrong password.
	ErrInvalidCredentials = errors.New("Email or password is incorrect. Please try again")
)
