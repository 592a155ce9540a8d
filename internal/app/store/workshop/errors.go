// internal/app/store/workshop/errors.go
package workshopstore

import (
	"errors"
	"fmt"
)

// Sentinel errors for missing documents. Handlers map these to 404s.
var (
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrCollectableNotFound  = errors.New("collectable not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// ErrInvalidPublishState is returned when a state transition names an
// unknown publication state.
var ErrInvalidPublishState = errors.New("invalid publication state")

// ErrInvalidName is returned when a collectable name fails validation.
var ErrInvalidName = errors.New("name must be 1-50 characters of letters, digits, hyphen, or underscore")

// NotAllowedError reports an operation the current state forbids, such as
// subscribing twice or installing a private collection. Reason is safe to
// show to end users.
type NotAllowedError struct {
	Reason string
}

func (e *NotAllowedError) Error() string { return e.Reason }

// notAllowed builds a NotAllowedError from a user-facing message.
func notAllowed(reason string) error {
	return &NotAllowedError{Reason: reason}
}

// IsNotAllowed reports whether err is a NotAllowedError.
func IsNotAllowed(err error) bool {
	var na *NotAllowedError
	return errors.As(err, &na)
}

// NotLoadedError reports access to a lazy relation before its Load method
// has run. This is a programming error, not a user-facing condition.
type NotLoadedError struct {
	Relation   string
	LoadMethod string
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("%s not loaded yet: call %s first", e.Relation, e.LoadMethod)
}

// IsNotLoaded reports whether err is a NotLoadedError.
func IsNotLoaded(err error) bool {
	var nl *NotLoadedError
	return errors.As(err, &nl)
}

// IsNotFound reports whether err is one of the missing-document sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCollectionNotFound) ||
		errors.Is(err, ErrCollectableNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound)
}

// User-facing refusal messages.
const (
	msgAlreadySubscribed = "You are already subscribed to this."
	msgPrivate           = "This collection is private."
	msgAlreadyInstalled  = "This collection is already installed on this server."
	msgEntitlementLocked = "This entitlement is required and cannot be removed."
	msgAlreadyEditor     = "This user is already an editor."
	msgOwnerIsEditor     = "The owner already has edit access."
)
