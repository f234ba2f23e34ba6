package core

import (
	"errors"
	"strings"
	"time"
)

type (
	ServiceType string

	// ServiceRecord is one billable unit of work logged by a user.
	ServiceRecord struct {
		ID             string
		Title          string
		ServiceType    ServiceType
		Price          Money
		UserID         string
		Username       string
		CreatedAt      time.Time
		IncludeInTotal bool
		AdminOverride  bool
	}
)

var (
	ErrEmptyTitle         = errors.New("empty title")
	ErrTitleTooLong       = errors.New("title too long (max 100 characters)")
	ErrNegativePrice      = errors.New("negative price")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrUnknownServiceType = errors.New("unknown service type")
	ErrMissingOwner       = errors.New("missing owner")
)

const maxTitleLength = 100

// NormalizeTitle trims the title the same way for storage and duplicate lookups.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// ValidateTitle checks a user-supplied title before any store call.
func ValidateTitle(title string) error {
	t := NormalizeTitle(title)
	if t == "" {
		return ErrEmptyTitle
	}
	if len(t) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// Validate checks a record about to be inserted. ID and CreatedAt are
// assigned by the store and are not checked here.
func (r ServiceRecord) Validate() error {
	if err := ValidateTitle(r.Title); err != nil {
		return err
	}
	if r.Price.IsNegative() {
		return ErrNegativePrice
	}
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingOwner
	}
	return nil
}

// Counted reports whether the record's price counts toward aggregate sums.
func (r ServiceRecord) Counted() bool {
	return r.IncludeInTotal
}

// Pending reports whether the record is excluded from totals awaiting an admin decision.
func (r ServiceRecord) Pending() bool {
	return !r.IncludeInTotal
}

// CreatedAtOrEpoch returns CreatedAt, or the Unix epoch when the store handed
// back a timestamp it could not parse.
func (r ServiceRecord) CreatedAtOrEpoch() time.Time {
	if r.CreatedAt.IsZero() {
		return time.Unix(0, 0)
	}
	return r.CreatedAt
}
