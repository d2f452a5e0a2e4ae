package enums

import "fmt"

// BorrowStatus tracks a borrow record through PENDING -> BORROWED -> RETURNED.
// Rejected requests are deleted and have no status of their own.
type BorrowStatus string

const (
	BorrowStatusPending  BorrowStatus = "PENDING"
	BorrowStatusBorrowed BorrowStatus = "BORROWED"
	BorrowStatusReturned BorrowStatus = "RETURNED"
)

var validBorrowStatuses = []BorrowStatus{
	BorrowStatusPending,
	BorrowStatusBorrowed,
	BorrowStatusReturned,
}

// String implements fmt.Stringer.
func (s BorrowStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BorrowStatus.
func (s BorrowStatus) IsValid() bool {
	for _, candidate := range validBorrowStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsOpen reports whether the record still holds (or is waiting on) a copy.
func (s BorrowStatus) IsOpen() bool {
	return s == BorrowStatusPending || s == BorrowStatusBorrowed
}

// ParseBorrowStatus converts raw input into a BorrowStatus.
func ParseBorrowStatus(value string) (BorrowStatus, error) {
	for _, candidate := range validBorrowStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid borrow status %q", value)
}
