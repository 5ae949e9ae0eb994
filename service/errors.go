package service

import (
	"errors"
	"fmt"
)

// ErrMissingIdentifier is returned when an uploaded report XML has no
// unique identifier in its header.
var ErrMissingIdentifier = errors.New("report XML has no unique identifier in Naglowek")

// StorageError wraps a failed ledger or artifact write. The Step field
// tells the caller which stage of the publish pipeline failed.
type StorageError struct {
	Step string // "ledger", "metadata", "qr"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage write failed at %s: %v", e.Step, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PartialPublishError reports a ledger row that was committed but is
// missing one or more artifacts. The append-only ledger cannot be
// rolled back, so the identity is carried for manual reconciliation.
type PartialPublishError struct {
	ReportID string
	Err      error
}

func (e *PartialPublishError) Error() string {
	return fmt.Sprintf("report %s: ledger row committed but artifacts incomplete: %v", e.ReportID, e.Err)
}

func (e *PartialPublishError) Unwrap() error {
	return e.Err
}
