package domain

import "time"

// OperationKind names a journaled lifecycle operation
type OperationKind string

const (
	OpInstall OperationKind = "install"
	OpUpdate  OperationKind = "update"
	OpEnable  OperationKind = "enable"
	OpDisable OperationKind = "disable"
	OpDelete  OperationKind = "delete"
	OpMigrate OperationKind = "migrate"
)

// OperationStatus is the outcome of one journaled item
type OperationStatus string

const (
	StatusOK      OperationStatus = "ok"
	StatusFailed  OperationStatus = "failed"
	StatusSkipped OperationStatus = "skipped"
)

// Operation is one journal entry. Items of a batch share a RunID.
type Operation struct {
	ID        int64
	RunID     string
	Kind      OperationKind
	Profile   string
	ModName   string
	Status    OperationStatus
	ErrorKind string // ErrorKind of the failure, empty on success
	Detail    string
	Bytes     int64 // Bytes downloaded, if any
	CreatedAt time.Time
}

// OperationStats aggregates the journal
type OperationStats struct {
	Downloads    int   // Successful installs
	Updates      int   // Successfully refreshed records
	Failures     int   // Failed items of any kind
	TotalBytes   int64 // Bytes downloaded by successful items
	LastActivity time.Time
}
