package errors

// ValidationError represents a validation error with a field and message
type ValidationError struct {
	Field   string
	Message string
}

// StorageError represents an error during storage operations
type StorageError struct {
	Message string
	Cause   error
}

// Stage identifies the workflow step an external call failed in
type Stage string

const (
	StageCreation Stage = "creation"
	StageFetch    Stage = "fetch"
	StageUpdate   Stage = "update"
	StageWrite    Stage = "write"
)

// StageError is a collaborator-reported failure of one workflow stage.
// The cause is surfaced as-is; there is no transient/permanent split.
type StageError struct {
	Stage Stage
	Cause error
}
