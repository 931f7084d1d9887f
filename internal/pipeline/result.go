// Package pipeline orchestrates folder collection, per-file identity
// extraction, and the collision-safe batch rename, reporting per-file
// outcomes in collection order.
package pipeline

// Status of one file's rename.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Outcome is the immutable per-file result. NewName is set only on success;
// Error only on failure.
type Outcome struct {
	OriginalName string `json:"original_name"`
	NewName      string `json:"new_name,omitempty"`
	Status       Status `json:"status"`
	Error        string `json:"error,omitempty"`
}

// BatchResult is the aggregate for one run. Success means the batch ran to
// completion, not that every file succeeded; Error is set only when the
// batch could not start at all (bad folder, nothing to do). Whenever
// processing ran, SuccessFiles+ErrorFiles == TotalFiles == len(Files).
type BatchResult struct {
	Success      bool      `json:"success"`
	BatchID      string    `json:"batch_id,omitempty"`
	TotalFiles   int       `json:"total_files"`
	SuccessFiles int       `json:"success_files"`
	ErrorFiles   int       `json:"error_files"`
	Files        []Outcome `json:"files,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Options for one batch run. Preview is accepted for API compatibility; the
// rename step does not consult it.
type Options struct {
	Overwrite bool `json:"overwrite"`
	Recursive bool `json:"recursive"`
	Preview   bool `json:"preview"`
}

// DefaultOptions returns the documented defaults: overwrite, recursive, and
// preview all enabled.
func DefaultOptions() Options {
	return Options{Overwrite: true, Recursive: true, Preview: true}
}
