package identity

import "fmt"

// Identity holds the (name, date) pair recovered for one image, plus a
// diagnostic trace of which strategy contributed what. Date, when set, is
// always the canonical YYYYMMDD token.
type Identity struct {
	Name  string
	Date  string
	Notes []string
}

// Complete reports whether both fields have been recovered.
func (id *Identity) Complete() bool {
	return id.Name != "" && id.Date != ""
}

// Merge folds a lower-priority candidate into id. A field already set by an
// earlier strategy is never overwritten: first non-empty value wins,
// independently for name and date.
func (id *Identity) Merge(name, date string) {
	if id.Name == "" && name != "" {
		id.Name = name
	}
	if id.Date == "" && date != "" {
		id.Date = date
	}
}

// Note appends a formatted line to the diagnostic trace. The trace is for
// debugging only and never influences extraction results.
func (id *Identity) Note(format string, args ...interface{}) {
	id.Notes = append(id.Notes, fmt.Sprintf(format, args...))
}
