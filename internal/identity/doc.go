// Package identity provides the (patient name, exam date) model and the
// parsing primitives every extraction strategy shares: the canonical date
// normalizer, the filename-safe name sanitizer, and the ordered rule tables
// that recover names and dates from free text and from filename stems.
//
// All rule tables are evaluated in fixed priority order; the first rule that
// produces a usable value wins. Dates are always validated against real
// calendar rules before being accepted, and the canonical internal format is
// the digit-only YYYYMMDD token.
package identity
