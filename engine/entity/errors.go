package entity

import "errors"

var (
	// ErrRecordSize is returned when a byte slice does not hold exactly one record.
	ErrRecordSize = errors.New("entity: byte slice does not match record size")

	// ErrLayoutDrift is returned when a Go record no longer serializes to its declared GPU size.
	ErrLayoutDrift = errors.New("entity: host record layout differs from GPU layout")
)
