package marshal

import "errors"

var (
	// ErrUnexpectedEnd indicates that a read operation needed more bytes
	// than the source had remaining. The decode in progress is aborted.
	ErrUnexpectedEnd = errors.New("[marshal] unexpected end of input")

	// ErrLengthMismatch indicates that a fixed-length byte field's actual
	// value length disagrees with the declared expected length.
	ErrLengthMismatch = errors.New("[marshal] byte string length mismatch")

	// ErrVaruintOverflow indicates a varuint that does not fit in 64 bits.
	ErrVaruintOverflow = errors.New("[marshal] varuint overflows 64 bits")

	// ErrTrailingBytes indicates that a deserialized object did not
	// consume its entire input buffer.
	ErrTrailingBytes = errors.New("[marshal] trailing bytes after object")

	// ErrFieldCollision indicates that the same field name was written
	// twice into one map form. This is a malformed type definition, not
	// bad input.
	ErrFieldCollision = errors.New("[marshal] duplicate field name in map form")

	// ErrFieldMissing indicates that a field was absent from the map form
	// being deserialized.
	ErrFieldMissing = errors.New("[marshal] field missing from map form")

	// ErrFieldType indicates that a map form field had an unexpected
	// dynamic type.
	ErrFieldType = errors.New("[marshal] wrong field type in map form")

	// ErrMapObject indicates an attempt to write a nested object into the
	// map form, which only supports primitive fields.
	ErrMapObject = errors.New("[marshal] nested objects unsupported in map form")
)
