package mikey

import (
	"errors"
	"fmt"
)

// ErrShortData is returned when a field extends past the end of the buffer.
type ErrShortData struct {
	Need int
	Have int
}

// Error implements the error interface.
func (e ErrShortData) Error() string {
	return fmt.Sprintf("buffer too short: need %d bytes, have %d", e.Need, e.Have)
}

// ErrInvalidData is returned when a field contains a value outside of its legal range.
type ErrInvalidData struct {
	Field string
	Value int
}

// Error implements the error interface.
func (e ErrInvalidData) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.Value)
}

// ErrUnsupportedVersion is returned when the header carries an unsupported version.
type ErrUnsupportedVersion struct {
	Version uint8
}

// Error implements the error interface.
func (e ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported version: %d", e.Version)
}

// ErrUnsupportedPayloadType is returned when a payload type has no in-memory representation.
type ErrUnsupportedPayloadType struct {
	Type PayloadType
}

// Error implements the error interface.
func (e ErrUnsupportedPayloadType) Error() string {
	return fmt.Sprintf("unsupported payload type: %v", e.Type)
}

// ErrPayloadTypeMismatch is returned when an operation is applied to a payload of the wrong type.
type ErrPayloadTypeMismatch struct {
	Expected PayloadType
	Actual   PayloadType
}

// Error implements the error interface.
func (e ErrPayloadTypeMismatch) Error() string {
	return fmt.Sprintf("expected a %v payload, got %v", e.Expected, e.Actual)
}

// ErrIndexOutOfRange is returned when a sequence index does not exist.
type ErrIndexOutOfRange struct {
	Index int
	Len   int
}

// Error implements the error interface.
func (e ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

// ErrValueTooLong is returned when a value does not fit into its length field.
type ErrValueTooLong struct {
	Field string
	Len   int
	Max   int
}

// Error implements the error interface.
func (e ErrValueTooLong) Error() string {
	return fmt.Sprintf("%s too long: %d bytes, maximum is %d", e.Field, e.Len, e.Max)
}

// errors returned by the SRTP parameter bridge.
var (
	ErrSRTPKeyMissing      = errors.New("SRTP key not provided")
	ErrEncryptedKEMAC      = errors.New("KEMAC payload is encrypted or authenticated")
	ErrKEMACNotFound       = errors.New("KEMAC payload not found")
	ErrKeyDataNotFound     = errors.New("key data sub-payload not found")
	ErrUnsupportedProtocol = errors.New("security policy protocol is not SRTP")
)

// ErrNilPayload is returned when a nil payload is added to a message or to a KEMAC payload.
var ErrNilPayload = errors.New("payload is nil")

// ErrUnsupportedCipher is returned when a SRTP cipher name is unknown.
type ErrUnsupportedCipher struct {
	Name string
}

// Error implements the error interface.
func (e ErrUnsupportedCipher) Error() string {
	return fmt.Sprintf("unsupported SRTP cipher '%s'", e.Name)
}

// ErrUnsupportedAuth is returned when a SRTP authentication name is unknown.
type ErrUnsupportedAuth struct {
	Name string
}

// Error implements the error interface.
func (e ErrUnsupportedAuth) Error() string {
	return fmt.Sprintf("unsupported SRTP authentication '%s'", e.Name)
}
