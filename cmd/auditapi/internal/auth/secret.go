package auth

const secretRedacted = "[REDACTED]"

// Secret holds credential material such as the service secret or an issued
// service token. Formatting, logging and serialization print a placeholder.
type Secret string

// String returns the redacted placeholder.
func (s Secret) String() string { return secretRedacted }

// GoString returns the redacted placeholder for %#v.
func (s Secret) GoString() string { return secretRedacted }

// MarshalText keeps the secret out of JSON and text encoders.
func (s Secret) MarshalText() ([]byte, error) { return []byte(secretRedacted), nil }

// Value returns the raw secret. Use only where it is put on the wire.
func (s Secret) Value() string { return string(s) }

// Empty reports whether no secret is configured.
func (s Secret) Empty() bool { return s == "" }
