// Package errs defines the error kinds shared by the catalog, the vector
// stores and the index runtime.
//
// Every error carries a Kind so callers can classify failures with errors.Is
// against the package sentinels without parsing messages:
//
//	if errors.Is(err, errs.ErrAlreadyExists) { ... }
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAlreadyExists Kind = "already_exists"
	KindNotFound      Kind = "not_found"
	KindCreation      Kind = "creation"
	KindWrite         Kind = "write"
	KindRead          Kind = "read"
	KindDeletion      Kind = "deletion"
	KindSerialization Kind = "serialization"
	KindEmbedding     Kind = "embedding"
	KindPersistence   Kind = "persistence"
)

// Error is the structured error returned by vecindex packages.
type Error struct {
	// Kind is the failure class.
	Kind Kind
	// Subject names the index or collection involved, if any.
	Subject string
	// Message is the human readable description.
	Message string
	// Cause is the underlying backend or driver error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Subject)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches target when it is an *Error of the same kind. A target with a
// subject additionally requires the subjects to be equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Subject == "" || t.Subject == e.Subject
}

// Sentinels for errors.Is.
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrCreation      = &Error{Kind: KindCreation}
	ErrWrite         = &Error{Kind: KindWrite}
	ErrRead          = &Error{Kind: KindRead}
	ErrDeletion      = &Error{Kind: KindDeletion}
	ErrSerialization = &Error{Kind: KindSerialization}
	ErrEmbedding     = &Error{Kind: KindEmbedding}
	ErrPersistence   = &Error{Kind: KindPersistence}
)

// New creates an error of the given kind.
func New(kind Kind, subject, message string, cause error) *Error {
	return &Error{Kind: kind, Subject: subject, Message: message, Cause: cause}
}

// Validation reports invalid caller input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists reports a name collision.
func AlreadyExists(name string) *Error {
	return &Error{Kind: KindAlreadyExists, Subject: name, Message: "index already exists"}
}

// NotFound reports a missing index.
func NotFound(name string) *Error {
	return &Error{Kind: KindNotFound, Subject: name, Message: "index not found"}
}

// Creation wraps a vector store failure to create a collection.
func Creation(collection string, cause error) *Error {
	return &Error{Kind: KindCreation, Subject: collection, Message: "failed to create collection", Cause: cause}
}

// Write wraps a vector store failure to upsert records.
func Write(collection string, cause error) *Error {
	return &Error{Kind: KindWrite, Subject: collection, Message: "failed to write collection", Cause: cause}
}

// Read wraps a vector store failure to search or count.
func Read(collection string, cause error) *Error {
	return &Error{Kind: KindRead, Subject: collection, Message: "failed to read collection", Cause: cause}
}

// Deletion wraps a vector store failure to drop a collection.
func Deletion(collection string, cause error) *Error {
	return &Error{Kind: KindDeletion, Subject: collection, Message: "failed to drop collection", Cause: cause}
}

// Serialization reports an encode or decode failure of stored data.
func Serialization(subject string, cause error) *Error {
	return &Error{Kind: KindSerialization, Subject: subject, Message: "malformed stored data", Cause: cause}
}

// Embedding wraps an embedding generator failure.
func Embedding(model string, cause error) *Error {
	return &Error{Kind: KindEmbedding, Subject: model, Message: "failed to generate embeddings", Cause: cause}
}

// Persistence wraps a catalog failure.
func Persistence(subject string, cause error) *Error {
	return &Error{Kind: KindPersistence, Subject: subject, Message: "catalog operation failed", Cause: cause}
}

// KindOf returns the kind of the outermost *Error in err's chain, or an
// empty Kind when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
