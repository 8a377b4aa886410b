// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrorPolicy selects how an ErrorSink reacts to non-fatal parse
// conditions encountered while opening a document or extracting text.
type ErrorPolicy string

const (
	// PolicyStrict fails on the first recorded error.
	PolicyStrict ErrorPolicy = "strict"
	// PolicyDefault records up to 100 errors and otherwise continues,
	// producing degraded output for the offending unit.
	PolicyDefault ErrorPolicy = "default"
	// PolicyPermissive never gives up; every error is recorded (without
	// an upper bound) and processing always continues.
	PolicyPermissive ErrorPolicy = "permissive"
)

// ErrorKind categorizes a recorded ErrorRecord.
type ErrorKind string

const (
	KindInvalidHeader  ErrorKind = "invalid_header"
	KindInvalidXref    ErrorKind = "invalid_xref"
	KindMissingObject  ErrorKind = "missing_object"
	KindInvalidStream  ErrorKind = "invalid_stream"
	KindEncodingError  ErrorKind = "encoding_error"
	KindSyntaxError    ErrorKind = "syntax_error"
	KindEncrypted      ErrorKind = "encrypted"
	KindOutOfMemory    ErrorKind = "out_of_memory"
	KindPageNotFound   ErrorKind = "page_not_found"
)

// ErrorRecord is one entry accumulated by an ErrorSink.
type ErrorRecord struct {
	Kind    ErrorKind
	Offset  int64
	Message string
}

func (e ErrorRecord) String() string {
	return fmt.Sprintf("%s@%d: %s", e.Kind, e.Offset, e.Message)
}

// ErrorConfig configures an ErrorSink. MaxErrors is ignored for
// PolicyStrict (effectively 0) and PolicyPermissive (effectively
// unbounded); it only bounds PolicyDefault.
type ErrorConfig struct {
	Policy    ErrorPolicy `validate:"required,oneof=strict default permissive"`
	MaxErrors int         `validate:"min=0"`
}

// DefaultErrorConfig matches the "default" row of the error-policy
// table: up to 100 recorded errors before further ones are treated as
// fatal, every listed error kind tolerated up to that point.
func DefaultErrorConfig() ErrorConfig {
	return ErrorConfig{Policy: PolicyDefault, MaxErrors: 100}
}

// StrictErrorConfig aborts on the first error of any kind.
func StrictErrorConfig() ErrorConfig {
	return ErrorConfig{Policy: PolicyStrict, MaxErrors: 0}
}

// PermissiveErrorConfig never aborts and never drops a record for
// being over a cap.
func PermissiveErrorConfig() ErrorConfig {
	return ErrorConfig{Policy: PolicyPermissive}
}

// Validate checks cfg against its struct tags.
func (cfg ErrorConfig) Validate() error {
	return validator.New().Struct(cfg)
}

// ErrorSink accumulates ErrorRecords under an ErrorConfig's policy. It
// is safe for concurrent use; a Document's extraction methods may be
// called from multiple goroutines against independent pages even
// though a single Document's mutable caches are not safe for
// concurrent mutation (see the package-level concurrency notes).
type ErrorSink struct {
	mu     sync.Mutex
	cfg    ErrorConfig
	errs   []ErrorRecord
	fatal  bool
	fatalErr error
}

// NewErrorSink returns a sink governed by cfg.
func NewErrorSink(cfg ErrorConfig) *ErrorSink {
	return &ErrorSink{cfg: cfg}
}

// Record adds an error to the sink. It reports whether the caller
// should treat this as fatal and abort its current unit of work: true
// under PolicyStrict, or under PolicyDefault once MaxErrors has been
// reached.
func (s *ErrorSink) Record(kind ErrorKind, offset int64, format string, args ...interface{}) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := ErrorRecord{Kind: kind, Offset: offset, Message: fmt.Sprintf(format, args...)}

	switch s.cfg.Policy {
	case PolicyStrict:
		s.errs = append(s.errs, rec)
		s.fatal = true
		s.fatalErr = &PDFError{Op: string(kind), Err: fmt.Errorf("%s", rec.Message)}
		return true
	case PolicyPermissive:
		s.errs = append(s.errs, rec)
		return false
	default: // PolicyDefault
		if len(s.errs) >= s.cfg.MaxErrors {
			s.fatal = true
			if s.fatalErr == nil {
				s.fatalErr = fmt.Errorf("pdf: exceeded %d recorded errors, last: %s", s.cfg.MaxErrors, rec.Message)
			}
			return true
		}
		s.errs = append(s.errs, rec)
		return false
	}
}

// Fatal reports whether the sink has entered its fatal state (a
// strict-policy error, or a default-policy error count over MaxErrors).
func (s *ErrorSink) Fatal() (error, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatalErr, s.fatal
}

// Records returns a snapshot of every error recorded so far.
func (s *ErrorSink) Records() []ErrorRecord {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ErrorRecord, len(s.errs))
	copy(out, s.errs)
	return out
}

// Len reports how many errors have been recorded.
func (s *ErrorSink) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}
