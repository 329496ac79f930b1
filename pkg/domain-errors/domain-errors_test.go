package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: These are core error primitives used at every trust boundary.
// Unit tests ensure invariants like "wrapped domain errors preserve original code"
// and "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotEnrolled, Message: "no active fingerprint template"}
		s.Equal("no active fingerprint template", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeNotEnrolled}
		s.Equal("not_enrolled", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection refused")
		err := &Error{Code: CodeStorage, Message: "template store failed", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotEnrolled, Message: "not found"}
		s.Nil(err.Unwrap())
	})

	s.Run("works with errors.Unwrap", func() {
		inner := errors.New("root cause")
		err := &Error{Code: CodeStorage, Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeNotEnrolled, Message: "no active fingerprint template"}
		err2 := &Error{Code: CodeNotEnrolled, Message: "no active face template"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeNotEnrolled}
		err2 := &Error{Code: CodeStorage}
		s.False(err1.Is(err2))
	})

	s.Run("does not match non-domain errors", func() {
		err1 := &Error{Code: CodeNotEnrolled}
		err2 := errors.New("not found")
		s.False(err1.Is(err2))
	})

	s.Run("works with errors.Is through chain", func() {
		inner := &Error{Code: CodeNotEnrolled, Message: "original"}
		wrapped := &Error{Code: CodeStorage, Message: "wrapped", Err: inner}
		target := &Error{Code: CodeNotEnrolled}

		// errors.Is should find the inner error through the chain
		s.True(errors.Is(wrapped, target))
	})
}

func (s *DomainErrorsSuite) TestNew() {
	s.Run("creates error with code and message", func() {
		err := New(CodeInvalidImage, "image could not be decoded")
		s.Require().NotNil(err)

		var domainErr *Error
		s.Require().True(errors.As(err, &domainErr))
		s.Equal(CodeInvalidImage, domainErr.Code)
		s.Equal("image could not be decoded", domainErr.Message)
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code when wrapping domain error", func() {
		original := New(CodeNotEnrolled, "no active fingerprint template")
		wrapped := Wrap(original, CodeStorage, "template lookup failed")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		// Should preserve CodeNotEnrolled, not CodeStorage
		s.Equal(CodeNotEnrolled, domainErr.Code)
		s.Equal("template lookup failed", domainErr.Message)
	})

	s.Run("uses provided code when wrapping non-domain error", func() {
		original := errors.New("pool acquire timeout")
		wrapped := Wrap(original, CodeStorage, "template store failed")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeStorage, domainErr.Code)
		s.Equal("template store failed", domainErr.Message)
	})

	s.Run("wrapped error is accessible via Unwrap", func() {
		original := errors.New("root cause")
		wrapped := Wrap(original, CodeStorage, "template store failed")

		s.True(errors.Is(wrapped, original))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("returns true for matching code", func() {
		err := New(CodeNotEnrolled, "not found")
		s.True(HasCode(err, CodeNotEnrolled))
	})

	s.Run("returns false for non-matching code", func() {
		err := New(CodeNotEnrolled, "not found")
		s.False(HasCode(err, CodeStorage))
	})

	s.Run("returns false for non-domain error", func() {
		err := errors.New("regular error")
		s.False(HasCode(err, CodeNotEnrolled))
	})

	s.Run("finds code through error chain", func() {
		inner := New(CodeNotEnrolled, "original")
		wrapped := Wrap(inner, CodeStorage, "wrapped")
		// HasCode should find CodeNotEnrolled since Wrap preserves original code
		s.True(HasCode(wrapped, CodeNotEnrolled))
	})

	s.Run("returns false for nil error", func() {
		s.False(HasCode(nil, CodeNotEnrolled))
	})
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Run("returns code of domain error", func() {
		s.Equal(CodeDecryptionFailed, CodeOf(New(CodeDecryptionFailed, "bad tag")))
	})

	s.Run("falls back to internal for plain errors", func() {
		s.Equal(CodeInternal, CodeOf(errors.New("boom")))
	})

	s.Run("finds code through fmt wrapping", func() {
		err := fmt.Errorf("verify: %w", New(CodeNotEnrolled, "missing"))
		s.Equal(CodeNotEnrolled, CodeOf(err))
	})
}
