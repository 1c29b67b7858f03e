// Package tagerr defines the error taxonomy of the analysis core
// (spec.md §7). Every error the core can surface to a caller wraps one of
// these sentinels, so callers can classify failures with errors.Is instead
// of parsing message text.
package tagerr

import (
	"errors"
	"fmt"
)

// Kind identifies one taxonomy member.
type Kind string

const (
	KindInputNotFound          Kind = "InputNotFound"
	KindImageFileMissing       Kind = "ImageFileMissing"
	KindUnsupportedImageFormat Kind = "UnsupportedImageFormat"
	KindInvalidRuleset         Kind = "InvalidRuleset"
	KindInvalidConfig          Kind = "InvalidConfig"
	KindIoFailure              Kind = "IoFailure"
	KindCancelled              Kind = "Cancelled"
)

var (
	ErrInputNotFound          = errors.New(string(KindInputNotFound))
	ErrImageFileMissing       = errors.New(string(KindImageFileMissing))
	ErrUnsupportedImageFormat = errors.New(string(KindUnsupportedImageFormat))
	ErrInvalidRuleset         = errors.New(string(KindInvalidRuleset))
	ErrInvalidConfig          = errors.New(string(KindInvalidConfig))
	ErrIoFailure              = errors.New(string(KindIoFailure))
	ErrCancelled              = errors.New(string(KindCancelled))
)

var sentinels = map[Kind]error{
	KindInputNotFound:          ErrInputNotFound,
	KindImageFileMissing:       ErrImageFileMissing,
	KindUnsupportedImageFormat: ErrUnsupportedImageFormat,
	KindInvalidRuleset:         ErrInvalidRuleset,
	KindInvalidConfig:          ErrInvalidConfig,
	KindIoFailure:              ErrIoFailure,
	KindCancelled:              ErrCancelled,
}

// taggedError wraps a taxonomy sentinel with a contextual message while
// keeping errors.Is/As working against the sentinel.
type taggedError struct {
	kind    Kind
	sentinel error
	detail  string
}

func (e *taggedError) Error() string {
	if e.detail == "" {
		return string(e.kind)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.detail)
}

func (e *taggedError) Unwrap() error { return e.sentinel }

// Wrap builds an error of the given kind carrying detail, chained to the
// taxonomy sentinel so errors.Is(err, ErrXxx) succeeds.
func Wrap(kind Kind, detail string) error {
	sentinel, ok := sentinels[kind]
	if !ok {
		sentinel = errors.New(string(kind))
	}
	return &taggedError{kind: kind, sentinel: sentinel, detail: detail}
}

// Wrapf is Wrap with printf-style detail formatting.
func Wrapf(kind Kind, format string, args ...any) error {
	return Wrap(kind, fmt.Sprintf(format, args...))
}

// KindOf returns the taxonomy Kind an error belongs to, or "" if the error
// does not wrap any known sentinel.
func KindOf(err error) Kind {
	for kind, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return ""
}

// IsCancelled reports whether err is, or wraps, ErrCancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
