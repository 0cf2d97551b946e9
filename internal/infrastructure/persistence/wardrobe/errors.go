// Package wardrobe provides the SQL repositories for wardrobe items and outfit suggestions
package wardrobe

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// BackendError carries an SQLSTATE-style code for a storage failure.
type BackendError struct {
	Code    string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
}

func (e *BackendError) Unwrap() error { return e.Err }

// BackendCode exposes Code to the resolution error classifier.
func (e *BackendError) BackendCode() string { return e.Code }

// translateError maps SQLite driver errors onto backend codes. Other errors are
// wrapped unchanged so their messages stay classifiable.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	code := "58000"
	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		code = "23000"
	case sqlite3.ErrMismatch, sqlite3.ErrTooBig, sqlite3.ErrRange:
		code = "22000"
	case sqlite3.ErrAuth, sqlite3.ErrPerm:
		code = "42501"
	}
	return &BackendError{
		Code:    code,
		Message: fmt.Sprintf("%s: %s", op, sqliteErr.Error()),
		Err:     err,
	}
}
