// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package cmdline

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorKind classifies a grammar violation.
type ErrorKind int

const (
	KindUnknownCommand ErrorKind = iota + 1
	KindUnknownFlag
	KindFlagNotAllowed
	KindDuplicateFlag
	KindMissingValue
	KindBadURL
	KindInvalidFormat
	KindInvalidHashFormat
	KindInvalidMassiveOperation
	KindAliasFilterConflict
	KindMissingMainFile
	KindAccess
)

var kindNames = map[ErrorKind]string{
	KindUnknownCommand:          "unknown-command",
	KindUnknownFlag:             "unknown-flag",
	KindFlagNotAllowed:          "flag-not-allowed",
	KindDuplicateFlag:           "duplicate-flag",
	KindMissingValue:            "missing-value",
	KindBadURL:                  "bad-url",
	KindInvalidFormat:           "invalid-format",
	KindInvalidHashFormat:       "invalid-hash-format",
	KindInvalidMassiveOperation: "invalid-massive-operation",
	KindAliasFilterConflict:     "alias-filter-conflict",
	KindMissingMainFile:         "missing-main-file",
	KindAccess:                  "access",
}

func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// GrammarError reports a malformed, incomplete or contradictory request.
// Position is the index of the offending token, or -1 when the violation is
// not tied to a single token.
type GrammarError struct {
	Kind     ErrorKind
	Flag     string
	Token    string
	Position int
	Msg      string
	Err      error
}

func (e *GrammarError) Error() string {
	return e.Msg
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}

// AccessMode is the permission a referenced path must grant.
type AccessMode int

const (
	AccessRead AccessMode = iota + 1
	AccessWrite
)

func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "lectura"
	case AccessWrite:
		return "escritura"
	default:
		return "desconocido"
	}
}

// AccessError reports a path that does not exist or does not grant Mode.
type AccessError struct {
	Path string
	Mode AccessMode
	Err  error
}

func (e *AccessError) Error() string {
	if errors.Is(e.Err, fs.ErrNotExist) {
		return fmt.Sprintf("no existe: %s", e.Path)
	}
	return fmt.Sprintf("sin permiso de %s: %s", e.Mode, e.Path)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func grammarErrorf(kind ErrorKind, flag, token string, pos int, format string, args ...interface{}) *GrammarError {
	return &GrammarError{
		Kind:     kind,
		Flag:     flag,
		Token:    token,
		Position: pos,
		Msg:      fmt.Sprintf(format, args...),
	}
}
