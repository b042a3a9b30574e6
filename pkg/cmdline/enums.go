// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package cmdline

import (
	"fmt"
	"strings"
)

// Operation identifies one of the commands accepted by the bridge.
type Operation int

const (
	OpSign Operation = iota + 1
	OpCosign
	OpCountersign
	OpMassive
	OpList
	OpVerify
	OpBatchSign
)

var operationNames = map[Operation]string{
	OpSign:        "sign",
	OpCosign:      "cosign",
	OpCountersign: "countersign",
	OpMassive:     "massive",
	OpList:        "list",
	OpVerify:      "verify",
	OpBatchSign:   "batchsign",
}

// String returns the command name of the operation.
func (o Operation) String() string {
	if n, ok := operationNames[o]; ok {
		return n
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// ParseCommand maps a command token (case-insensitive) to its operation.
func ParseCommand(name string) (Operation, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for op, opName := range operationNames {
		if opName == n {
			return op, nil
		}
	}
	return 0, &GrammarError{
		Kind:     KindUnknownCommand,
		Token:    name,
		Position: -1,
		Msg:      fmt.Sprintf("Comando no reconocido: %s", name),
	}
}

// Operations returns every known operation in catalog order.
func Operations() []Operation {
	out := make([]Operation, 0, len(catalog))
	for _, rules := range catalog {
		out = append(out, rules.op)
	}
	return out
}

// Format is the signature format requested with -format.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatXAdES    Format = "xades"
	FormatPAdES    Format = "pades"
	FormatCAdES    Format = "cades"
	FormatFacturae Format = "facturae"
	FormatOOXML    Format = "ooxml"
	FormatODF      Format = "odf"

	DefaultFormat = FormatAuto
)

var formats = []Format{FormatAuto, FormatCAdES, FormatPAdES, FormatXAdES, FormatFacturae, FormatOOXML, FormatODF}

func parseFormat(v string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range formats {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// HashFormat is the digest presentation requested with -hformat. File and
// directory inputs accept disjoint subsets.
type HashFormat string

const (
	HashFileHex    HashFormat = "hex"
	HashFileBase64 HashFormat = "b64"
	HashFileBinary HashFormat = "bin"
	HashDirPlain   HashFormat = "txt"
	HashDirXML     HashFormat = "xml"

	DefaultFileHashFormat = HashFileHex
	DefaultDirHashFormat  = HashDirXML
)

var (
	fileHashFormats = []HashFormat{HashFileHex, HashFileBase64, HashFileBinary}
	dirHashFormats  = []HashFormat{HashDirPlain, HashDirXML}
)

func parseHashFormat(v string) (HashFormat, bool) {
	h := HashFormat(strings.ToLower(strings.TrimSpace(v)))
	if containsHashFormat(fileHashFormats, h) || containsHashFormat(dirHashFormats, h) {
		return h, true
	}
	return "", false
}

func containsHashFormat(list []HashFormat, h HashFormat) bool {
	for _, v := range list {
		if v == h {
			return true
		}
	}
	return false
}

// MassiveOperation is the per-file action applied by the massive command.
type MassiveOperation string

const (
	MassiveSign        MassiveOperation = "sign"
	MassiveCosign      MassiveOperation = "cosign"
	MassiveCountersign MassiveOperation = "countersign"

	DefaultMassiveOperation = MassiveSign
)

func parseMassiveOperation(v string) (MassiveOperation, bool) {
	switch m := MassiveOperation(strings.ToLower(strings.TrimSpace(v))); m {
	case MassiveSign, MassiveCosign, MassiveCountersign:
		return m, true
	default:
		return "", false
	}
}

const (
	DefaultAlgorithm     = "SHA512withRSA"
	DefaultHashAlgorithm = "SHA-256"
)
