// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package cmdline

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Request is a validated, fully-defaulted operation request. It is built only
// by Parse and never modified afterwards.
type Request struct {
	op Operation

	mainFile   string
	inputFile  string
	outputFile string

	store     string
	alias     string
	filter    string
	aliasSet  bool
	filterSet bool
	password  string

	format        Format
	hashFormat    HashFormat
	algorithm     string
	hashAlgorithm string
	extraParams   string
	massiveOp     MassiveOperation

	preURL  *url.URL
	postURL *url.URL

	xml       bool
	recursive bool
	gui       bool
	certGUI   bool
}

func (r *Request) Operation() Operation { return r.op }

// MainFile is the positional input consumed right after the command, if the
// operation requires one.
func (r *Request) MainFile() string { return r.mainFile }

func (r *Request) InputFile() string  { return r.inputFile }
func (r *Request) OutputFile() string { return r.outputFile }
func (r *Request) Store() string      { return r.store }
func (r *Request) Alias() string      { return r.alias }
func (r *Request) Filter() string     { return r.filter }
func (r *Request) Password() string   { return r.password }
func (r *Request) ExtraParams() string {
	return r.extraParams
}

// Format returns the requested signature format or "auto".
func (r *Request) Format() Format {
	if r.format == "" {
		return DefaultFormat
	}
	return r.format
}

// HashFormat returns the raw -hformat value, empty when absent. Use
// HashFileFormat or HashDirectoryFormat to resolve it against the input kind.
func (r *Request) HashFormat() HashFormat { return r.hashFormat }

// HashFileFormat resolves -hformat for a single-file input.
func (r *Request) HashFileFormat() (HashFormat, error) {
	if r.hashFormat == "" {
		return DefaultFileHashFormat, nil
	}
	if !containsHashFormat(fileHashFormats, r.hashFormat) {
		return "", grammarErrorf(KindInvalidHashFormat, FlagHashFormat, string(r.hashFormat), -1,
			"Formato de huella no valido para un fichero: %s", r.hashFormat)
	}
	return r.hashFormat, nil
}

// HashDirectoryFormat resolves -hformat for a directory input.
func (r *Request) HashDirectoryFormat() (HashFormat, error) {
	if r.hashFormat == "" {
		return DefaultDirHashFormat, nil
	}
	if !containsHashFormat(dirHashFormats, r.hashFormat) {
		return "", grammarErrorf(KindInvalidHashFormat, FlagHashFormat, string(r.hashFormat), -1,
			"Formato de huella no valido para un directorio: %s", r.hashFormat)
	}
	return r.hashFormat, nil
}

// ResolvedHashFormat picks the file or directory variant depending on what
// the input path currently is.
func (r *Request) ResolvedHashFormat() (HashFormat, error) {
	in := r.inputFile
	if in == "" {
		in = r.mainFile
	}
	if in != "" {
		if fi, err := os.Stat(in); err == nil && fi.IsDir() {
			return r.HashDirectoryFormat()
		}
	}
	return r.HashFileFormat()
}

func (r *Request) Algorithm() string {
	if r.algorithm == "" {
		return DefaultAlgorithm
	}
	return r.algorithm
}

func (r *Request) HashAlgorithm() string {
	if r.hashAlgorithm == "" {
		return DefaultHashAlgorithm
	}
	return r.hashAlgorithm
}

func (r *Request) MassiveOperation() MassiveOperation {
	if r.massiveOp == "" {
		return DefaultMassiveOperation
	}
	return r.massiveOp
}

func (r *Request) PreURL() *url.URL  { return r.preURL }
func (r *Request) PostURL() *url.URL { return r.postURL }
func (r *Request) XML() bool         { return r.xml }
func (r *Request) Recursive() bool   { return r.recursive }

// GUI reports whether keystore access needs a human in the loop.
func (r *Request) GUI() bool { return r.gui }

// CertGUI reports whether certificate selection needs a human in the loop.
func (r *Request) CertGUI() bool { return r.certGUI }

// String renders the request for logs. The password and extra params are
// never included verbatim.
func (r *Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s format=%s", r.op, r.Format())
	if r.inputFile != "" {
		fmt.Fprintf(&b, " in=%s", r.inputFile)
	}
	if r.outputFile != "" {
		fmt.Fprintf(&b, " out=%s", r.outputFile)
	}
	if r.store != "" {
		fmt.Fprintf(&b, " store=%s", r.store)
	}
	if r.alias != "" {
		fmt.Fprintf(&b, " alias=%s", r.alias)
	}
	if r.password != "" {
		b.WriteString(" password=[REDACTED]")
	}
	if r.extraParams != "" {
		fmt.Fprintf(&b, " config[len=%d]", len(r.extraParams))
	}
	return b.String()
}
