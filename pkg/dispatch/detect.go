// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package dispatch

import (
	"archive/zip"
	"bytes"
	"io"
	"log"
	"os"
	"strings"

	"afirma-bridge/pkg/cmdline"

	"github.com/beevik/etree"
	"github.com/digitorus/pdf"
)

// Largest document inspected as XML when resolving the auto format.
const maxXMLSniffSize = 32 << 20

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// detectFormat picks the signature format for "auto" from the document
// contents: PDF gets PAdES, Facturae invoices Facturae, other XML XAdES,
// office containers their own format and anything else CAdES.
func detectFormat(path string) cmdline.Format {
	f, err := os.Open(path)
	if err != nil {
		return cmdline.FormatCAdES
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return cmdline.FormatCAdES
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	head = head[:n]

	var format cmdline.Format
	switch {
	case bytes.HasPrefix(head, pdfMagic):
		format = cmdline.FormatCAdES
		if isPDF(f, fi.Size()) {
			format = cmdline.FormatPAdES
		}
	case bytes.HasPrefix(head, zipMagic):
		format = detectZipFormat(f, fi.Size())
	case looksLikeXML(head) && fi.Size() <= maxXMLSniffSize:
		format = detectXMLFormat(f)
	default:
		format = cmdline.FormatCAdES
	}
	log.Printf("[Dispatch] Formato auto resuelto a %s", format)
	return format
}

func isPDF(r io.ReaderAt, size int64) (ok bool) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
	}()
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return false
	}
	return doc.NumPage() >= 1
}

func detectZipFormat(r io.ReaderAt, size int64) cmdline.Format {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return cmdline.FormatCAdES
	}
	for _, zf := range zr.File {
		switch zf.Name {
		case "mimetype":
			rc, err := zf.Open()
			if err != nil {
				continue
			}
			mt, _ := io.ReadAll(io.LimitReader(rc, 256))
			_ = rc.Close()
			if strings.HasPrefix(strings.TrimSpace(string(mt)), "application/vnd.oasis.opendocument") {
				return cmdline.FormatODF
			}
		case "[Content_Types].xml":
			return cmdline.FormatOOXML
		}
	}
	return cmdline.FormatCAdES
}

func looksLikeXML(head []byte) bool {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")), " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '<'
}

func detectXMLFormat(f *os.File) cmdline.Format {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return cmdline.FormatCAdES
	}
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(f); err != nil {
		return cmdline.FormatCAdES
	}
	root := doc.Root()
	if root == nil {
		return cmdline.FormatCAdES
	}
	if root.Tag == "Facturae" {
		return cmdline.FormatFacturae
	}
	return cmdline.FormatXAdES
}
