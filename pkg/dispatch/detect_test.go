// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package dispatch

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"

	"afirma-bridge/pkg/cmdline"

	"github.com/stretchr/testify/require"
)

// minimalPDF builds a one page PDF with a correct cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

func zipWith(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return b.Bytes()
}

func TestDetectFormat(t *testing.T) {
	odt := zipWith(t, map[string]string{
		"mimetype":    "application/vnd.oasis.opendocument.text",
		"content.xml": "<office:document-content/>",
	}, "mimetype", "content.xml")
	docx := zipWith(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   "<w:document/>",
	}, "[Content_Types].xml", "word/document.xml")
	plainZip := zipWith(t, map[string]string{"a.txt": "a"}, "a.txt")

	cases := []struct {
		name string
		data []byte
		want cmdline.Format
	}{
		{"doc.pdf", minimalPDF(), cmdline.FormatPAdES},
		{"roto.pdf", []byte("%PDF-1.4\nbasura sin xref\n"), cmdline.FormatCAdES},
		{"factura.xml", []byte(`<?xml version="1.0"?><fe:Facturae xmlns:fe="http://www.facturae.es/Facturae/2014/v3.2.1/Facturae"><FileHeader/></fe:Facturae>`), cmdline.FormatFacturae},
		{"datos.xml", []byte("\xef\xbb\xbf  <datos><a>1</a></datos>"), cmdline.FormatXAdES},
		{"doc.odt", odt, cmdline.FormatODF},
		{"doc.docx", docx, cmdline.FormatOOXML},
		{"otro.zip", plainZip, cmdline.FormatCAdES},
		{"datos.bin", []byte{0, 1, 2, 3, 4}, cmdline.FormatCAdES},
		{"vacio.txt", nil, cmdline.FormatCAdES},
	}
	for _, c := range cases {
		got := detectFormat(writeFile(t, c.name, c.data))
		require.Equal(t, c.want, got, c.name)
	}
}

func TestAutoFormatResolvedForCLIRequests(t *testing.T) {
	eng := &fakeEngine{reply: "OK"}
	d := New(eng)

	pdfPath := writeFile(t, "doc.pdf", minimalPDF())
	req := parseRequest(t, cmdline.OpSign, "-i", pdfPath)
	d.Handle(RequestPayload{Request: req}, 0, false)
	_, q := eng.lastCall(t)
	require.Equal(t, "pades", q.Get(ParamFormat))

	req = parseRequest(t, cmdline.OpSign, "-i", pdfPath, "-format", "CAdES")
	d.Handle(RequestPayload{Request: req}, 0, false)
	_, q = eng.lastCall(t)
	require.Equal(t, "cades", q.Get(ParamFormat))

	req = parseRequest(t, cmdline.OpSign, "-gui")
	d.Handle(RequestPayload{Request: req}, 0, false)
	_, q = eng.lastCall(t)
	require.Equal(t, "auto", q.Get(ParamFormat))
}
