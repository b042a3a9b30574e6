// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package dispatch

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// renderXML wraps a response text in an <afirma> document:
//
//	<afirma operation="sign" success="true"><result>...</result></afirma>
//	<afirma operation="sign" success="false"><error code="SAF_09">...</error></afirma>
func renderXML(operation, text string, failed bool) (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("afirma")
	if operation != "" {
		root.CreateAttr("operation", operation)
	}
	root.CreateAttr("success", strconv.FormatBool(!failed))

	if failed {
		el := root.CreateElement("error")
		code, msg := splitErrorText(text)
		if code != "" {
			el.CreateAttr("code", code)
		}
		el.SetText(msg)
	} else {
		root.CreateElement("result").SetText(text)
	}

	doc.Indent(2)
	return doc.WriteToString()
}

// splitErrorText separates "SAF_09: mensaje" into code and message.
func splitErrorText(text string) (string, string) {
	i := strings.Index(text, ":")
	if i <= 0 || strings.ContainsAny(text[:i], " \t") {
		return "", text
	}
	return text[:i], strings.TrimSpace(text[i+1:])
}
