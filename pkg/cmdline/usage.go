// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package cmdline

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// ProgramName is the command shown in usage lines.
var ProgramName = "afirma-bridge"

var flagHelp = map[string]string{
	FlagGUI:           "Solicita la seleccion interactiva del almacen",
	FlagCertGUI:       "Solicita la seleccion interactiva del certificado",
	FlagInput:         "Fichero o directorio de entrada",
	FlagOutput:        "Fichero de salida",
	FlagAlgorithm:     "Algoritmo de firma (por defecto " + DefaultAlgorithm + ")",
	FlagFormat:        "Formato de firma (por defecto " + string(DefaultFormat) + ")",
	FlagConfig:        "Propiedades adicionales de configuracion de la firma",
	FlagStore:         "Almacen de claves (por defecto auto)",
	FlagPassword:      "Contrasena del almacen de claves",
	FlagAlias:         "Alias del certificado de firma",
	FlagFilter:        "Filtro de seleccion del certificado",
	FlagHashFormat:    "Formato de la huella (fichero: hex, b64, bin; directorio: txt, xml)",
	FlagHashAlgorithm: "Algoritmo de huella (por defecto " + DefaultHashAlgorithm + ")",
	FlagOperation:     "Operacion aplicada a cada fichero (por defecto " + string(DefaultMassiveOperation) + ")",
	FlagRecursive:     "Recorre los subdirectorios de la entrada",
	FlagPreURL:        "URL del servicio de prefirma del lote",
	FlagPostURL:       "URL del servicio de postfirma del lote",
	FlagXML:           "Devuelve la respuesta en XML",
}

var storeValues = []string{"auto", "windows", "mac", "mozilla", "dni", "pkcs12:<fichero p12>", "pkcs11:<biblioteca p11>"}

// UsageText renders the syntax of op. When precedingErr is not nil its
// message is printed first.
func UsageText(op Operation, precedingErr error) string {
	var b strings.Builder
	if precedingErr != nil {
		fmt.Fprintf(&b, "%s\n\n", precedingErr)
	}

	rules, ok := rulesFor(op)
	if !ok {
		names := make([]string, 0, len(catalog))
		for _, s := range catalog {
			names = append(names, s.op.String())
		}
		fmt.Fprintf(&b, "Sintaxis: %s <%s> [opciones...]\n", ProgramName, strings.Join(names, "|"))
		return b.String()
	}

	fmt.Fprintf(&b, "Sintaxis: %s %s", ProgramName, rules.op)
	if rules.mainFileNeeded {
		b.WriteString(" <fichero>")
	}
	b.WriteString(" [opciones...]\n\nOpciones:\n")

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, f := range rules.flags {
		arg := ""
		if flagKinds[f] == flagValue {
			arg = " <valor>"
		}
		fmt.Fprintf(tw, "  %s%s\t%s\n", f, arg, flagHelp[f])
	}
	_ = tw.Flush()

	if rules.allows(FlagFormat) {
		vals := make([]string, 0, len(formats))
		for _, f := range formats {
			vals = append(vals, string(f))
		}
		fmt.Fprintf(&b, "\nFormatos (%s): %s\n", FlagFormat, strings.Join(vals, ", "))
	}
	if rules.allows(FlagStore) {
		fmt.Fprintf(&b, "\nAlmacenes (%s): %s\n", FlagStore, strings.Join(storeValues, ", "))
	}
	if rules.allows(FlagOperation) {
		fmt.Fprintf(&b, "\nOperaciones (%s): %s, %s, %s\n", FlagOperation, MassiveSign, MassiveCosign, MassiveCountersign)
	}
	return b.String()
}
