// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package cmdline

import (
	"errors"
	"strings"
	"testing"
)

func TestUsageTextListsOnlyAcceptedFlags(t *testing.T) {
	all := make([]string, 0, len(flagKinds))
	for f := range flagKinds {
		all = append(all, f)
	}
	for _, op := range Operations() {
		text := UsageText(op, nil)
		if !strings.Contains(text, "Sintaxis: afirma-bridge "+op.String()) {
			t.Fatalf("uso de %s sin linea de sintaxis, obtenido: %q", op, text)
		}
		rules, _ := rulesFor(op)
		for _, f := range all {
			listed := strings.Contains(text, "  "+f+" ") || strings.Contains(text, "  "+f+"\t")
			if listed != rules.allows(f) {
				t.Fatalf("uso de %s: parametro %s listado=%v aceptado=%v, obtenido: %q", op, f, listed, rules.allows(f), text)
			}
		}
	}
}

func TestUsageTextVerifyAndBatch(t *testing.T) {
	verify := UsageText(OpVerify, nil)
	if strings.Contains(verify, "-format") || strings.Contains(verify, "Almacenes") {
		t.Fatalf("verify solo admite -i, obtenido: %q", verify)
	}

	batch := UsageText(OpBatchSign, nil)
	for _, want := range []string{"-preurl", "-posturl", "Almacenes", "pkcs11:"} {
		if !strings.Contains(batch, want) {
			t.Fatalf("falta %q en el uso de batchsign, obtenido: %q", want, batch)
		}
	}
	if strings.Contains(batch, "-algorithm") || strings.Contains(batch, "Formatos") {
		t.Fatalf("batchsign no admite -format ni -algorithm, obtenido: %q", batch)
	}

	massive := UsageText(OpMassive, nil)
	if !strings.Contains(massive, "Operaciones (-operation): sign, cosign, countersign") {
		t.Fatalf("faltan las operaciones masivas, obtenido: %q", massive)
	}
}

func TestUsageTextPrefixedByError(t *testing.T) {
	text := UsageText(OpSign, errors.New("Formato de firma no valido: bogus"))
	if !strings.HasPrefix(text, "Formato de firma no valido: bogus\n\n") {
		t.Fatalf("el error debe preceder al uso, obtenido: %q", text)
	}
	if !strings.Contains(text, "xades") || !strings.Contains(text, "facturae") {
		t.Fatalf("faltan los formatos, obtenido: %q", text)
	}
}

func TestUsageTextUnknownOperation(t *testing.T) {
	text := UsageText(Operation(0), nil)
	if !strings.Contains(text, "<sign|cosign|countersign|massive|list|verify|batchsign>") {
		t.Fatalf("uso general inesperado, obtenido: %q", text)
	}
}
