// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package applog

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSanitizeArgsHidesSecretValues(t *testing.T) {
	got := SanitizeArgs([]string{"sign", "-i", "doc.pdf", "-password", "1234", "-config", "a=b", "-xml"})
	joined := strings.Join(got, " ")
	if strings.Contains(joined, "1234") || strings.Contains(joined, "a=b") {
		t.Fatalf("se filtran secretos en los argumentos, obtenido: %q", joined)
	}
	want := "sign -i doc.pdf -password [REDACTED_ARG] -config [REDACTED_ARG] -xml"
	if joined != want {
		t.Fatalf("argumentos saneados inesperados, obtenido: %q", joined)
	}
}

func TestSanitizeURIRedactsSensitiveParams(t *testing.T) {
	got := SanitizeURI("afirma://sign?idsession=abcdef123456&password=secreta&format=pades")
	if strings.Contains(got, "secreta") || strings.Contains(got, "abcdef123456") {
		t.Fatalf("URI sin sanear, obtenido: %q", got)
	}
	if !strings.Contains(got, "format=pades") {
		t.Fatalf("se esperaba conservar format, obtenido: %q", got)
	}

	malformed := "afirma://si gn?password=secreto123&format=pades"
	got = SanitizeURI(malformed)
	if strings.Contains(got, "secreto123") {
		t.Fatalf("URI no parseable sin sanear, obtenido: %q", got)
	}
	if got != SecretMeta("unparseable", malformed) {
		t.Fatalf("se esperaba solo metadatos, obtenido: %q", got)
	}
}

func TestMaskID(t *testing.T) {
	if got := MaskID(""); got != "-" {
		t.Fatalf("obtenido: %q", got)
	}
	if got := MaskID("corto"); got != "corto" {
		t.Fatalf("obtenido: %q", got)
	}
	if got := MaskID("0123456789abcdef"); got != "012345...cdef" {
		t.Fatalf("obtenido: %q", got)
	}
}

func TestInitWritesToLogDirAndCleansOldFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)
	t.Setenv(EnvRetentionDays, "1")

	old := filepath.Join(dir, "viejo.log")
	if err := os.WriteFile(old, []byte("x"), 0o600); err != nil {
		t.Fatalf("no se pudo crear log antiguo: %v", err)
	}
	past := time.Now().AddDate(0, 0, -5)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	prevOut, prevFlags := log.Writer(), log.Flags()
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	var console bytes.Buffer
	path, err := Init("Afirma Bridge", &console)
	if err != nil {
		t.Fatalf("Init fallo: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "afirma-bridge-") {
		t.Fatalf("ruta de log inesperada, obtenido: %q", path)
	}
	if Path() != path {
		t.Fatalf("Path no coincide, obtenido: %q", Path())
	}
	log.Printf("[Test] hola")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("no se pudo leer el log: %v", err)
	}
	if !strings.Contains(string(data), "[Test] hola") || !strings.Contains(console.String(), "[Test] hola") {
		t.Fatalf("el log no llega a fichero y consola, obtenido: %q / %q", data, console.String())
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("se esperaba borrar el log antiguo, err=%v", err)
	}
}

func TestLogLimitsFromEnv(t *testing.T) {
	t.Setenv(EnvRetentionDays, "abc")
	if got := logRetentionDays(); got != 14 {
		t.Fatalf("retencion por defecto inesperada: %d", got)
	}
	t.Setenv(EnvRetentionDays, "9999")
	if got := logRetentionDays(); got != 365 {
		t.Fatalf("retencion maxima inesperada: %d", got)
	}
	t.Setenv(EnvMaxTotalMB, "3")
	if got := logMaxTotalBytes(); got != 3*1024*1024 {
		t.Fatalf("limite de tamano inesperado: %d", got)
	}
}
