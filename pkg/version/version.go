// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package version

const CurrentVersion = "1.0.0"

var (
	// Se pueden sobrescribir en compilacion con -ldflags:
	// -X afirma-bridge/pkg/version.BuildCommit=<hash>
	// -X afirma-bridge/pkg/version.BuildDate=<YYYY-MM-DDTHH:MM:SSZ>
	BuildCommit = "local"
	BuildDate   = "desconocida"
)

// String renders the version line printed by the CLI.
func String() string {
	return CurrentVersion + " (" + BuildCommit + ", " + BuildDate + ")"
}
