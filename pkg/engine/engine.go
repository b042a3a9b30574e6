// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

// Package engine reaches the external signing engine. The engine is a black
// box: it receives a canonical afirma:// invocation and answers with text,
// encoding its own failures as SAF_NN/ERR-NN strings.
package engine

// Engine runs one protocol invocation to completion. Implementations never
// panic and never retry; failures are returned as error text.
type Engine interface {
	Launch(message string, protocolVersion int, viaSocket bool) string
}

// Func adapts a plain function to Engine.
type Func func(message string, protocolVersion int, viaSocket bool) string

func (f Func) Launch(message string, protocolVersion int, viaSocket bool) string {
	return f(message, protocolVersion, viaSocket)
}
