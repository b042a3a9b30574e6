// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package dispatch

import "afirma-bridge/pkg/cmdline"

// Payload is what a transport hands to the dispatcher: a validated CLI
// request or a raw protocol message received over the socket.
type Payload interface {
	payload()
}

// RequestPayload carries a request built by cmdline.Parse.
type RequestPayload struct {
	Request *cmdline.Request
}

// MessagePayload is an afirma:// protocol message as sent by a web page.
type MessagePayload string

func (RequestPayload) payload() {}
func (MessagePayload) payload() {}
