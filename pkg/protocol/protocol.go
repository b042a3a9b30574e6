// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package protocol

import "fmt"

// ActionLaunch asks the engine to run one protocol invocation.
const ActionLaunch = "launch"

// Request sent to the signing engine
type Request struct {
	RequestID       interface{} `json:"requestId"`
	Action          string      `json:"action"`
	Message         string      `json:"message,omitempty"` // canonical afirma:// invocation
	ProtocolVersion int         `json:"protocolVersion,omitempty"`
	ViaSocket       bool        `json:"viaSocket,omitempty"`
}

// Response from the signing engine
type Response struct {
	RequestID   string `json:"requestId"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Result      string `json:"result,omitempty"`
	ResultLen   int    `json:"resultLen,omitempty"`   // Total length for integrity check
	Chunk       int    `json:"chunk"`                 // Current chunk index (0-based) - MUST always serialize
	TotalChunks int    `json:"totalChunks,omitempty"` // Total number of chunks
}

// NormalizeRequestID renders a JSON request id (string or number) as text.
func NormalizeRequestID(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
