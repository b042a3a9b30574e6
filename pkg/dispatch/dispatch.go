// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

// Package dispatch is the single entry point shared by the CLI and the
// session server. It decodes both payload kinds into one invocation, applies
// protocol version gating, calls the engine once and shapes the response.
package dispatch

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"afirma-bridge/pkg/applog"
	"afirma-bridge/pkg/cmdline"
	"afirma-bridge/pkg/config"
	"afirma-bridge/pkg/engine"
	"afirma-bridge/pkg/protocol"
)

// Response is the outcome of one Handle call.
type Response struct {
	// Text is the engine output verbatim, the locally produced error text,
	// or their XML rendering when XML was requested.
	Text      string
	Failed    bool
	Err       error // set when the request was rejected before reaching the engine
	Operation cmdline.Operation
	XML       bool
}

type Option func(*Dispatcher)

// WithSerializedEngine makes calls to the engine mutually exclusive, for
// engines that are not reentrant.
func WithSerializedEngine() Option {
	return func(d *Dispatcher) { d.serialize = true }
}

// WithProtocolRange sets the accepted protocol versions (inclusive).
func WithProtocolRange(minVersion, maxVersion int) Option {
	return func(d *Dispatcher) {
		d.minVersion = minVersion
		d.maxVersion = maxVersion
	}
}

// WithDefaultProtocolVersion is used when Handle receives a non positive
// version and the message does not carry one.
func WithDefaultProtocolVersion(v int) Option {
	return func(d *Dispatcher) { d.defaultVersion = v }
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	engine         engine.Engine
	serialize      bool
	engineMu       sync.Mutex
	minVersion     int
	maxVersion     int
	defaultVersion int
}

func New(e engine.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine:         e,
		minVersion:     config.MinProtocolVersion,
		maxVersion:     config.MaxProtocolVersion,
		defaultVersion: config.DefaultProtocolVersion,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle runs p through the engine. A failing engine call is reported
// verbatim and never retried.
func (d *Dispatcher) Handle(p Payload, protocolVersion int, viaSocket bool) Response {
	inv, err := d.decode(p)
	if err != nil {
		return d.reject(inv, err)
	}

	v := protocolVersion
	if inv.Version > 0 {
		v = inv.Version
	}
	if v <= 0 {
		v = d.defaultVersion
	}
	if v < d.minVersion || v > d.maxVersion {
		return d.reject(inv, newProtocolError(protocol.ErrUnsupportedProcedure,
			fmt.Sprintf("Version de protocolo no soportada: %d", v)))
	}
	inv.Version = v

	message := inv.Encode()
	log.Printf("[Dispatch] op=%s v=%d socket=%t msg=%s", inv.Operation, v, viaSocket, applog.SanitizeURI(message))

	text := d.launch(message, v, viaSocket)
	failed := protocol.IsErrorText(text)
	if failed {
		log.Printf("[Dispatch] op=%s engine error: %s", inv.Operation, firstLine(text))
	}
	return d.respond(inv, text, failed, nil)
}

func (d *Dispatcher) decode(p Payload) (Invocation, error) {
	switch p := p.(type) {
	case RequestPayload:
		if p.Request == nil {
			return Invocation{}, newProtocolError(protocol.ErrParsingURI, "Peticion vacia")
		}
		return fromRequest(p.Request)
	case MessagePayload:
		return decodeMessage(string(p))
	default:
		return Invocation{}, newProtocolError(protocol.ErrParsingURI, "")
	}
}

func (d *Dispatcher) launch(message string, v int, viaSocket bool) string {
	if d.engine == nil {
		return protocol.FormatError(protocol.ErrSignatureFailed, "Motor de firma no disponible")
	}
	if d.serialize {
		d.engineMu.Lock()
		defer d.engineMu.Unlock()
	}
	return d.engine.Launch(message, v, viaSocket)
}

func (d *Dispatcher) reject(inv Invocation, err error) Response {
	log.Printf("[Dispatch] Rejected: %v", err)
	resp := d.respond(inv, err.Error(), true, err)
	var ge *cmdline.GrammarError
	if errors.As(err, &ge) {
		// Grammar errors go back to the CLI as plain text for the usage block.
		resp.Text = err.Error()
		resp.XML = false
	}
	return resp
}

func (d *Dispatcher) respond(inv Invocation, text string, failed bool, err error) Response {
	resp := Response{Text: text, Failed: failed, Err: err, Operation: inv.Operation, XML: inv.XML}
	if !inv.XML {
		return resp
	}
	rendered, rerr := renderXML(inv.Action(), text, failed)
	if rerr != nil {
		log.Printf("[Dispatch] XML rendering failed: %v", rerr)
		resp.Text = protocol.FormatError(protocol.ErrBuildResponse, "")
		resp.Failed = true
		return resp
	}
	resp.Text = rendered
	return resp
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || i >= 200 {
			return s[:i]
		}
	}
	return s
}
