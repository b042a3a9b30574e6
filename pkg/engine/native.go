// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"

	"afirma-bridge/pkg/applog"
	"afirma-bridge/pkg/protocol"

	"github.com/google/uuid"
)

// NativeHost starts the engine executable once per invocation and talks to
// it with length-prefixed JSON frames over stdin/stdout.
type NativeHost struct {
	Path string
	Args []string
	Env  []string
}

func (h NativeHost) Launch(message string, protocolVersion int, viaSocket bool) string {
	if strings.TrimSpace(h.Path) == "" {
		return protocol.FormatError(protocol.ErrSignatureFailed, "Motor de firma no configurado")
	}

	reqID := uuid.NewString()
	log.Printf("[Engine] Launch id=%s v=%d socket=%t msg=%s", applog.MaskID(reqID), protocolVersion, viaSocket, applog.SanitizeURI(message))

	resp, err := h.exchange(protocol.Request{
		RequestID:       reqID,
		Action:          protocol.ActionLaunch,
		Message:         message,
		ProtocolVersion: protocolVersion,
		ViaSocket:       viaSocket,
	})
	if err != nil {
		log.Printf("[Engine] Error id=%s: %v", applog.MaskID(reqID), err)
		return protocol.FormatError(protocol.ErrSignatureFailed, "Error comunicando con el motor de firma")
	}
	if resp.RequestID != "" && resp.RequestID != reqID {
		log.Printf("[Engine] Unexpected response id=%s (expected %s)", applog.MaskID(resp.RequestID), applog.MaskID(reqID))
		return protocol.FormatError(protocol.ErrSignatureFailed, "Respuesta del motor de firma no esperada")
	}
	if !resp.Success {
		if protocol.IsErrorText(resp.Error) {
			return resp.Error
		}
		return protocol.FormatError(protocol.ErrSignatureFailed, resp.Error)
	}
	log.Printf("[Engine] Done id=%s len=%d", applog.MaskID(reqID), len(resp.Result))
	return resp.Result
}

func (h NativeHost) exchange(req protocol.Request) (protocol.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return protocol.Response{}, fmt.Errorf("codificando peticion: %w", err)
	}

	cmd := exec.Command(h.Path, h.Args...)
	if len(h.Env) > 0 {
		cmd.Env = h.Env
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return protocol.Response{}, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return protocol.Response{}, err
	}
	if err := cmd.Start(); err != nil {
		return protocol.Response{}, fmt.Errorf("iniciando %s: %w", h.Path, err)
	}

	writeErr := protocol.WriteMessage(stdin, payload)
	_ = stdin.Close()

	resp, readErr := readResponse(stdout)
	if readErr != nil {
		// Unblock the engine if it is still writing.
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()

	switch {
	case writeErr != nil:
		return protocol.Response{}, fmt.Errorf("enviando peticion: %w", writeErr)
	case readErr != nil:
		if waitErr != nil {
			return protocol.Response{}, fmt.Errorf("leyendo respuesta: %w (proceso: %v, stderr: %q)", readErr, waitErr, tail(stderr.String()))
		}
		return protocol.Response{}, fmt.Errorf("leyendo respuesta: %w", readErr)
	case waitErr != nil:
		log.Printf("[Engine] Process exited with error after responding: %v", waitErr)
	}
	return resp, nil
}

func readResponse(r io.Reader) (protocol.Response, error) {
	var a protocol.Assembler
	for {
		frame, err := protocol.ReadMessage(r)
		if err != nil {
			return protocol.Response{}, err
		}
		var part protocol.Response
		if err := json.Unmarshal(frame, &part); err != nil {
			return protocol.Response{}, fmt.Errorf("respuesta no valida: %w", err)
		}
		done, err := a.Add(part)
		if err != nil {
			return protocol.Response{}, err
		}
		if done {
			return a.Response()
		}
	}
}

func tail(s string) string {
	const limit = 512
	s = strings.TrimSpace(s)
	if len(s) > limit {
		return s[len(s)-limit:]
	}
	return s
}
