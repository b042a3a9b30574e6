// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package protocol

import (
	"fmt"
	"strings"
)

// ResultChunkSize is the largest Result slice carried by one frame.
const ResultChunkSize = 512 * 1024

// SplitResponse cuts resp into frames of at most chunkSize result bytes.
// Small responses are returned as a single frame without TotalChunks.
func SplitResponse(resp Response, chunkSize int) []Response {
	if chunkSize <= 0 {
		chunkSize = ResultChunkSize
	}
	resp.ResultLen = len(resp.Result)
	if len(resp.Result) <= chunkSize {
		resp.Chunk = 0
		resp.TotalChunks = 0
		return []Response{resp}
	}

	totalLen := len(resp.Result)
	totalChunks := (totalLen + chunkSize - 1) / chunkSize
	parts := make([]Response, 0, totalChunks)
	for i := 0; i < totalChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > totalLen {
			end = totalLen
		}
		part := resp
		part.Chunk = i
		part.TotalChunks = totalChunks
		part.Result = resp.Result[start:end]
		parts = append(parts, part)
	}
	return parts
}

// Assembler rebuilds a response delivered as consecutive chunks.
type Assembler struct {
	first Response
	buf   strings.Builder
	next  int
	done  bool
}

// Add consumes the next frame and reports whether the response is complete.
func (a *Assembler) Add(part Response) (bool, error) {
	if a.done {
		return true, fmt.Errorf("fragmento %d recibido tras completar la respuesta", part.Chunk)
	}
	if part.Chunk != a.next {
		return false, fmt.Errorf("fragmento fuera de orden: esperado %d, recibido %d", a.next, part.Chunk)
	}
	if a.next == 0 {
		a.first = part
	} else if part.TotalChunks != a.first.TotalChunks || part.RequestID != a.first.RequestID {
		return false, fmt.Errorf("fragmento %d no pertenece a la respuesta %s", part.Chunk, a.first.RequestID)
	}
	a.buf.WriteString(part.Result)
	a.next++
	if part.TotalChunks <= 1 || a.next >= part.TotalChunks {
		a.done = true
	}
	return a.done, nil
}

// Response returns the reassembled response once Add reported completion.
func (a *Assembler) Response() (Response, error) {
	if !a.done {
		return Response{}, fmt.Errorf("respuesta incompleta: %d fragmentos recibidos", a.next)
	}
	resp := a.first
	resp.Result = a.buf.String()
	resp.Chunk = 0
	resp.TotalChunks = 0
	if resp.ResultLen > 0 && resp.ResultLen != len(resp.Result) {
		return Response{}, fmt.Errorf("longitud de resultado inesperada: esperada %d, obtenida %d", resp.ResultLen, len(resp.Result))
	}
	return resp, nil
}
