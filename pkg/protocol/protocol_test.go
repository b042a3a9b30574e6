// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestResponseChunkAlwaysSerialized(t *testing.T) {
	r := Response{RequestID: "1", Success: true}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var obj map[string]any
	if err = json.Unmarshal(b, &obj); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := obj["chunk"]; !ok {
		t.Fatalf("expected 'chunk' field to be serialized")
	}
	if _, ok := obj["totalChunks"]; ok {
		t.Fatalf("did not expect 'totalChunks' when value is zero")
	}
}

func TestRequestIDSupportsStringAndNumber(t *testing.T) {
	var req Request

	if err := json.Unmarshal([]byte(`{"requestId":"abc","action":"launch"}`), &req); err != nil {
		t.Fatalf("string requestId unmarshal failed: %v", err)
	}
	if got := NormalizeRequestID(req.RequestID); got != "abc" {
		t.Fatalf("unexpected requestId value: %q", got)
	}

	if err := json.Unmarshal([]byte(`{"requestId":12,"action":"launch"}`), &req); err != nil {
		t.Fatalf("number requestId unmarshal failed: %v", err)
	}
	if got := NormalizeRequestID(req.RequestID); got != "12" {
		t.Fatalf("expected numeric requestId to normalize to 12, got %q", got)
	}
}

func TestMessageFraming(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, []byte(`{"action":"launch"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := WriteMessage(&buf, []byte(`{}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := binary.LittleEndian.Uint32(buf.Bytes()[:4]); got != 19 {
		t.Fatalf("unexpected length prefix: %d", got)
	}

	first, err := ReadMessage(&buf)
	if err != nil || string(first) != `{"action":"launch"}` {
		t.Fatalf("unexpected first frame %q err=%v", first, err)
	}
	second, err := ReadMessage(&buf)
	if err != nil || string(second) != `{}` {
		t.Fatalf("unexpected second frame %q err=%v", second, err)
	}
	if _, err := ReadMessage(&buf); err != io.EOF {
		t.Fatalf("expected EOF after last frame, got %v", err)
	}
}

func TestReadMessageRejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(MaxMessageSize+1))
	if _, err := ReadMessage(&buf); !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("expected ErrMessageTooLarge, got %v", err)
	}
}

func TestReadMessageTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(10))
	buf.WriteString("abc")
	if _, err := ReadMessage(&buf); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestSplitAndAssembleResponse(t *testing.T) {
	result := strings.Repeat("0123456789", 25)
	parts := SplitResponse(Response{RequestID: "7", Success: true, Result: result}, 64)
	if len(parts) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(parts))
	}
	for i, p := range parts {
		if p.Chunk != i || p.TotalChunks != 4 || p.ResultLen != len(result) {
			t.Fatalf("unexpected chunk header %+v", p)
		}
	}

	var a Assembler
	for i, p := range parts {
		done, err := a.Add(p)
		if err != nil {
			t.Fatalf("add chunk %d: %v", i, err)
		}
		if done != (i == len(parts)-1) {
			t.Fatalf("unexpected completion at chunk %d", i)
		}
	}
	resp, err := a.Response()
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if resp.Result != result || !resp.Success || resp.RequestID != "7" {
		t.Fatalf("unexpected assembled response %+v", resp)
	}
}

func TestSplitSmallResponseIsSingleFrame(t *testing.T) {
	parts := SplitResponse(Response{RequestID: "1", Result: "OK"}, 0)
	if len(parts) != 1 || parts[0].TotalChunks != 0 || parts[0].Result != "OK" {
		t.Fatalf("unexpected frames %+v", parts)
	}
	var a Assembler
	done, err := a.Add(parts[0])
	if !done || err != nil {
		t.Fatalf("single frame must complete, done=%v err=%v", done, err)
	}
}

func TestAssemblerRejectsOutOfOrderChunk(t *testing.T) {
	parts := SplitResponse(Response{RequestID: "1", Result: "abcdef"}, 2)
	var a Assembler
	if _, err := a.Add(parts[1]); err == nil {
		t.Fatalf("expected out of order error")
	}
	if _, err := a.Response(); err == nil {
		t.Fatalf("expected incomplete response error")
	}
}

func TestFormatError(t *testing.T) {
	cases := []struct{ got, want string }{
		{FormatError(ErrInvalidProtocol, ""), "SAF_02: Protocolo no soportado"},
		{FormatError(ErrUnsupportedOperation, ""), "SAF_04: Codigo de operacion no soportado"},
		{FormatError(ErrUnsupportedProcedure, "version 9"), "SAF_21: version 9"},
		{FormatError(ErrInvalidSessionID, "  "), "SAF_46: Id de sesion invalido"},
		{FormatError("ERROR_DESCONOCIDO", "mal formado"), "SAF_03: mal formado"},
		{FormatError(ErrExternalRequestSocket, ""), "SAF_47: Peticion externa no permitida"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("obtenido: %q, esperado: %q", c.got, c.want)
		}
	}
}

func TestIsErrorText(t *testing.T) {
	for _, s := range []string{"SAF_09: fallo", "err-11: x", " ERROR_X", "saf_03"} {
		if !IsErrorText(s) {
			t.Fatalf("expected error text for %q", s)
		}
	}
	for _, s := range []string{"OK", "MIIB...", "CANCEL", ""} {
		if IsErrorText(s) {
			t.Fatalf("did not expect error text for %q", s)
		}
	}
}
