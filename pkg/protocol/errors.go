// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package protocol

import "strings"

// Internal error names mapped onto the SAF_NN family understood by web pages.
const (
	ErrInvalidProtocol       = "ERROR_INVALID_PROTOCOL"
	ErrParsingURI            = "ERROR_PARSING_URI"
	ErrUnsupportedOperation  = "ERROR_UNSUPPORTED_OPERATION"
	ErrSignatureFailed       = "ERROR_SIGNATURE_FAILED"
	ErrBuildResponse         = "ERROR_BUILD_RESP"
	ErrUnsupportedProcedure  = "ERROR_UNSUPPORTED_PROCEDURE"
	ErrMinimumVersion        = "ERROR_MINIMUM_VERSION_NOT_SATISFIED"
	ErrCannotOpenSocket      = "ERROR_CANNOT_OPEN_SOCKET"
	ErrInvalidSessionID      = "ERROR_INVALID_SESSION_ID"
	ErrExternalRequestSocket = "ERROR_EXTERNAL_REQUEST_TO_SOCKET"
)

type safCode struct {
	code       string
	defaultMsg string
}

var safCodes = map[string]safCode{
	ErrInvalidProtocol:       {"SAF_02", "Protocolo no soportado"},
	ErrParsingURI:            {"SAF_03", "Parametros incorrectos"},
	ErrUnsupportedOperation:  {"SAF_04", "Codigo de operacion no soportado"},
	ErrSignatureFailed:       {"SAF_09", "Error en la operacion de firma"},
	ErrBuildResponse:         {"SAF_12", "Error preparando la respuesta"},
	ErrUnsupportedProcedure:  {"SAF_21", "Version de protocolo no soportada"},
	ErrMinimumVersion:        {"SAF_41", "Se requiere una version mas reciente de la aplicacion"},
	ErrCannotOpenSocket:      {"SAF_45", "No se pudo abrir el socket"},
	ErrInvalidSessionID:      {"SAF_46", "Id de sesion invalido"},
	ErrExternalRequestSocket: {"SAF_47", "Peticion externa no permitida"},
}

// FormatError renders name as "SAF_NN: message". Unknown names fall back to
// SAF_03 and an empty message to the default text of the code.
func FormatError(name, message string) string {
	c, ok := safCodes[name]
	if !ok {
		c = safCodes[ErrParsingURI]
	}
	if strings.TrimSpace(message) == "" {
		message = c.defaultMsg
	}
	return c.code + ": " + message
}

// IsErrorText reports whether an engine response carries an error prefix.
func IsErrorText(s string) bool {
	upper := strings.ToUpper(strings.TrimSpace(s))
	return strings.HasPrefix(upper, "SAF_") || strings.HasPrefix(upper, "ERR-") || strings.HasPrefix(upper, "ERROR_")
}
