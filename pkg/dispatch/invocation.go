// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package dispatch

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"afirma-bridge/pkg/cmdline"
	"afirma-bridge/pkg/config"
	"afirma-bridge/pkg/protocol"
	"afirma-bridge/pkg/version"
)

const scheme = "afirma://"

// Parameter names of the canonical invocation handed to the engine.
const (
	ParamFormat        = "format"
	ParamAlgorithm     = "algorithm"
	ParamHashFormat    = "hashformat"
	ParamHashAlgorithm = "hashalgorithm"
	ParamStore         = "store"
	ParamAlias         = "alias"
	ParamFilter        = "filter"
	ParamPassword      = "password"
	ParamProperties    = "properties"
	ParamFileIn        = "filein"
	ParamFileOut       = "fileout"
	ParamMainFile      = "mainfile"
	ParamMassiveOp     = "massiveop"
	ParamPreURL        = "preurl"
	ParamPostURL       = "posturl"
	ParamRecursive     = "recursive"
	ParamGUI           = "gui"
	ParamCertGUI       = "certgui"
	ParamVersion       = "v"
)

var actionNames = map[cmdline.Operation]string{
	cmdline.OpSign:        "sign",
	cmdline.OpCosign:      "cosign",
	cmdline.OpCountersign: "countersign",
	cmdline.OpMassive:     "massive",
	cmdline.OpList:        "selectcert",
	cmdline.OpVerify:      "verify",
	cmdline.OpBatchSign:   "batch",
}

// Invocation is the transport-neutral shape of one engine call.
type Invocation struct {
	Operation cmdline.Operation
	Params    url.Values
	XML       bool
	Version   int
}

// Action is the protocol action name of the operation.
func (inv Invocation) Action() string {
	return actionNames[inv.Operation]
}

// Encode renders the canonical afirma://<action>?<params> message. Keys are
// sorted so equal invocations encode identically. XML output is rendered by
// the dispatcher and is not forwarded.
func (inv Invocation) Encode() string {
	q := url.Values{}
	for k, v := range inv.Params {
		q[k] = append([]string(nil), v...)
	}
	if inv.Version > 0 {
		q.Set(ParamVersion, strconv.Itoa(inv.Version))
	}
	return scheme + inv.Action() + "?" + q.Encode()
}

// protocolError is a failure detected before the engine is reached. Text is
// already in SAF_NN form.
type protocolError struct {
	text string
}

func (e *protocolError) Error() string { return e.text }

func newProtocolError(name, msg string) *protocolError {
	return &protocolError{text: protocol.FormatError(name, msg)}
}

func normalizeProtocolAction(action string) string {
	switch a := strings.ToLower(strings.TrimSpace(action)); a {
	case "firmar":
		return "sign"
	case "cofirmar":
		return "cosign"
	case "contrafirmar", "contrafirmar_arbol", "contrafirmar_hojas":
		return "countersign"
	default:
		return a
	}
}

func operationForAction(action string) (cmdline.Operation, bool) {
	switch normalizeProtocolAction(action) {
	case "sign":
		return cmdline.OpSign, true
	case "cosign":
		return cmdline.OpCosign, true
	case "countersign":
		return cmdline.OpCountersign, true
	case "batch", "batchsign":
		return cmdline.OpBatchSign, true
	case "selectcert", "list":
		return cmdline.OpList, true
	case "verify":
		return cmdline.OpVerify, true
	case "massive":
		return cmdline.OpMassive, true
	default:
		return 0, false
	}
}

func extractProtocolAction(u *url.URL) string {
	if action := strings.TrimSpace(u.Host); action != "" {
		return action
	}
	path := strings.Trim(strings.TrimSpace(u.Path), "/")
	if i := strings.Index(path, "/"); i >= 0 {
		path = path[:i]
	}
	return strings.TrimSpace(path)
}

func getQueryParam(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	for rawKey, vals := range q {
		if len(vals) == 0 {
			continue
		}
		for _, k := range keys {
			if strings.EqualFold(strings.TrimSpace(rawKey), k) {
				if v := strings.TrimSpace(vals[len(vals)-1]); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// Keys consumed by the decoder and not forwarded as invocation params.
var controlKeys = map[string]struct{}{
	"op":        {},
	"operation": {},
	"action":    {},
	"v":         {},
	"ver":       {},
	"mcv":       {},
	"xml":       {},
	"idsession": {},
}

// decodeMessage turns a socket message into an invocation.
func decodeMessage(raw string) (Invocation, error) {
	msg := strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(msg), scheme) {
		return Invocation{}, newProtocolError(protocol.ErrInvalidProtocol, "")
	}
	u, err := url.Parse(msg)
	if err != nil {
		return Invocation{}, newProtocolError(protocol.ErrParsingURI, "URI mal formada")
	}
	q := u.Query()

	action := extractProtocolAction(u)
	if qa := getQueryParam(q, "op", "operation", "action"); qa != "" {
		action = qa
	}
	op, ok := operationForAction(action)
	if !ok {
		return Invocation{}, newProtocolError(protocol.ErrUnsupportedOperation, "")
	}

	if mcv := getQueryParam(q, "mcv"); mcv != "" {
		ok, err := version.Satisfies(mcv)
		if err != nil {
			return Invocation{}, newProtocolError(protocol.ErrParsingURI, fmt.Sprintf("Valor de mcv invalido: %s", mcv))
		}
		if !ok {
			return Invocation{}, newProtocolError(protocol.ErrMinimumVersion, "")
		}
	}

	inv := Invocation{Operation: op, Params: url.Values{}, XML: config.ParseBool(getQueryParam(q, "xml"))}
	if raw := getQueryParam(q, "v", "ver"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return Invocation{}, newProtocolError(protocol.ErrUnsupportedProcedure, fmt.Sprintf("Version de protocolo no valida: %s", raw))
		}
		inv.Version = v
	}
	for k, vals := range q {
		if _, skip := controlKeys[strings.ToLower(k)]; skip {
			continue
		}
		inv.Params[k] = vals
	}
	return inv, nil
}

// fromRequest turns a parsed CLI request into an invocation. Only
// parameters the operation accepts are forwarded, with their defaults.
func fromRequest(req *cmdline.Request) (Invocation, error) {
	op := req.Operation()
	accepts := make(map[string]bool)
	for _, f := range cmdline.AcceptedFlags(op) {
		accepts[f] = true
	}

	p := url.Values{}
	set := func(key, val string) {
		if val != "" {
			p.Set(key, val)
		}
	}
	setBool := func(key string, v bool) {
		if v {
			p.Set(key, "true")
		}
	}

	set(ParamMainFile, req.MainFile())
	set(ParamFileIn, req.InputFile())
	set(ParamFileOut, req.OutputFile())
	set(ParamStore, req.Store())
	set(ParamAlias, req.Alias())
	set(ParamFilter, req.Filter())
	set(ParamPassword, req.Password())
	if req.ExtraParams() != "" {
		p.Set(ParamProperties, base64.StdEncoding.EncodeToString([]byte(req.ExtraParams())))
	}
	if accepts[cmdline.FlagFormat] {
		set(ParamFormat, string(resolveFormat(req)))
	}
	if accepts[cmdline.FlagAlgorithm] {
		set(ParamAlgorithm, req.Algorithm())
	}
	if accepts[cmdline.FlagHashAlgorithm] {
		set(ParamHashAlgorithm, req.HashAlgorithm())
	}
	if accepts[cmdline.FlagHashFormat] {
		h, err := req.ResolvedHashFormat()
		if err != nil {
			return Invocation{}, err
		}
		set(ParamHashFormat, string(h))
	}
	if accepts[cmdline.FlagOperation] {
		set(ParamMassiveOp, string(req.MassiveOperation()))
	}
	if u := req.PreURL(); u != nil {
		set(ParamPreURL, u.String())
	}
	if u := req.PostURL(); u != nil {
		set(ParamPostURL, u.String())
	}
	setBool(ParamRecursive, req.Recursive())
	setBool(ParamGUI, req.GUI())
	setBool(ParamCertGUI, req.CertGUI())

	return Invocation{Operation: op, Params: p, XML: req.XML()}, nil
}

func resolveFormat(req *cmdline.Request) cmdline.Format {
	f := req.Format()
	if f != cmdline.FormatAuto {
		return f
	}
	in := req.InputFile()
	if in == "" {
		in = req.MainFile()
	}
	if in == "" {
		return f
	}
	if fi, err := os.Stat(in); err != nil || fi.IsDir() {
		return f
	}
	return detectFormat(in)
}
