// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package cmdline

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Parse validates tokens (the arguments following the command name) against
// the grammar of op. The scan is left to right and stops at the first
// violation, so the returned error always refers to the earliest offending
// token. Referenced paths are checked as soon as their flag is consumed.
func Parse(op Operation, tokens []string) (*Request, error) {
	rules, ok := rulesFor(op)
	if !ok {
		return nil, &GrammarError{
			Kind:     KindUnknownCommand,
			Token:    op.String(),
			Position: -1,
			Msg:      fmt.Sprintf("Operacion no soportada: %s", op),
		}
	}
	return parse(rules, tokens)
}

func parse(rules opRules, tokens []string) (*Request, error) {
	req := &Request{op: rules.op}
	i := 0

	if rules.mainFileNeeded {
		if len(tokens) == 0 || IsFlag(tokens[0]) {
			return nil, grammarErrorf(KindMissingMainFile, "", "", 0,
				"No se ha indicado el fichero de entrada de la operacion %s", rules.op)
		}
		if err := checkReadable(tokens[0]); err != nil {
			return nil, accessGrammarError("", tokens[0], 0, err)
		}
		req.mainFile = tokens[0]
		i = 1
	}

	seen := make(map[string]bool, len(tokens))
	for ; i < len(tokens); i++ {
		tok := tokens[i]
		kind, known := flagKinds[tok]
		if !known {
			return nil, grammarErrorf(KindUnknownFlag, "", tok, i,
				"Parametro no reconocido en la posicion %d: %s", i+1, tok)
		}
		if !rules.allows(tok) {
			return nil, grammarErrorf(KindFlagNotAllowed, tok, tok, i,
				"El parametro %s no esta permitido en la operacion %s", tok, rules.op)
		}
		if seen[tok] {
			return nil, grammarErrorf(KindDuplicateFlag, tok, tok, i,
				"Parametro duplicado en la posicion %d: %s", i+1, tok)
		}
		seen[tok] = true

		if kind == flagSwitch {
			req.setSwitch(tok)
			continue
		}
		if i+1 >= len(tokens) || IsFlag(tokens[i+1]) {
			return nil, grammarErrorf(KindMissingValue, tok, tok, i,
				"No se ha indicado un valor para el parametro %s", tok)
		}
		i++
		if err := req.setValue(tok, tokens[i], i); err != nil {
			return nil, err
		}
	}

	switch rules.input {
	case inputRequired:
		if req.inputFile == "" {
			return nil, grammarErrorf(KindMissingMainFile, FlagInput, "", -1,
				"No se ha indicado el fichero de entrada (%s) de la operacion %s", FlagInput, rules.op)
		}
	case inputRequiredUnlessGUI:
		if req.inputFile == "" && !req.gui {
			return nil, grammarErrorf(KindMissingMainFile, FlagInput, "", -1,
				"No se ha indicado el fichero de entrada (%s) ni se ha solicitado %s", FlagInput, FlagGUI)
		}
	}
	return req, nil
}

func (r *Request) setSwitch(flag string) {
	switch flag {
	case FlagGUI:
		r.gui = true
	case FlagCertGUI:
		r.certGUI = true
	case FlagRecursive:
		r.recursive = true
	case FlagXML:
		r.xml = true
	}
}

func (r *Request) setValue(flag, value string, pos int) error {
	switch flag {
	case FlagInput:
		if err := checkReadable(value); err != nil {
			return accessGrammarError(flag, value, pos, err)
		}
		r.inputFile = value
	case FlagOutput:
		if err := checkParentWritable(value); err != nil {
			return accessGrammarError(flag, value, pos, err)
		}
		r.outputFile = value
	case FlagAlias:
		if r.filterSet {
			return grammarErrorf(KindAliasFilterConflict, flag, value, pos,
				"No se pueden indicar a la vez %s y %s", FlagAlias, FlagFilter)
		}
		r.alias = value
		r.aliasSet = true
	case FlagFilter:
		if r.aliasSet {
			return grammarErrorf(KindAliasFilterConflict, flag, value, pos,
				"No se pueden indicar a la vez %s y %s", FlagAlias, FlagFilter)
		}
		r.filter = value
		r.filterSet = true
	case FlagStore:
		r.store = value
	case FlagPassword:
		r.password = value
	case FlagAlgorithm:
		r.algorithm = value
	case FlagHashAlgorithm:
		r.hashAlgorithm = value
	case FlagConfig:
		r.extraParams = value
	case FlagFormat:
		f, ok := parseFormat(value)
		if !ok {
			return grammarErrorf(KindInvalidFormat, flag, value, pos,
				"Formato de firma no valido: %s", value)
		}
		r.format = f
	case FlagHashFormat:
		h, ok := parseHashFormat(value)
		if !ok {
			return grammarErrorf(KindInvalidHashFormat, flag, value, pos,
				"Formato de huella no valido: %s", value)
		}
		r.hashFormat = h
	case FlagOperation:
		m, ok := parseMassiveOperation(value)
		if !ok {
			return grammarErrorf(KindInvalidMassiveOperation, flag, value, pos,
				"Operacion masiva no valida: %s", value)
		}
		r.massiveOp = m
	case FlagPreURL, FlagPostURL:
		u, err := parseURL(value)
		if err != nil {
			ge := grammarErrorf(KindBadURL, flag, value, pos,
				"URL no valida para %s: %s", flag, value)
			ge.Err = err
			return ge
		}
		if flag == FlagPreURL {
			r.preURL = u
		} else {
			r.postURL = u
		}
	}
	return nil
}

func checkReadable(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &AccessError{Path: path, Mode: AccessRead, Err: err}
	}
	if err := canRead(path); err != nil {
		return &AccessError{Path: path, Mode: AccessRead, Err: err}
	}
	return nil
}

func checkParentWritable(path string) error {
	dir := filepath.Dir(path)
	fi, err := os.Stat(dir)
	if err != nil {
		return &AccessError{Path: dir, Mode: AccessWrite, Err: err}
	}
	if !fi.IsDir() {
		return &AccessError{Path: dir, Mode: AccessWrite, Err: fmt.Errorf("%s no es un directorio", dir)}
	}
	if err := canWrite(dir); err != nil {
		return &AccessError{Path: dir, Mode: AccessWrite, Err: err}
	}
	return nil
}

func accessGrammarError(flag, token string, pos int, err error) *GrammarError {
	return &GrammarError{
		Kind:     KindAccess,
		Flag:     flag,
		Token:    token,
		Position: pos,
		Msg:      "Fichero no accesible, " + err.Error(),
		Err:      err,
	}
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("esquema no soportado: %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("la URL no indica servidor")
	}
	return u, nil
}
