// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package cmdline

const (
	FlagInput         = "-i"
	FlagOutput        = "-o"
	FlagAlias         = "-alias"
	FlagFilter        = "-filter"
	FlagStore         = "-store"
	FlagFormat        = "-format"
	FlagPassword      = "-password"
	FlagAlgorithm     = "-algorithm"
	FlagHashFormat    = "-hformat"
	FlagHashAlgorithm = "-halgorithm"
	FlagConfig        = "-config"
	FlagOperation     = "-operation"
	FlagGUI           = "-gui"
	FlagCertGUI       = "-certgui"
	FlagPreURL        = "-preurl"
	FlagPostURL       = "-posturl"
	FlagRecursive     = "-r"
	FlagXML           = "-xml"
)

type flagKind int

const (
	flagSwitch flagKind = iota
	flagValue
)

var flagKinds = map[string]flagKind{
	FlagInput:         flagValue,
	FlagOutput:        flagValue,
	FlagAlias:         flagValue,
	FlagFilter:        flagValue,
	FlagStore:         flagValue,
	FlagFormat:        flagValue,
	FlagPassword:      flagValue,
	FlagAlgorithm:     flagValue,
	FlagHashFormat:    flagValue,
	FlagHashAlgorithm: flagValue,
	FlagConfig:        flagValue,
	FlagOperation:     flagValue,
	FlagPreURL:        flagValue,
	FlagPostURL:       flagValue,
	FlagGUI:           flagSwitch,
	FlagCertGUI:       flagSwitch,
	FlagRecursive:     flagSwitch,
	FlagXML:           flagSwitch,
}

// IsFlag reports whether tok is one of the flag names of the grammar.
func IsFlag(tok string) bool {
	_, ok := flagKinds[tok]
	return ok
}

type inputRule int

const (
	inputOptional inputRule = iota
	inputRequired
	inputRequiredUnlessGUI
)

// opRules is the single source of truth for what an operation accepts. The
// parser validates against it and the usage renderer lists from it.
type opRules struct {
	op             Operation
	mainFileNeeded bool
	input          inputRule
	flags          []string
}

var signFlags = []string{
	FlagGUI, FlagCertGUI, FlagInput, FlagOutput, FlagAlgorithm, FlagFormat, FlagConfig,
	FlagStore, FlagPassword, FlagAlias, FlagFilter, FlagHashFormat, FlagHashAlgorithm, FlagXML,
}

var catalog = []opRules{
	{op: OpSign, input: inputRequiredUnlessGUI, flags: signFlags},
	{op: OpCosign, input: inputRequiredUnlessGUI, flags: signFlags},
	{op: OpCountersign, input: inputRequiredUnlessGUI, flags: signFlags},
	{
		op:    OpMassive,
		input: inputRequired,
		flags: []string{
			FlagOperation, FlagInput, FlagOutput, FlagAlgorithm, FlagFormat, FlagConfig, FlagStore,
			FlagPassword, FlagAlias, FlagFilter, FlagHashFormat, FlagHashAlgorithm, FlagRecursive, FlagXML,
		},
	},
	{op: OpList, input: inputOptional, flags: []string{FlagStore, FlagPassword, FlagXML}},
	{op: OpVerify, input: inputRequired, flags: []string{FlagInput}},
	{
		op:    OpBatchSign,
		input: inputRequired,
		flags: []string{
			FlagInput, FlagOutput, FlagStore, FlagPassword, FlagAlias, FlagFilter,
			FlagPreURL, FlagPostURL, FlagXML,
		},
	},
}

func rulesFor(op Operation) (opRules, bool) {
	for _, s := range catalog {
		if s.op == op {
			return s, true
		}
	}
	return opRules{}, false
}

func (s opRules) allows(flag string) bool {
	for _, f := range s.flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AcceptedFlags returns the flags accepted by op, in usage order.
func AcceptedFlags(op Operation) []string {
	s, ok := rulesFor(op)
	if !ok {
		return nil
	}
	out := make([]string, len(s.flags))
	copy(out, s.flags)
	return out
}
