// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

// Package config reads the bridge settings from the environment. Invalid
// values are logged and replaced by their defaults.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	EnvEngine          = "AFIRMA_BRIDGE_ENGINE"
	EnvEngineArgs      = "AFIRMA_BRIDGE_ENGINE_ARGS"
	EnvPorts           = "AFIRMA_BRIDGE_PORTS"
	EnvProtocolVersion = "AFIRMA_BRIDGE_PROTOCOL_VERSION"
	EnvSerializeEngine = "AFIRMA_BRIDGE_SERIALIZE_ENGINE"

	DefaultPort            = 63117
	DefaultProtocolVersion = 4
	MinProtocolVersion     = 1
	MaxProtocolVersion     = 4
)

type Config struct {
	EnginePath      string
	EngineArgs      []string
	Ports           []int
	ProtocolVersion int
	SerializeEngine bool
}

// Load returns the configuration found in the process environment.
func Load() Config {
	return load(os.Getenv)
}

func load(getenv func(string) string) Config {
	cfg := Config{
		EnginePath:      strings.TrimSpace(getenv(EnvEngine)),
		EngineArgs:      strings.Fields(getenv(EnvEngineArgs)),
		Ports:           []int{DefaultPort},
		ProtocolVersion: DefaultProtocolVersion,
		SerializeEngine: ParseBool(getenv(EnvSerializeEngine)),
	}

	if raw := strings.TrimSpace(getenv(EnvPorts)); raw != "" {
		ports, err := ParsePorts(raw)
		if err != nil {
			log.Printf("[Config] %s ignorado (%q): %v", EnvPorts, raw, err)
		} else {
			cfg.Ports = ports
		}
	}
	if raw := strings.TrimSpace(getenv(EnvProtocolVersion)); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < MinProtocolVersion || v > MaxProtocolVersion {
			log.Printf("[Config] %s ignorado (%q)", EnvProtocolVersion, raw)
		} else {
			cfg.ProtocolVersion = v
		}
	}
	return cfg
}

// ParsePorts parses a comma separated list of TCP ports.
func ParsePorts(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("listado de puertos vacio")
	}
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("puerto invalido: %q", p)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("listado de puertos vacio")
	}
	return out, nil
}

// ParseBool accepts the truthy spellings used in protocol parameters.
func ParseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "si":
		return true
	default:
		return false
	}
}
