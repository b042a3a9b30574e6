// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"afirma-bridge/pkg/config"
	"afirma-bridge/pkg/protocol"
)

const DefaultWebSocketPort = config.DefaultPort

// webSocketLaunch is what a page asks for when it starts the bridge through
// an afirma://websocket link.
type webSocketLaunch struct {
	Version   int
	SessionID string
	Ports     []int
}

func parseWebSocketLaunchURI(raw string) (*webSocketLaunch, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %v", protocol.FormatError(protocol.ErrParsingURI, ""), err)
	}
	if !strings.EqualFold(u.Scheme, "afirma") {
		return nil, fmt.Errorf("%s", protocol.FormatError(protocol.ErrInvalidProtocol, ""))
	}

	q := u.Query()
	action := launchQueryParam(q, "op", "operation", "action")
	if action == "" {
		action = launchAction(u)
	}
	if !strings.EqualFold(action, "websocket") {
		return nil, fmt.Errorf("%s", protocol.FormatError(protocol.ErrUnsupportedOperation,
			fmt.Sprintf("Operacion no soportada: %s", action)))
	}

	req := &webSocketLaunch{
		Version:   config.DefaultProtocolVersion,
		SessionID: launchQueryParam(q, "idsession"),
	}
	if v := launchQueryParam(q, "v"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != 3 && n != 4) {
			return nil, fmt.Errorf("%s", protocol.FormatError(protocol.ErrUnsupportedProcedure,
				fmt.Sprintf("Version de protocolo websocket no soportada: %s", v)))
		}
		req.Version = n
	}

	if ports := launchQueryParam(q, "ports", "portsList", "port"); ports != "" {
		req.Ports, err = config.ParsePorts(ports)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", protocol.FormatError(protocol.ErrParsingURI, ""), err)
		}
	} else {
		req.Ports = []int{DefaultWebSocketPort}
	}
	return req, nil
}

func launchAction(u *url.URL) string {
	if h := strings.TrimSpace(u.Host); h != "" {
		return h
	}
	path := strings.Trim(strings.TrimSpace(u.Path), "/")
	if i := strings.Index(path, "/"); i >= 0 {
		path = path[:i]
	}
	return path
}

func launchQueryParam(q url.Values, keys ...string) string {
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
			if strings.EqualFold(rawKey, k) {
				if v := strings.TrimSpace(vals[len(vals)-1]); v != "" {
					return v
				}
			}
		}
	}
	return ""
}
