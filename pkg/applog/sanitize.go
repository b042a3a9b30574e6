// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package applog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// MaskID shortens session tokens and request ids for logs.
func MaskID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	if len(v) <= 10 {
		return v
	}
	return v[:6] + "..." + v[len(v)-4:]
}

func Digest12(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])[:12]
}

func SecretMeta(label string, raw string) string {
	return fmt.Sprintf("%s[len=%d sha12=%s]", label, len(raw), Digest12(raw))
}

var sensitiveParams = map[string]struct{}{
	"dat":        {},
	"data":       {},
	"password":   {},
	"passwd":     {},
	"pin":        {},
	"key":        {},
	"properties": {},
	"idsession":  {},
}

// SanitizeURI redacts secret query values of a protocol message and
// truncates the rest. A message that does not parse is reduced to its
// length and digest.
func SanitizeURI(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return SecretMeta("unparseable", raw)
	}

	q := u.Query()
	for k, values := range q {
		_, secret := sensitiveParams[strings.ToLower(strings.TrimSpace(k))]
		for i := range values {
			if secret {
				values[i] = "[REDACTED]"
			} else {
				values[i] = truncate(values[i], 80)
			}
		}
		q[k] = values
	}
	u.RawQuery = q.Encode()
	return truncate(u.String(), 220)
}

var secretFlags = map[string]struct{}{
	"-password": {},
	"-config":   {},
}

// SanitizeArgs prepares process arguments for logging: values following a
// secret flag are hidden and protocol URIs are sanitized.
func SanitizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	hideNext := false
	for _, a := range args {
		if hideNext {
			out = append(out, "[REDACTED_ARG]")
			hideNext = false
			continue
		}
		if _, ok := secretFlags[strings.ToLower(a)]; ok {
			out = append(out, a)
			hideNext = true
			continue
		}
		la := strings.ToLower(a)
		switch {
		case strings.Contains(la, "afirma://"):
			out = append(out, SanitizeURI(a))
		case strings.Contains(la, "pin=") || strings.Contains(la, "password="):
			out = append(out, "[REDACTED_ARG]")
		default:
			out = append(out, truncate(a, 120))
		}
	}
	return out
}

func truncate(v string, max int) string {
	if max < 8 {
		max = 8
	}
	if len(v) <= max {
		return v
	}
	return v[:max] + "...(trunc)"
}
