// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package version

import (
	"fmt"
	"strconv"
	"strings"
)

type parsed struct {
	parts  []int
	suffix string
}

// Satisfies reports whether CurrentVersion is at least minimum, the value a
// web page sends as "mcv".
func Satisfies(minimum string) (bool, error) {
	greater, err := IsGreater(minimum, CurrentVersion)
	if err != nil {
		return false, err
	}
	return !greater, nil
}

// IsGreater reports whether version a is newer than b. Versions are dotted
// numbers; the last part may carry a suffix ("1.8.2 beta", "1.9rc").
func IsGreater(a, b string) (bool, error) {
	pa, err := parse(a)
	if err != nil {
		return false, err
	}
	pb, err := parse(b)
	if err != nil {
		return false, err
	}
	return compare(pa, pb) > 0, nil
}

func parse(v string) (*parsed, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, fmt.Errorf("version vacia")
	}
	rawParts := strings.Split(v, ".")
	out := &parsed{parts: make([]int, 0, len(rawParts))}
	for _, part := range rawParts[:len(rawParts)-1] {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parte no numerica en version %q", v)
		}
		out.parts = append(out.parts, n)
	}

	last := strings.TrimSpace(rawParts[len(rawParts)-1])
	limit := len(last)
	for i := 0; i < len(last); i++ {
		if last[i] < '0' || last[i] > '9' {
			limit = i
			break
		}
	}
	if limit == 0 {
		return nil, fmt.Errorf("parte final no numerica en version %q", v)
	}
	n, err := strconv.Atoi(last[:limit])
	if err != nil {
		return nil, fmt.Errorf("parte final no numerica en version %q", v)
	}
	out.parts = append(out.parts, n)
	out.suffix = last[limit:]
	return out, nil
}

// compare orders numbers first; at equal numbers a plain release is newer
// than one with a suffix, and suffixes compare case-insensitively.
func compare(a, b *parsed) int {
	for i := 0; i < len(a.parts) && i < len(b.parts); i++ {
		if a.parts[i] != b.parts[i] {
			if a.parts[i] > b.parts[i] {
				return 1
			}
			return -1
		}
	}
	if len(a.parts) != len(b.parts) {
		if len(a.parts) > len(b.parts) {
			return 1
		}
		return -1
	}

	as, bs := strings.ToLower(strings.TrimSpace(a.suffix)), strings.ToLower(strings.TrimSpace(b.suffix))
	switch {
	case as == bs:
		return 0
	case as == "":
		return 1
	case bs == "":
		return -1
	case as > bs:
		return 1
	default:
		return -1
	}
}
