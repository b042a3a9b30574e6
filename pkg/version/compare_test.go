// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package version

import "testing"

func TestIsGreater(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"1.8.2", "1.8.1", true},
		{"1.8", "1.8.0", false},
		{"1.10", "1.9", true},
		{"1.9", "1.9rc1", true},
		{"1.9rc1", "1.9", false},
		{"1.9 beta", "1.9 alpha", true},
		{"2", "1.99.99", true},
	}
	for _, c := range cases {
		got, err := IsGreater(c.a, c.b)
		if err != nil {
			t.Fatalf("IsGreater(%q, %q) error: %v", c.a, c.b, err)
		}
		if got != c.want {
			t.Fatalf("IsGreater(%q, %q) obtenido: %v", c.a, c.b, got)
		}
	}
}

func TestIsGreaterRejectsMalformed(t *testing.T) {
	for _, v := range []string{"", "a.b", "1..2", "1.x"} {
		if _, err := IsGreater(v, "1.0"); err == nil {
			t.Fatalf("se esperaba error para %q", v)
		}
	}
}

func TestSatisfies(t *testing.T) {
	ok, err := Satisfies("0.9")
	if err != nil || !ok {
		t.Fatalf("0.9 debe satisfacerse, ok=%v err=%v", ok, err)
	}
	ok, err = Satisfies("99.0")
	if err != nil || ok {
		t.Fatalf("99.0 no debe satisfacerse, ok=%v err=%v", ok, err)
	}
	ok, err = Satisfies(CurrentVersion)
	if err != nil || !ok {
		t.Fatalf("la version actual debe satisfacerse, ok=%v err=%v", ok, err)
	}
}
