// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

//go:build !unix

package session

import "syscall"

// On Windows SO_REUSEADDR lets another process steal a bound port, so the
// default exclusive bind is kept.
func listenControl(network, address string, c syscall.RawConn) error {
	return nil
}
