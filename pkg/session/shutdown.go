// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package session

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InstallShutdownHook stops s and calls exit(0) on SIGINT or SIGTERM so the
// port is released before the process ends. The returned function removes
// the hook.
func InstallShutdownHook(s *Server, exit func(code int)) (remove func()) {
	sigs := make(chan os.Signal, 1)
	quit := make(chan struct{})
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigs:
			log.Printf("[Session] Signal %v received, stopping server", sig)
			s.Stop()
			exit(0)
		case <-quit:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigs)
			close(quit)
		})
	}
}
