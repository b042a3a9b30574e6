// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package session

import (
	"sync"
	"testing"
)

func TestShutdownHookRemoverIsIdempotent(t *testing.T) {
	s, err := New(Config{Ports: []int{0}, Token: testToken, Handler: &recordingHandler{}})
	if err != nil {
		t.Fatalf("error inesperado creando el servidor: %v", err)
	}
	remove := InstallShutdownHook(s, func(code int) {
		t.Errorf("salida inesperada con codigo %d", code)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			remove()
		}()
	}
	wg.Wait()
	remove()

	if s.State() != StateIdle {
		t.Fatalf("quitar el hook no debe parar el servidor, obtenido: %s", s.State())
	}
}
