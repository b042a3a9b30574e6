// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"afirma-bridge/pkg/applog"
	"afirma-bridge/pkg/cmdline"
	"afirma-bridge/pkg/config"
	"afirma-bridge/pkg/dispatch"
	"afirma-bridge/pkg/engine"
	"afirma-bridge/pkg/protocol"
	"afirma-bridge/pkg/session"
	"afirma-bridge/pkg/version"

	"github.com/google/uuid"
)

type app struct {
	cfg      config.Config
	engine   engine.Engine
	newToken func() string
	// exit ends the process once a signaling session is over.
	exit func(code int)
}

func main() {
	// Command output owns stdout and stderr; only server modes echo the log.
	var console io.Writer
	if len(os.Args) > 1 && isServerMode(os.Args[1]) {
		console = os.Stderr
	}
	logPath, err := applog.Init("afirma-bridge", console)
	if err != nil {
		log.Printf("No se pudo inicializar logging persistente: %v", err)
	} else {
		log.Printf("Logging inicializado en: %s", logPath)
	}
	log.Printf("Launched with args: %v", applog.SanitizeArgs(os.Args))

	cfg := config.Load()
	a := app{
		cfg:      cfg,
		engine:   engine.NativeHost{Path: cfg.EnginePath, Args: cfg.EngineArgs},
		newToken: uuid.NewString,
		exit:     os.Exit,
	}
	os.Exit(a.run(os.Args[1:], os.Stdout, os.Stderr))
}

func isServerMode(arg string) bool {
	return arg == "serve" || strings.HasPrefix(strings.ToLower(arg), "afirma:")
}

func (a app) dispatcher() *dispatch.Dispatcher {
	opts := []dispatch.Option{dispatch.WithDefaultProtocolVersion(a.cfg.ProtocolVersion)}
	if a.cfg.SerializeEngine {
		opts = append(opts, dispatch.WithSerializedEngine())
	}
	return dispatch.New(a.engine, opts...)
}

func (a app) run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, cmdline.UsageText(0, nil))
		return 1
	}

	first := args[0]
	switch {
	case first == "version" || first == "-version" || first == "--version":
		fmt.Fprintln(stdout, version.String())
		return 0
	case first == "serve":
		return a.runServe(args[1:], stdout, stderr)
	case strings.HasPrefix(strings.ToLower(first), "afirma:"):
		launch, err := parseWebSocketLaunchURI(first)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if launch.SessionID == "" {
			fmt.Fprintln(stderr, protocol.FormatError(protocol.ErrInvalidSessionID, ""))
			return 1
		}
		return a.serve(launch.Ports, launch.SessionID, launch.Version, stdout, stderr)
	}

	op, err := cmdline.ParseCommand(first)
	if err != nil {
		fmt.Fprint(stderr, cmdline.UsageText(0, err))
		return 1
	}
	req, err := cmdline.Parse(op, args[1:])
	if err != nil {
		log.Printf("[CLI] %s rejected: %v", op, err)
		fmt.Fprint(stderr, cmdline.UsageText(op, err))
		return 1
	}
	log.Printf("[CLI] %s", req)

	resp := a.dispatcher().Handle(dispatch.RequestPayload{Request: req}, a.cfg.ProtocolVersion, false)
	var ge *cmdline.GrammarError
	if errors.As(resp.Err, &ge) {
		fmt.Fprint(stderr, cmdline.UsageText(op, resp.Err))
		return 1
	}
	if resp.Failed {
		fmt.Fprint(stderr, cmdline.UsageText(op, errors.New(resp.Text)))
		return 1
	}

	if out := req.OutputFile(); out != "" {
		if err := os.WriteFile(out, []byte(resp.Text), 0o644); err != nil {
			fmt.Fprintf(stderr, "No se pudo escribir el fichero de salida %s: %v\n", out, err)
			return 1
		}
		return 0
	}
	fmt.Fprintln(stdout, resp.Text)
	return 0
}

func (a app) runServe(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.Int("port", -1, "Puerto unico de escucha (0 elige uno libre)")
	ports := fs.String("ports", "", "Lista de puertos separados por comas")
	token := fs.String("session", "", "Id de sesion exigido a los clientes (por defecto uno aleatorio)")
	v := fs.Int("v", a.cfg.ProtocolVersion, "Version de protocolo")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	list := a.cfg.Ports
	switch {
	case *port >= 0:
		list = []int{*port}
	case *ports != "":
		parsed, err := config.ParsePorts(*ports)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		list = parsed
	}

	sid := strings.TrimSpace(*token)
	if sid == "" {
		sid = a.newToken()
	}
	return a.serve(list, sid, *v, stdout, stderr)
}

func (a app) serve(ports []int, token string, protocolVersion int, stdout, stderr io.Writer) int {
	srv, err := session.New(session.Config{
		Ports:           ports,
		Token:           token,
		ProtocolVersion: protocolVersion,
		Handler:         a.dispatcher(),
		Terminate:       a.exit,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := srv.Start(); err != nil {
		fmt.Fprintln(stderr, protocol.FormatError(protocol.ErrCannotOpenSocket, err.Error()))
		return 1
	}
	remove := session.InstallShutdownHook(srv, a.exit)
	defer remove()

	log.Printf("[Session] Listening on %s session=%s", srv.Addr(), applog.MaskID(token))
	fmt.Fprintf(stdout, "ws://%s/?idsession=%s\n", srv.Addr(), token)

	<-srv.Done()
	return 0
}
