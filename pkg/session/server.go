// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (C) 2026 Diputacion de Granada
// Autor: Alberto Avidad Fernandez (Oficina de Software Libre de la Diputacion de Granada)

// Package session exposes the dispatcher to web pages through a WebSocket
// server bound to the loopback interface. The first authenticated peer owns
// the session; its disconnection ends the process.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"afirma-bridge/pkg/applog"
	"afirma-bridge/pkg/dispatch"
	"afirma-bridge/pkg/protocol"

	"github.com/gorilla/websocket"
)

const (
	EchoRequestPrefix = "echo="
	EchoOKResponse    = "OK"

	listenHost = "127.0.0.1"
)

// Handler is the dispatch seam used for every non echo message.
type Handler interface {
	Handle(p dispatch.Payload, protocolVersion int, viaSocket bool) dispatch.Response
}

// State of the signaling session.
type State int

const (
	StateIdle State = iota
	StateOwned
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOwned:
		return "owned"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrCannotListen = errors.New("no se pudo abrir el socket en ninguno de los puertos solicitados")

type Config struct {
	// Ports are tried in order; 0 picks a free port.
	Ports []int
	// Token every peer must present as the idsession query parameter.
	Token string
	// ProtocolVersion handed to the dispatcher for socket messages.
	ProtocolVersion int
	Handler         Handler
	// Terminate ends the host process. It is called once, with code 0,
	// when the owner disconnects.
	Terminate func(code int)
}

type Server struct {
	cfg      Config
	upgrader websocket.Upgrader

	mu    sync.Mutex
	state State
	owner *websocket.Conn
	conns map[*websocket.Conn]struct{}
	ln    net.Listener
	srv   *http.Server

	done          chan struct{}
	closeOnce     sync.Once
	terminateOnce sync.Once
}

func New(cfg Config) (*Server, error) {
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		return nil, fmt.Errorf("se requiere un id de sesion")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("se requiere un manejador de peticiones")
	}
	if len(cfg.Ports) == 0 {
		return nil, fmt.Errorf("no se han indicado puertos")
	}
	if cfg.Terminate == nil {
		cfg.Terminate = func(code int) {
			log.Printf("[Session] Terminate(%d) sin terminador configurado", code)
		}
	}
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			// Pages from any origin may connect; the session token is the gate.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
		done:  make(chan struct{}),
	}, nil
}

// Start binds the first available port and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return fmt.Errorf("el servidor ya esta iniciado")
	}
	if s.state == StateTerminated {
		return fmt.Errorf("el servidor ya ha terminado")
	}

	lc := net.ListenConfig{Control: listenControl}
	var ln net.Listener
	for _, p := range s.cfg.Ports {
		addr := net.JoinHostPort(listenHost, fmt.Sprint(p))
		var err error
		ln, err = lc.Listen(context.Background(), "tcp", addr)
		if err == nil {
			log.Printf("[Session] Successfully bound to %s", ln.Addr())
			break
		}
		log.Printf("[Session] Port %d not available: %v", p, err)
	}
	if ln == nil {
		return fmt.Errorf("%w: %v", ErrCannotListen, s.cfg.Ports)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.ln = ln
	s.srv = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Session] Server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the server has stopped for any reason.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Stop releases the port and drops every connection without calling
// Terminate.
func (s *Server) Stop() {
	s.mu.Lock()
	s.state = StateTerminated
	s.mu.Unlock()
	s.shutdown()
}

func (s *Server) shutdown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		srv := s.srv
		conns := make([]*websocket.Conn, 0, len(s.conns))
		for c := range s.conns {
			conns = append(conns, c)
		}
		s.mu.Unlock()

		if srv != nil {
			_ = srv.Close()
		}
		for _, c := range conns {
			_ = c.Close()
		}
		close(s.done)
		log.Printf("[Session] Server stopped")
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.handleWebSocket(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("afirma-bridge local server running"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !isLoopbackRemoteAddr(r.RemoteAddr) {
		http.Error(w, protocol.FormatError(protocol.ErrExternalRequestSocket, ""), http.StatusForbidden)
		log.Printf("[Session] Rejected external remote addr: %s", r.RemoteAddr)
		return
	}
	got := getQueryParam(r.URL.Query(), "idsession")
	if !s.tokenMatches(got) {
		http.Error(w, protocol.FormatError(protocol.ErrInvalidSessionID, ""), http.StatusForbidden)
		log.Printf("[Session] Invalid session id from %s (got=%s)", r.RemoteAddr, applog.MaskID(got))
		return
	}
	if s.State() == StateTerminated {
		http.Error(w, "sesion finalizada", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Session] Upgrade error: %v", err)
		return
	}

	isOwner, ok := s.register(conn)
	if !ok {
		_ = conn.Close()
		return
	}
	log.Printf("[Session] Client connected from %s owner=%t", r.RemoteAddr, isOwner)
	defer s.unregister(conn)

	s.serve(conn)
}

// register tracks conn and makes it the owner if nobody owns the session.
func (s *Server) register(conn *websocket.Conn) (isOwner bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTerminated {
		return false, false
	}
	s.conns[conn] = struct{}{}
	return s.claimLocked(conn), true
}

func (s *Server) claimLocked(conn *websocket.Conn) bool {
	if s.state != StateIdle {
		return false
	}
	s.state = StateOwned
	s.owner = conn
	return true
}

func (s *Server) unregister(conn *websocket.Conn) {
	_ = conn.Close()

	s.mu.Lock()
	delete(s.conns, conn)
	ownerLeft := conn == s.owner && s.state == StateOwned
	if ownerLeft {
		s.state = StateTerminated
	}
	s.mu.Unlock()

	if !ownerLeft {
		log.Println("[Session] Client disconnected")
		return
	}
	log.Println("[Session] Owner disconnected, terminating")
	s.shutdown()
	s.terminateOnce.Do(func() { s.cfg.Terminate(0) })
}

func (s *Server) serve(conn *websocket.Conn) {
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
			case websocket.IsUnexpectedCloseError(err):
				log.Printf("[Session] Client disconnected abruptly: %v", err)
			default:
				if s.State() != StateTerminated {
					log.Printf("[Session] Read error: %v", err)
				}
			}
			return
		}
		if s.State() == StateTerminated {
			return
		}

		reply := s.process(string(message))
		if err := conn.WriteMessage(messageType, []byte(reply)); err != nil {
			log.Printf("[Session] Write error: %v", err)
			return
		}
	}
}

func (s *Server) process(msg string) string {
	if strings.HasPrefix(msg, EchoRequestPrefix) {
		return EchoOKResponse
	}
	if sid := extractMessageSessionID(msg); sid != "" && !s.tokenMatches(sid) {
		log.Printf("[Session] Message with foreign session id %s", applog.MaskID(sid))
		return protocol.FormatError(protocol.ErrInvalidSessionID, "")
	}

	log.Printf("[Session] Received: %s", applog.SanitizeURI(msg))
	resp := s.cfg.Handler.Handle(dispatch.MessagePayload(msg), s.cfg.ProtocolVersion, true)
	log.Printf("[Session] Sent result len=%d protocol_error=%t", len(resp.Text), resp.Failed)
	return resp.Text
}

func (s *Server) tokenMatches(got string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(s.cfg.Token)) == 1
}

func getQueryParam(q url.Values, key string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	for k, vals := range q {
		if strings.EqualFold(k, key) && len(vals) > 0 {
			return vals[len(vals)-1]
		}
	}
	return ""
}

// extractMessageSessionID returns the idsession query parameter of a
// protocol message, or "" when it carries none.
func extractMessageSessionID(message string) string {
	message = strings.TrimSuffix(strings.TrimSpace(message), "@EOF")
	var q url.Values
	if u, err := url.Parse(message); err == nil {
		q = u.Query()
	} else if i := strings.Index(message, "?"); i >= 0 {
		q, _ = url.ParseQuery(message[i+1:])
	}
	return strings.TrimSpace(getQueryParam(q, "idsession"))
}

func isLoopbackRemoteAddr(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(host), "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
