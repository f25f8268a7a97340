// Package ipc is a line-oriented remote control: each line on the unix
// socket is one JSON instruction {"command": ..., "args": [...]}.
package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"
)

type Instruction struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

type Handler func(Instruction) error

type Server struct {
	path    string
	ln      net.Listener
	handler Handler
	logger  *zap.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
}

// Serve listens on path, removing a stale socket file first, and runs
// handler for every instruction received. Instructions from one connection
// are handled in order.
func Serve(path string, handler Handler, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := Remove(path); err != nil {
		return nil, err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", path, err)
	}
	s := &Server{
		path:    path,
		ln:      ln,
		handler: handler,
		logger:  logger.With(zap.String("socket", path)),
		conns:   make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.accept()
	s.logger.Info("ipc server listening")
	return s, nil
}

func (s *Server) Path() string { return s.path }

func (s *Server) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("accept failed", zap.Error(err))
			}
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ins Instruction
		if err := json.Unmarshal(line, &ins); err != nil {
			s.logger.Warn("malformed instruction", zap.ByteString("line", line), zap.Error(err))
			continue
		}
		if err := s.handler(ins); err != nil {
			s.logger.Warn("instruction failed", zap.String("command", ins.Command), zap.Error(err))
		}
	}
}

// Close stops accepting, drops open connections, waits for in-flight
// instructions and removes the socket file.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	err := s.ln.Close()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	if rerr := Remove(s.path); err == nil {
		err = rerr
	}
	return err
}

// Remove deletes a socket file left behind by a previous server.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type Client struct {
	conn net.Conn
	mu   sync.Mutex
	enc  *json.Encoder
}

func Dial(ctx context.Context, path string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}
	return &Client{conn: conn, enc: json.NewEncoder(conn)}, nil
}

// Write sends one instruction. json.Encoder terminates it with a newline.
func (c *Client) Write(command string, args ...string) error {
	if args == nil {
		args = []string{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.Encode(Instruction{Command: command, Args: args})
}

func (c *Client) Close() error { return c.conn.Close() }
