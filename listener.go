package ember

import (
	"bytes"
	"context"
	"io"
	"net"
	"time"

	"golang.org/x/sync/semaphore"
)

// listener wraps a *net.TCPListener the same way the teacher framework's
// listener does, enabling TCP keep-alive on every accepted connection.
// It intentionally drops the teacher's PROXY protocol negotiation (not
// named anywhere in the wire protocol of §6) — see DESIGN.md.
type listener struct {
	*net.TCPListener
}

func newListener(nl net.Listener) *listener {
	return &listener{TCPListener: nl.(*net.TCPListener)}
}

func (l *listener) Accept() (net.Conn, error) {
	tc, err := l.AcceptTCP()
	if err != nil {
		return nil, err
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}

// maxReadBytes bounds how much of a single connection's request the
// server will buffer before giving up, an implementer-chosen
// strengthening permitted by §5's framing-assumption note.
const maxReadBytes = 16 << 20 // 16 MiB

// serve accepts connections on ln until it is closed, dispatching each
// to its own goroutine bounded by sem (§5 "parallel across
// connections"; each connection handled by an independent task).
func (s *Server) serve(ln net.Listener, sem *semaphore.Weighted) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}

		if err := sem.Acquire(context.Background(), 1); err != nil {
			conn.Close()
			continue
		}

		go func() {
			defer sem.Release(1)
			s.serveConn(conn)
		}()
	}
}

// serveConn reads exactly one request from conn, drives it through the
// pipeline, writes the response, and closes the connection (§5 "one
// request per connection").
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()

	raw, err := readRequest(conn)
	if err != nil {
		if s.logger != nil && err != io.EOF {
			s.logger.Error("connection read failed: " + err.Error())
		}
		return
	}

	out := s.handleRaw(raw, conn.RemoteAddr().String())
	conn.Write([]byte(out))
}

// readRequest reads bytes from conn until the header block is complete
// and, if a Content-Length is present, until the declared body length
// has also been read — the permitted strengthening over the
// one-shot-read assumption described in §5.
func readRequest(conn net.Conn) (string, error) {
	buf := acquireReadBuffer()
	defer releaseReadBuffer(buf)

	chunk := make([]byte, 4096)

	headerEnd := -1
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if headerEnd < 0 {
				if idx := bytes.Index(buf.B, []byte("\r\n\r\n")); idx >= 0 {
					headerEnd = idx + 4
				} else if idx := bytes.Index(buf.B, []byte("\n\n")); idx >= 0 {
					headerEnd = idx + 2
				}
			}
		}

		if err != nil {
			if buf.Len() > 0 {
				break
			}
			return "", err
		}

		if headerEnd >= 0 {
			declared := declaredContentLength(string(buf.B[:headerEnd]))
			if declared <= 0 || buf.Len()-headerEnd >= declared {
				break
			}
		}

		if buf.Len() >= maxReadBytes {
			break
		}
	}

	return string(buf.B), nil
}

// declaredContentLength extracts Content-Length from the raw bytes read
// so far, used only to decide how many more bytes to read off the wire.
func declaredContentLength(bufSoFar string) int {
	parsed := parseWire(bufSoFar)

	headers, err := parseHeaders(parsed.HeaderBlock)
	if err != nil {
		return 0
	}
	for name, value := range headers {
		if name == "content-length" {
			n := 0
			for _, c := range value {
				if c < '0' || c > '9' {
					return 0
				}
				n = n*10 + int(c-'0')
			}
			return n
		}
	}
	return 0
}
