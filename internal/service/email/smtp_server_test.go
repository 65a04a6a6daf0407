package email

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// smtpSession is what the fake server saw on one connection. Err is the
// read error that ended it: io.EOF when the client hung up.
type smtpSession struct {
	Commands []string
	Data     string
	Err      error
}

type smtpMode int

const (
	smtpStartTLS smtpMode = iota
	smtpPlainOnly
	smtpStall
)

// smtpServer is a single-connection SMTP server good enough for go-mail's
// EHLO, STARTTLS, AUTH PLAIN, MAIL, RCPT, DATA and QUIT.
type smtpServer struct {
	ln      net.Listener
	mode    smtpMode
	tls     *tls.Config
	roots   *x509.CertPool
	session chan smtpSession
}

func startSMTP(t *testing.T, mode smtpMode) *smtpServer {
	t.Helper()

	// httptest ships a self-signed certificate valid for 127.0.0.1.
	certSrv := httptest.NewTLSServer(http.NotFoundHandler())
	t.Cleanup(certSrv.Close)
	roots := x509.NewCertPool()
	roots.AddCert(certSrv.Certificate())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	s := &smtpServer{
		ln:      ln,
		mode:    mode,
		tls:     &tls.Config{Certificates: certSrv.TLS.Certificates},
		roots:   roots,
		session: make(chan smtpSession, 1),
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			s.session <- smtpSession{Err: err}
			return
		}
		s.session <- s.serve(conn)
	}()
	return s
}

func (s *smtpServer) port() int { return s.ln.Addr().(*net.TCPAddr).Port }

func (s *smtpServer) clientTLS() *tls.Config {
	return &tls.Config{RootCAs: s.roots, ServerName: "127.0.0.1", MinVersion: tls.VersionTLS12}
}

// wait returns the finished session. A session that is still open after
// the timeout means the client never closed its socket.
func (s *smtpServer) wait(t *testing.T, timeout time.Duration) smtpSession {
	t.Helper()
	select {
	case sess := <-s.session:
		return sess
	case <-time.After(timeout):
		t.Fatalf("smtp connection still open after %s", timeout)
		return smtpSession{}
	}
}

func (s *smtpServer) serve(conn net.Conn) smtpSession {
	defer conn.Close()
	var sess smtpSession
	_ = conn.SetDeadline(time.Now().Add(3 * time.Second))

	if s.mode == smtpStall {
		_, err := conn.Read(make([]byte, 1))
		sess.Err = err
		return sess
	}

	rw := conn
	r := bufio.NewReader(rw)
	reply := func(lines ...string) {
		for _, l := range lines {
			fmt.Fprintf(rw, "%s\r\n", l)
		}
	}

	reply("220 relay.test ESMTP")
	secure := false
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			sess.Err = err
			return sess
		}
		line = strings.TrimRight(line, "\r\n")
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		sess.Commands = append(sess.Commands, verb)

		switch verb {
		case "EHLO", "HELO":
			if s.mode == smtpStartTLS && !secure {
				reply("250-relay.test", "250-STARTTLS", "250 AUTH PLAIN")
			} else {
				reply("250-relay.test", "250 AUTH PLAIN")
			}
		case "STARTTLS":
			reply("220 ready")
			tc := tls.Server(conn, s.tls)
			if err := tc.Handshake(); err != nil {
				sess.Err = err
				return sess
			}
			rw, r, secure = tc, bufio.NewReader(tc), true
		case "AUTH":
			reply("235 authenticated")
		case "MAIL", "RCPT", "RSET", "NOOP":
			reply("250 ok")
		case "DATA":
			reply("354 go ahead")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					sess.Err = err
					return sess
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			sess.Data = b.String()
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
		default:
			reply("502 not implemented")
		}
	}
}
