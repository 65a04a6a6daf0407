package email

import (
	"context"
	"net"
	"time"
)

// session owns the raw connection of one SMTP attempt. The mail client
// only ever sees a boundedConn, so its own deadline refreshes cannot push
// past the attempt's limit.
type session struct {
	ctx      context.Context
	deadline time.Time
	conn     net.Conn
	stop     func() bool
}

func newSession(ctx context.Context, timeout time.Duration) *session {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return &session{ctx: ctx, deadline: deadline}
}

func (s *session) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(s.deadline); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s.close()
	s.conn = conn
	s.stop = context.AfterFunc(s.ctx, func() { _ = conn.Close() })
	return &boundedConn{Conn: conn, limit: s.deadline}, nil
}

// close is safe to call more than once and before any dial.
func (s *session) close() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

type boundedConn struct {
	net.Conn
	limit time.Time
}

func (c *boundedConn) clamp(t time.Time) time.Time {
	if t.IsZero() || t.After(c.limit) {
		return c.limit
	}
	return t
}

func (c *boundedConn) SetDeadline(t time.Time) error {
	return c.Conn.SetDeadline(c.clamp(t))
}

func (c *boundedConn) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(c.clamp(t))
}

func (c *boundedConn) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(c.clamp(t))
}
