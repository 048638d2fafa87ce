package ftp

import (
	"context"
	"crypto/tls"
	"errors"
	"net"

	"github.com/secsy/goftp"

	"github.com/zinc-sig/ferry/internal/storage"
)

// RawConn is a logged-in FTP control connection. *goftp.Client.OpenRawConn
// returns one.
type RawConn interface {
	SendCommand(format string, args ...interface{}) (int, string, error)
	PrepareDataConn() (func() (net.Conn, error), error)
	ReadResponse() (int, string, error)
	Close() error
}

// Dialer opens and authenticates a control connection.
type Dialer func(ctx context.Context, cfg Config) (RawConn, error)

type clientConn struct {
	goftp.RawConn
	client *goftp.Client
}

func (c clientConn) Close() error {
	return errors.Join(c.RawConn.Close(), c.client.Close())
}

// Dial connects with goftp using one connection per host. TLS is explicit
// and skips certificate verification.
func Dial(_ context.Context, cfg Config) (RawConn, error) {
	gc := goftp.Config{
		User:               cfg.User,
		Password:           cfg.Password,
		ConnectionsPerHost: 1,
		Timeout:            cfg.Timeout,
		ActiveTransfers:    !cfg.Passive,
	}
	if cfg.TLS {
		gc.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // servers commonly use self-signed certificates
		gc.TLSMode = goftp.TLSExplicit
	}

	client, err := goftp.DialConfig(gc, cfg.Addr())
	if err != nil {
		return nil, err
	}
	raw, err := client.OpenRawConn()
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return clientConn{RawConn: raw, client: client}, nil
}

// withConnection runs body on a fresh session and always tears it down.
func (e *Engine) withConnection(ctx context.Context, body func(s *session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.log.Debug(ctx, "ftp connect", "addr", e.cfg.Addr(), "passive", e.cfg.Passive, "tls", e.cfg.TLS)
	raw, err := e.dial(ctx, e.cfg)
	if err != nil {
		return storage.NewOpError("ftp", "connect", e.cfg.Addr(), err)
	}
	s := &session{raw: raw}
	defer s.close()

	if err := s.binary(); err != nil {
		return storage.NewOpError("ftp", "connect", e.cfg.Addr(), err)
	}
	return body(s)
}
