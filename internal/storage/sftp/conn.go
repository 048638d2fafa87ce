package sftp

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/zinc-sig/ferry/internal/storage"
)

// Dialer returns an SFTP client and the transport underneath it. Both are
// closed after each operation; the transport may be nil.
type Dialer func(ctx context.Context, cfg Config) (*sftp.Client, io.Closer, error)

// ClientConfig builds the SSH client configuration. Password and key
// authentication are offered when set. Without a known_hosts file any host
// key is accepted.
func ClientConfig(cfg Config) (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}
	if cfg.Options.KeyFile != "" {
		signer, err := loadKey(cfg.Options.KeyFile, cfg.Options.Passphrase)
		if err != nil {
			return nil, err
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}

	hostKey := ssh.InsecureIgnoreHostKey() //nolint:gosec // matches the accept-any default of the upload pipeline
	if cfg.Options.KnownHosts != "" {
		cb, err := knownhosts.New(cfg.Options.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("load known_hosts: %w", err)
		}
		hostKey = cb
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         cfg.Options.Timeout,
	}, nil
}

func loadKey(path, passphrase string) (ssh.Signer, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(pem)
	}
	if err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", path, err)
	}
	return signer, nil
}

// Dial opens TCP, performs the SSH handshake and starts the sftp subsystem.
func Dial(ctx context.Context, cfg Config) (*sftp.Client, io.Closer, error) {
	sshCfg, err := ClientConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	d := net.Dialer{Timeout: cfg.Options.Timeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		return nil, nil, err
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, cfg.Addr(), sshCfg)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	sshClient := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, err
	}
	return client, sshClient, nil
}

func (e *Engine) withConnection(ctx context.Context, body func(c *sftp.Client) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.log.Debug(ctx, "sftp connect", "addr", e.cfg.Addr(), "user", e.cfg.User)
	client, transport, err := e.dial(ctx, e.cfg)
	if err != nil {
		return storage.NewOpError("sftp", "connect", e.cfg.Addr(), err)
	}
	defer func() {
		_ = client.Close()
		if transport != nil {
			_ = transport.Close()
		}
	}()
	return body(client)
}
