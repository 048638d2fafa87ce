package sftp

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/zinc-sig/ferry/internal/storage"
)

func newSigner(t *testing.T) (ssh.Signer, ed25519.PrivateKey) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)
	return signer, priv
}

// startSSHServer serves the sftp subsystem from handlers on a loopback port
// and accepts password "secret" for user "deploy".
func startSSHServer(t *testing.T, hostKey ssh.Signer, handlers sftp.Handlers) (string, int) {
	t.Helper()
	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == "deploy" && string(pass) == "secret" {
				return nil, nil
			}
			return nil, assert.AnError
		},
	}
	cfg.AddHostKey(hostKey)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSSH(conn, cfg, handlers)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func serveSSH(conn net.Conn, cfg *ssh.ServerConfig, handlers sftp.Handlers) {
	_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		_ = conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			_ = newChan.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		ch, requests, err := newChan.Accept()
		if err != nil {
			continue
		}
		go func() {
			for req := range requests {
				ok := req.Type == "subsystem" && len(req.Payload) > 4 &&
					string(req.Payload[4:4+binary.BigEndian.Uint32(req.Payload)]) == "sftp"
				_ = req.Reply(ok, nil)
				if ok {
					server := sftp.NewRequestServer(ch, handlers)
					_ = server.Serve()
					_ = server.Close()
				}
			}
		}()
	}
}

func TestDial_EndToEnd(t *testing.T) {
	hostKey, _ := newSigner(t)
	host, port := startSSHServer(t, hostKey, sftp.InMemHandler())

	dir := t.TempDir()
	known := filepath.Join(dir, "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(net.JoinHostPort(host, itoa(port)))}, hostKey.PublicKey())
	require.NoError(t, os.WriteFile(known, []byte(line+"\n"), 0o600))

	cfg := DefaultConfig()
	cfg.Host, cfg.Port = host, port
	cfg.User, cfg.Password = "deploy", "secret"
	cfg.Folder = "/srv"
	cfg.Options.KnownHosts = known

	up := storage.NewBasicUploader("/app")
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/tmp/in.txt", []byte("over ssh"), 0o644))
	engine := New(cfg, storage.Deps{Uploader: up, FS: fs})

	ctx := context.Background()
	file, err := engine.Store(ctx, "report.txt", "/tmp/in.txt")
	require.NoError(t, err)
	data, err := file.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "over ssh", string(data))

	cfg.Password = "wrong"
	bad := New(cfg, storage.Deps{Uploader: up, FS: fs})
	_, _, err = mustRetrieve(t, bad, "report.txt").Size(ctx)
	assert.Error(t, err, "authentication failures propagate")
}

func TestDial_UnknownHostKeyRejected(t *testing.T) {
	hostKey, _ := newSigner(t)
	otherKey, _ := newSigner(t)
	host, port := startSSHServer(t, hostKey, sftp.InMemHandler())

	known := filepath.Join(t.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{knownhosts.Normalize(net.JoinHostPort(host, itoa(port)))}, otherKey.PublicKey())
	require.NoError(t, os.WriteFile(known, []byte(line+"\n"), 0o600))

	cfg := DefaultConfig()
	cfg.Host, cfg.Port = host, port
	cfg.User, cfg.Password = "deploy", "secret"
	cfg.Options.KnownHosts = known

	_, _, err := Dial(context.Background(), cfg)
	assert.Error(t, err)
}

func TestClientConfig_KeyFile(t *testing.T) {
	_, priv := newSigner(t)
	dir := t.TempDir()

	plain, err := ssh.MarshalPrivateKey(priv, "test")
	require.NoError(t, err)
	plainPath := filepath.Join(dir, "id_plain")
	require.NoError(t, os.WriteFile(plainPath, pem.EncodeToMemory(plain), 0o600))

	locked, err := ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte("hunter2"))
	require.NoError(t, err)
	lockedPath := filepath.Join(dir, "id_locked")
	require.NoError(t, os.WriteFile(lockedPath, pem.EncodeToMemory(locked), 0o600))

	cfg := DefaultConfig()
	cfg.Password = "pw"
	cfg.Options.KeyFile = plainPath
	cc, err := ClientConfig(cfg)
	require.NoError(t, err)
	assert.Len(t, cc.Auth, 2)
	assert.NotNil(t, cc.HostKeyCallback)

	cfg.Password = ""
	cfg.Options.KeyFile = lockedPath
	cfg.Options.Passphrase = "hunter2"
	cc, err = ClientConfig(cfg)
	require.NoError(t, err)
	assert.Len(t, cc.Auth, 1)

	cfg.Options.Passphrase = "wrong"
	_, err = ClientConfig(cfg)
	assert.Error(t, err)

	cfg.Options.KeyFile = filepath.Join(dir, "missing")
	_, err = ClientConfig(cfg)
	assert.Error(t, err)

	cfg.Options.KeyFile = ""
	cfg.Options.KnownHosts = filepath.Join(dir, "no_known_hosts")
	_, err = ClientConfig(cfg)
	assert.Error(t, err)
}

func mustRetrieve(t *testing.T, e *Engine, id string) storage.File {
	t.Helper()
	f, err := e.Retrieve(id)
	require.NoError(t, err)
	return f
}
