package ftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"
	"strings"
	"sync"
)

type reply struct {
	code int
	msg  string
}

// fakeServer is an in-memory FTP server shared by the connections it hands
// out.
type fakeServer struct {
	mu       sync.Mutex
	files    map[string][]byte
	dirs     map[string]bool
	modes    map[string]uint32
	commands []string
	dials    int
	closes   int
	quits    int
	dialErr  error
	// broken makes the named verb fail at the transport level.
	broken string
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		files: map[string][]byte{},
		dirs:  map[string]bool{"/": true},
		modes: map[string]uint32{},
	}
}

func (srv *fakeServer) dial(ctx context.Context, cfg Config) (RawConn, error) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.dials++
	if srv.dialErr != nil {
		return nil, srv.dialErr
	}
	return &fakeConn{srv: srv, cwd: "/", done: make(chan reply, 1)}, nil
}

func (srv *fakeServer) issued(verb string) []string {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	var out []string
	for _, c := range srv.commands {
		if strings.HasPrefix(c, verb+" ") || c == verb {
			out = append(out, c)
		}
	}
	return out
}

func (srv *fakeServer) file(p string) ([]byte, bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	b, ok := srv.files[p]
	return b, ok
}

type fakeConn struct {
	srv  *fakeServer
	cwd  string
	data net.Conn
	done chan reply
}

func (c *fakeConn) resolve(p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(c.cwd, p)
}

func (c *fakeConn) PrepareDataConn() (func() (net.Conn, error), error) {
	client, server := net.Pipe()
	c.data = server
	return func() (net.Conn, error) { return client, nil }, nil
}

func (c *fakeConn) ReadResponse() (int, string, error) {
	r := <-c.done
	return r.code, r.msg, nil
}

func (c *fakeConn) Close() error {
	c.srv.mu.Lock()
	defer c.srv.mu.Unlock()
	c.srv.closes++
	return nil
}

func (c *fakeConn) SendCommand(format string, args ...interface{}) (int, string, error) {
	cmd := fmt.Sprintf(format, args...)
	verb, arg, _ := strings.Cut(cmd, " ")

	srv := c.srv
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.commands = append(srv.commands, cmd)
	if srv.broken == verb {
		return 0, "", errors.New("connection reset by peer")
	}

	switch verb {
	case "TYPE":
		return 200, "Type set to I", nil
	case "QUIT":
		srv.quits++
		return 221, "Goodbye", nil
	case "CWD":
		p := c.resolve(arg)
		if !srv.dirs[p] {
			return 550, "No such directory", nil
		}
		c.cwd = p
		return 250, "OK", nil
	case "MKD":
		p := c.resolve(arg)
		if srv.dirs[p] || !srv.dirs[path.Dir(p)] {
			return 550, "Cannot create directory", nil
		}
		srv.dirs[p] = true
		return 257, fmt.Sprintf("%q created", p), nil
	case "SIZE":
		b, ok := srv.files[c.resolve(arg)]
		if !ok {
			return 550, "No such file", nil
		}
		return 213, strconv.Itoa(len(b)), nil
	case "DELE":
		p := c.resolve(arg)
		if _, ok := srv.files[p]; !ok {
			return 550, "No such file", nil
		}
		delete(srv.files, p)
		return 250, "Deleted", nil
	case "SITE":
		var mode uint32
		var name string
		if _, err := fmt.Sscanf(arg, "CHMOD %o %s", &mode, &name); err != nil {
			return 501, "Syntax error", nil
		}
		srv.modes[c.resolve(name)] = mode
		return 200, "Mode changed", nil
	case "STOR":
		p := c.resolve(arg)
		if !srv.dirs[path.Dir(p)] {
			return 553, "No such directory", nil
		}
		data := c.data
		go func() {
			b, err := io.ReadAll(data)
			_ = data.Close()
			if err != nil {
				c.done <- reply{426, "Transfer aborted"}
				return
			}
			srv.mu.Lock()
			srv.files[p] = b
			srv.mu.Unlock()
			c.done <- reply{226, "Transfer complete"}
		}()
		return 150, "Opening data connection", nil
	case "RETR":
		b, ok := srv.files[c.resolve(arg)]
		if !ok {
			return 550, "No such file", nil
		}
		data := c.data
		go func() {
			_, _ = data.Write(b)
			_ = data.Close()
			c.done <- reply{226, "Transfer complete"}
		}()
		return 150, "Opening data connection", nil
	}
	return 502, "Command not implemented", nil
}
