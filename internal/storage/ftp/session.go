package ftp

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReplyError is a negative server reply.
type ReplyError struct {
	Command string
	Code    int
	Message string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Command, e.Code, e.Message)
}

// session issues commands on one control connection.
type session struct {
	raw RawConn
}

func (s *session) send(expect int, format string, args ...interface{}) (string, error) {
	code, msg, err := s.raw.SendCommand(format, args...)
	if err != nil {
		return "", err
	}
	if code/100 != expect {
		return "", &ReplyError{Command: verb(format), Code: code, Message: msg}
	}
	return msg, nil
}

func verb(format string) string {
	if i := strings.IndexByte(format, ' '); i > 0 {
		return format[:i]
	}
	return format
}

func (s *session) binary() error {
	_, err := s.send(2, "TYPE I")
	return err
}

func (s *session) chdir(dir string) error {
	_, err := s.send(2, "CWD %s", dir)
	return err
}

// mkdirAll changes into dir, creating each missing segment on the way.
// Segments that already exist are entered without MKD.
func (s *session) mkdirAll(dir string) error {
	if strings.HasPrefix(dir, "/") {
		if err := s.chdir("/"); err != nil {
			return err
		}
	}
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" || seg == "." {
			continue
		}
		if s.chdir(seg) == nil {
			continue
		}
		// MKD can fail if another client created the segment meanwhile;
		// the CWD below decides.
		_, mkErr := s.send(2, "MKD %s", seg)
		if err := s.chdir(seg); err != nil {
			if mkErr != nil {
				return mkErr
			}
			return err
		}
	}
	return nil
}

// transfer runs a STOR or RETR style command with a data connection.
func (s *session) transfer(data func(conn io.ReadWriter) error, format string, args ...interface{}) error {
	getConn, err := s.raw.PrepareDataConn()
	if err != nil {
		return err
	}
	if _, err := s.send(1, format, args...); err != nil {
		return err
	}
	dc, err := getConn()
	if err != nil {
		return err
	}
	copyErr := data(dc)
	closeErr := dc.Close()

	code, msg, err := s.raw.ReadResponse()
	if err != nil {
		return err
	}
	if copyErr != nil {
		return copyErr
	}
	if closeErr != nil {
		return closeErr
	}
	if code/100 != 2 {
		return &ReplyError{Command: verb(format), Code: code, Message: msg}
	}
	return nil
}

func (s *session) put(name string, r io.Reader) error {
	return s.transfer(func(conn io.ReadWriter) error {
		_, err := io.Copy(conn, r)
		return err
	}, "STOR %s", name)
}

func (s *session) get(name string, w io.Writer) error {
	return s.transfer(func(conn io.ReadWriter) error {
		_, err := io.Copy(w, conn)
		return err
	}, "RETR %s", name)
}

// size returns ok=false on a negative reply.
func (s *session) size(name string) (int64, bool, error) {
	code, msg, err := s.raw.SendCommand("SIZE %s", name)
	if err != nil {
		return 0, false, err
	}
	if code != 213 {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(msg), 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

func (s *session) delete(name string) error {
	_, err := s.send(2, "DELE %s", name)
	return err
}

func (s *session) chmod(mode uint32, name string) error {
	_, err := s.send(2, "SITE CHMOD %o %s", mode, name)
	return err
}

func (s *session) close() {
	_, _, _ = s.raw.SendCommand("QUIT")
	_ = s.raw.Close()
}
