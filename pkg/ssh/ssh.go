// Package ssh lets the scanner enumerate and read a remote directory tree over SSH, without
// installing anything on the remote host.
package ssh

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultSSHPort     = 22
	DefaultSSHVersion  = "SSH-2.0-SF"
	DefaultMaxSessions = 8
)

// SSH is a struct that enables using SSH for remote agent-less media scanning.
type SSH struct {
	host       string
	user       string
	ver        string
	port       int
	conn       ssh.Conn
	tout       time.Duration
	auth       []ssh.AuthMethod
	hostKeys   ssh.HostKeyCallback
	client     *ssh.Client
	agentConn  net.Conn
	sessions   *semaphore.Weighted
	closed     *atomic.Bool
	verbose    int
	log        *slog.Logger
	builderErr []error
}

func (s *SSH) String() string {
	closed := ""
	if s.closed.Load() {
		closed = " (closed)"
	}

	prefix := ""
	suffix := ""

	if s.conn != nil {
		seshID := s.conn.SessionID()
		seshIDTrunc := fmt.Sprintf("%x%x", seshID[:4], seshID[len(seshID)-4:])
		prefix = fmt.Sprintf("%s -> ", s.conn.LocalAddr())
		suffix = fmt.Sprintf(" (srv: %s) [%s]", s.conn.ServerVersion(), seshIDTrunc)
	}

	return fmt.Sprintf("%s%s@%s:%d%s%s",
		prefix, s.user, s.host, s.port, closed, suffix,
	)
}

// NewSSH substantiates a new [SSH] struct and returns a pointer to it.
func NewSSH(host string, user string) *SSH {
	s := &SSH{
		host:     host,
		port:     DefaultSSHPort,
		ver:      DefaultSSHVersion,
		user:     user,
		tout:     20 * time.Second,
		auth:     make([]ssh.AuthMethod, 0),
		sessions: semaphore.NewWeighted(DefaultMaxSessions),
		closed:   new(atomic.Bool),
		log:      slog.Default(),
	}
	s.closed.Store(false)
	return s
}

// WithVerbose increases the verbosity of SSH operations.
func (s *SSH) WithVerbose(i int) *SSH {
	s.verbose = i
	return s
}

// WithLogger sets the logger verbose output is written to.
func (s *SSH) WithLogger(l *slog.Logger) *SSH {
	if l != nil {
		s.log = l
	}
	return s
}

// WithPort sets the port for the SSH connection.
func (s *SSH) WithPort(port int) *SSH {
	s.port = port
	return s
}

// WithTimeout sets the timeout for the SSH connection.
func (s *SSH) WithTimeout(tout time.Duration) *SSH {
	s.tout = tout
	return s
}

// WithVersion sets the version for the SSH connection. It must start with "SSH-2.0-".
func (s *SSH) WithVersion(ver string) *SSH {
	s.ver = ver
	return s
}

// WithMaxSessions limits how many commands run on the remote host at once. Most servers allow
// 10 sessions per connection.
func (s *SSH) WithMaxSessions(n int) *SSH {
	if n > 0 {
		s.sessions = semaphore.NewWeighted(int64(n))
	}
	return s
}

// WithKnownHosts verifies the server's host key against an OpenSSH known_hosts file. Without it
// any host key is accepted.
func (s *SSH) WithKnownHosts(path string) *SSH {
	cb, err := knownhosts.New(path)
	if err != nil {
		s.builderErr = append(s.builderErr, fmt.Errorf("known hosts (%s): %w", path, err))
		return s
	}
	s.hostKeys = cb
	return s
}

func (s *SSH) traceLn(fmt string, args ...any) {
	if s.verbose < 2 {
		return
	}
	s.log.Debug(s.String() + "> " + sprintf(fmt, args...))
}

func (s *SSH) verbLn(fmt string, args ...any) {
	if s.verbose < 1 {
		return
	}
	s.log.Debug(s.String() + "> " + sprintf(fmt, args...))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Close closes the SSH connection.
func (s *SSH) Close() error {
	s.traceLn("[close] closing SSH connection")
	s.closed.Store(true)

	var errs []error
	if s.client != nil {
		if err := s.client.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.verbLn("[close] error closing SSH connection: %v", err)
			errs = append(errs, err)
		}
	} else {
		s.traceLn("[close] SSH client is nil")
	}
	if s.agentConn != nil {
		errs = append(errs, s.agentConn.Close())
		s.agentConn = nil
	}
	return errors.Join(errs...)
}

// Connect establishes an SSH connection.
func (s *SSH) Connect() error {
	if s.conn != nil {
		return nil
	}

	if len(s.builderErr) > 0 {
		return errors.Join(s.builderErr...)
	}

	if len(s.auth) == 0 {
		return errors.New("no SSH authentication method configured")
	}

	hostKeys := s.hostKeys
	if hostKeys == nil {
		hostKeys = ssh.InsecureIgnoreHostKey()
	}

	config := &ssh.ClientConfig{
		User:            s.user,
		Auth:            s.auth,
		Timeout:         s.tout,
		HostKeyCallback: hostKeys,
		BannerCallback:  ssh.BannerDisplayStderr(),
	}

	if strings.HasPrefix(s.ver, "SSH-2.0-") {
		config.ClientVersion = s.ver
	}

	config.SetDefaults()

	s.verbLn("[connect] connecting...")

	var err error
	if s.client, err = ssh.Dial("tcp", net.JoinHostPort(s.host, strconv.Itoa(s.port)), config); err != nil {
		s.verbLn("[connect] error connecting: %v", err)
		return err
	}

	s.conn = s.client.Conn
	s.closed.Store(false)

	s.verbLn("[connect] connected!")

	return nil
}

// Closed returns true if the SSH connection is closed.
func (s *SSH) Closed() bool {
	return s.closed.Load() || s.conn == nil && s.client == nil
}
