package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/ssh"
)

// askPass reads a password from the terminal without echoing it.
func askPass(prompt io.Writer, fd int) (string, error) {
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("can not prompt for SSH password: stdin is not a terminal")
	}
	_, _ = fmt.Fprint(prompt, "SSH password: ")
	pass, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read SSH password: %w", err)
	}
	return string(pass), nil
}

func (cfg *config) sshInit(log *slog.Logger) (*ssh.SSH, error) {
	sc := cfg.sshCfg

	if sc.AskPass && sc.Passwd == "" {
		pass, err := askPass(os.Stderr, int(os.Stdin.Fd()))
		if err != nil {
			return nil, err
		}
		sc.Passwd = pass
	}

	verbosity := 0
	if cfg.verbose {
		verbosity = 2
	}

	conn := ssh.NewSSH(sc.Host, sc.User).
		WithLogger(log).
		WithVerbose(verbosity).
		WithPort(sc.Port).
		WithTimeout(sc.Timeout).
		WithVersion("SSH-2.0-sandfly-mediascan_" + constVersion).
		WithMaxSessions(sc.Sessions)

	if sc.KnownHosts != "" {
		conn = conn.WithKnownHosts(sc.KnownHosts)
	}

	if sc.Agent {
		conn = conn.WithAgent()
	}

	if sc.KeyFile != "" {
		switch {
		case sc.KeyFilePassphrase == "":
			conn = conn.WithKeyFile(sc.KeyFile)
		default:
			conn = conn.WithEncryptedKeyFile(sc.KeyFile, sc.KeyFilePassphrase)
		}
	}

	if sc.Passwd != "" {
		conn = conn.WithPassword(sc.Passwd)
	}

	if err := conn.Connect(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error connecting to SSH host (%s): %w", sc.Host, err)
	}

	log.Info("connected", "remote", conn.String())

	return conn, nil
}

// source returns where the scan reads files from: the local folder, or the folder on the SSH
// host. The returned close function releases the connection.
func (cfg *config) source(log *slog.Logger) (scan.Source, func() error, error) {
	if cfg.sshCfg.Host == "" {
		return scan.NewOSSource(cfg.folder), func() error { return nil }, nil
	}

	conn, err := cfg.sshInit(log)
	if err != nil {
		return nil, nil, err
	}

	return conn.Source(cfg.folder), conn.Close, nil
}
