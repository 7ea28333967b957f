package ssh

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// WithAuth adds authentication methods to the [SSH] struct.
func (s *SSH) WithAuth(auth ...ssh.AuthMethod) *SSH {
	s.auth = append(s.auth, auth...)
	return s
}

// WithPassword adds a password callback to the SSH struct for authentication.
func (s *SSH) WithPassword(password string) *SSH {
	s.auth = append(s.auth, ssh.Password(password))
	return s
}

// WithKey parses data from an SSH key to extract signers for authentication.
func (s *SSH) WithKey(key []byte) *SSH {
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		s.builderErr = append(s.builderErr, fmt.Errorf("parse private key: %w", err))
		return s
	}
	s.auth = append(s.auth, ssh.PublicKeys(signer))
	return s
}

// WithEncryptedKey is like [SSH.WithKey] for passphrase protected keys.
func (s *SSH) WithEncryptedKey(key []byte, passphrase string) *SSH {
	signer, err := ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	if err != nil {
		s.builderErr = append(s.builderErr, fmt.Errorf("parse encrypted private key: %w", err))
		return s
	}
	s.auth = append(s.auth, ssh.PublicKeys(signer))
	return s
}

// WithKeyFile parses data from an SSH to be processed by [s.WithKey].
func (s *SSH) WithKeyFile(path string) *SSH {
	dat, err := os.ReadFile(path)
	if err != nil {
		s.builderErr = append(s.builderErr, fmt.Errorf("read key file (%s): %w", path, err))
		return s
	}
	return s.WithKey(dat)
}

// WithEncryptedKeyFile reads a passphrase protected key from path.
func (s *SSH) WithEncryptedKeyFile(path string, passphrase string) *SSH {
	dat, err := os.ReadFile(path)
	if err != nil {
		s.builderErr = append(s.builderErr, fmt.Errorf("read key file (%s): %w", path, err))
		return s
	}
	return s.WithEncryptedKey(dat, passphrase)
}

// WithAgent authenticates with the signers of the running SSH agent. (*nix)
// The agent connection stays open until [SSH.Close].
func (s *SSH) WithAgent() *SSH {
	agentURI := os.Getenv("SSH_AUTH_SOCK")
	if agentURI == "" {
		s.builderErr = append(s.builderErr, fmt.Errorf("ssh agent: SSH_AUTH_SOCK is not set"))
		return s
	}
	conn, err := net.Dial("unix", agentURI)
	if err != nil {
		s.builderErr = append(s.builderErr, fmt.Errorf("ssh agent: %w", err))
		return s
	}
	s.agentConn = conn
	s.auth = append(s.auth, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
	return s
}
