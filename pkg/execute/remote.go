package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/tehprofessor/corg/pkg/config"
)

// ErrNoAuth is returned when neither an identity file nor an SSH agent is
// available.
var ErrNoAuth = errors.New("no SSH authentication method available")

// Target is a resolved SSH destination.
type Target struct {
	User string

	// Address is host:port.
	Address string
}

// String returns user@host:port.
func (t Target) String() string {
	if t.User == "" {
		return t.Address
	}
	return t.User + "@" + t.Address
}

// ResolveTarget turns a host alias from cfg.Hosts, or a
// [user@]host[:port] string, into a Target. Missing parts fall back to
// cfg.SSH and then to the local user and port 22.
func ResolveTarget(host string, cfg *config.Config) (Target, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return Target{}, ErrNoHost
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	user, port := cfg.SSH.User, cfg.SSH.Port
	address := host

	if h, ok := cfg.FindHost(host); ok {
		address = h.Address
		if h.User != "" {
			user = h.User
		}
		if h.Port != 0 {
			port = h.Port
		}
	} else if at := strings.LastIndex(host, "@"); at >= 0 {
		user, address = host[:at], host[at+1:]
	}

	if h, p, err := net.SplitHostPort(address); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Target{}, fmt.Errorf("invalid port in %q: %w", host, err)
		}
		address, port = h, n
	}
	address = strings.Trim(address, "[]")
	if address == "" {
		return Target{}, fmt.Errorf("%w: %q has no address", ErrNoHost, host)
	}

	if port == 0 {
		port = config.DefaultSSHPort
	}
	if user == "" {
		user = os.Getenv("USER")
	}

	return Target{User: user, Address: net.JoinHostPort(address, strconv.Itoa(port))}, nil
}

// NewClientConfig builds the SSH client configuration for user from cfg.
// Keys come from the identity file and the agent at SSH_AUTH_SOCK; host keys
// are checked against known_hosts. The returned close function releases the
// agent connection.
func NewClientConfig(cfg config.SSHConfig, user string) (*ssh.ClientConfig, func() error, error) {
	closer := func() error { return nil }

	var auths []ssh.AuthMethod

	if cfg.IdentityFile != "" {
		signer, err := loadIdentity(expandHome(cfg.IdentityFile))
		if err != nil {
			return nil, closer, err
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); cfg.AgentEnabled() && sock != "" {
		conn, err := net.Dial("unix", sock)
		if err == nil {
			auths = append(auths, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
			closer = conn.Close
		}
	}

	if len(auths) == 0 {
		return nil, closer, ErrNoAuth
	}

	knownHosts := cfg.KnownHosts
	if knownHosts == "" {
		knownHosts = filepath.Join("~", ".ssh", "known_hosts")
	}
	hostKeys, err := knownhosts.New(expandHome(knownHosts))
	if err != nil {
		_ = closer()
		return nil, func() error { return nil }, fmt.Errorf("load known hosts: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultSSHTimeout
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: hostKeys,
		Timeout:         timeout,
	}, closer, nil
}

func loadIdentity(path string) (ssh.Signer, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity file: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse identity file %s: %w", path, err)
	}
	return signer, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// handshake runs the SSH handshake on conn. It gives up after cfg.Timeout,
// at the context deadline, or when ctx is cancelled, whichever comes first.
func handshake(
	ctx context.Context, conn net.Conn, addr string, cfg *ssh.ClientConfig,
) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
	var deadline time.Time
	if cfg.Timeout > 0 {
		deadline = time.Now().Add(cfg.Timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, nil, nil, fmt.Errorf("set handshake deadline: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	stop()
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, nil, ctx.Err()
		}
		return nil, nil, nil, err
	}

	if err := conn.SetDeadline(time.Time{}); err != nil {
		_ = sshConn.Close()
		return nil, nil, nil, fmt.Errorf("clear handshake deadline: %w", err)
	}
	return sshConn, chans, reqs, nil
}

// Remote runs scripts on another machine over SSH.
type Remote struct {
	Target       Target
	Shell        string
	ClientConfig *ssh.ClientConfig

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run streams script to `<shell> -s -- args...` on the target and waits for
// it to exit. Cancelling ctx closes the session.
func (r *Remote) Run(ctx context.Context, script []byte, args []string) error {
	if r.Target.Address == "" {
		return ErrNoHost
	}
	if r.ClientConfig == nil {
		return ErrNoAuth
	}

	dialer := net.Dialer{Timeout: r.ClientConfig.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", r.Target.Address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", r.Target, err)
	}

	cfg := *r.ClientConfig
	if r.Target.User != "" {
		cfg.User = r.Target.User
	}

	sshConn, chans, reqs, err := handshake(ctx, conn, r.Target.Address, &cfg)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("ssh handshake with %s: %w", r.Target, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("open session on %s: %w", r.Target, err)
	}
	defer session.Close()

	session.Stdin = bytes.NewReader(script)
	session.Stdout = writerOr(r.Stdout, os.Stdout)
	session.Stderr = writerOr(r.Stderr, os.Stderr)

	done := make(chan error, 1)
	go func() {
		done <- session.Run(Command(r.Shell, args))
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		_ = session.Close()
		return fmt.Errorf("run on %s: %w", r.Target, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("run on %s: %w", r.Target, err)
		}
		return nil
	}
}
