// Package sumo drives SUMO simulation episodes over the TraCI protocol.
package sumo

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/trafficlab/signaltune/internal/sim"
	"github.com/trafficlab/signaltune/pkg/logger"
	"github.com/trafficlab/signaltune/pkg/utils"
)

// Backend launches SUMO processes and speaks TraCI to them
type Backend struct {
	// GUI selects the sumo-gui binary
	GUI bool
	// ConnectTimeout bounds how long to wait for the simulator to
	// accept the TraCI connection after launch
	ConnectTimeout time.Duration
}

// NewBackend creates a SUMO backend
func NewBackend(gui bool) *Backend {
	return &Backend{
		GUI:            gui,
		ConnectTimeout: 15 * time.Second,
	}
}

// Start launches one SUMO episode and connects to it. A failure here is
// fatal to the caller: it indicates a broken environment, not a bad
// parameter choice.
func (b *Backend) Start(ctx context.Context, launch sim.Launch) (sim.Session, error) {
	binary, err := FindBinary(b.GUI)
	if err != nil {
		return nil, err
	}

	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("no free port for TraCI: %w", err)
	}

	args := []string{
		"-c", launch.ConfigPath,
		"--tripinfo-output", launch.TripInfoPath,
		"--no-warnings", "true",
		"--remote-port", strconv.Itoa(port),
	}
	if launch.PlanPath != "" {
		args = append(args, "-a", launch.PlanPath)
	}
	if b.GUI {
		args = append(args, "--start", "--quit-on-end")
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("launching simulator",
		"binary", binary,
		"scenario", launch.ConfigPath,
		"plan", launch.PlanPath,
		"port", port)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to launch simulator: %w", err)
	}

	conn, err := b.connect(ctx, port)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("failed to connect to simulator on port %d: %w%s", port, err, stderrTail(&stderr))
	}

	// Version handshake confirms the session is actually TraCI
	if _, err := roundTrip(conn, cmdGetVersion, nil); err != nil {
		_ = conn.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("simulator handshake failed: %w", err)
	}

	return &session{conn: conn, cmd: cmd}, nil
}

// connect dials the TraCI port with backoff until the simulator accepts
func (b *Backend) connect(ctx context.Context, port int) (net.Conn, error) {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	backoff := utils.NewExponentialBackoff(50*time.Millisecond, time.Second, 2.0, false)
	deadline := time.Now().Add(b.ConnectTimeout)

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			return conn, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("gave up after %s: %w", b.ConnectTimeout, err)
		}
		time.Sleep(backoff.NextDelay(attempt))
	}
}

// stderrTail formats captured simulator stderr for error messages
func stderrTail(buf *bytes.Buffer) string {
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return ""
	}
	return "\nsimulator output: " + out
}

// freePort reserves an ephemeral TCP port and releases it for the
// simulator to bind
func freePort() (int, error) {
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	return port, l.Close()
}

// session is one live TraCI connection to a SUMO process
type session struct {
	conn   net.Conn
	cmd    *exec.Cmd
	closed bool
}

// Step advances the simulation by one discrete time step
func (s *session) Step() error {
	// Target time zero advances exactly one step
	if _, err := roundTrip(s.conn, cmdSimStep, encodeDouble(0)); err != nil {
		return fmt.Errorf("simulation step failed: %w", err)
	}
	return nil
}

// ExpectedVehicles queries the number of vehicles still running or
// waiting to be inserted
func (s *session) ExpectedVehicles() (int, error) {
	content := append([]byte{varMinExpectedVehicles}, encodeString("")...)
	rest, err := roundTrip(s.conn, cmdGetSimVariable, content)
	if err != nil {
		return 0, fmt.Errorf("expected-vehicle query failed: %w", err)
	}

	cmds, err := splitMessage(rest)
	if err != nil || len(cmds) == 0 {
		return 0, fmt.Errorf("malformed expected-vehicle result: %w", err)
	}
	return parseIntVariable(cmds[0], varMinExpectedVehicles)
}

// Close ends the episode, which makes the simulator flush its trip
// report, and reaps the process
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	// The simulator may drop the connection right after acknowledging
	// close; that is not an error worth surfacing.
	if _, err := roundTrip(s.conn, cmdClose, nil); err != nil {
		logger.Debug("close command not acknowledged", "error", err)
	}
	if err := s.conn.Close(); err != nil {
		logger.Debug("failed to close TraCI connection", "error", err)
	}

	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("simulator exited abnormally: %w", err)
	}
	return nil
}
