package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/jobtracker/pkg/authenticator/google"
	"github.com/doodlesbykumbi/jobtracker/pkg/config"
	"github.com/doodlesbykumbi/jobtracker/pkg/server"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/endpoints"
)

// portCounter is used to allocate unique ports for each test server
var portCounter int32 = 19000

const testSecretKey = "integration-secret-key-0123456789abcdef"

// ServerConfig holds configuration for a test server instance
type ServerConfig struct {
	FollowupDays   int
	GoogleClientID string
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		FollowupDays:   3,
		GoogleClientID: FakeGoogleClientID,
	}
}

// ServerInstance represents a running server for a single scenario
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	Port          int
	Config        ServerConfig
	serverProcess *exec.Cmd
	cancel        context.CancelFunc
}

// StartServer starts a server against the test database. It runs in-process
// or as the jobtrackerctl binary depending on how the suite was started.
func StartServer(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc, cfg)
	}
	return startBinaryServerInstance(tc.BinaryPath, tc.DatabaseURL, cfg)
}

func serverConfig(dbURL string, cfg ServerConfig) *config.Config {
	c := config.New()
	c.DatabaseURL = dbURL
	c.SecretKey = testSecretKey
	c.FollowupDays = cfg.FollowupDays
	c.GoogleClientID = cfg.GoogleClientID
	c.TimeZone = "UTC"
	c.AuthRateLimit = 0
	return c
}

// startInlineServerInstance starts an in-process server whose Google
// authenticator fetches keys from the fake provider.
func startInlineServerInstance(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	s := server.NewServer(serverConfig(tc.DatabaseURL, cfg), tc.DB, zap.NewNop(), "127.0.0.1", strconv.Itoa(port),
		server.WithGoogleOptions(google.WithHTTPClient(tc.Google.Client())))
	endpoints.RegisterAll(s)

	instance := &ServerInstance{
		Server:    s,
		ServerURL: fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:      port,
		Config:    cfg,
	}

	go func() {
		_ = s.Start()
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// startBinaryServerInstance starts a server using the jobtrackerctl binary.
// Google login is left unconfigured since the binary cannot reach the fake
// provider.
func startBinaryServerInstance(binaryPath, dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	port := int(atomic.AddInt32(&portCounter, 1))

	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", strconv.Itoa(port))
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"JOBTRACKER_SECRET_KEY="+testSecretKey,
		"JOBTRACKER_FOLLOWUP_DAYS="+strconv.Itoa(cfg.FollowupDays),
		"JOBTRACKER_TIME_ZONE=UTC",
		"JOBTRACKER_AUTH_RATE_LIMIT=0",
		"JOBTRACKER_CONFIG_PATH="+os.TempDir(),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     fmt.Sprintf("http://127.0.0.1:%d", port),
		Port:          port,
		Config:        cfg,
		serverProcess: cmd,
		cancel:        cancel,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = si.Server.Shutdown(ctx)
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
