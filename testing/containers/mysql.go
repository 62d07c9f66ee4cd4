//go:build integration

// Package containers starts disposable database servers for integration tests.
package containers

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/gaborage/bricksql/config"
)

// MySQLContainerConfig holds configuration for the MySQL test container
type MySQLContainerConfig struct {
	// ImageTag specifies the MySQL version (default: "8.4")
	ImageTag string
	// Username for MySQL authentication (default: "testuser")
	Username string
	// Password for MySQL authentication (default: "testpass")
	Password string
	// Database name to create (default: "testdb")
	Database string
	// Scripts are executed in order once the server is up.
	Scripts []string
	// StartupTimeout for container initialization (default: 90 seconds)
	StartupTimeout time.Duration
}

// DefaultMySQLConfig returns a MySQLContainerConfig populated with defaults.
func DefaultMySQLConfig() *MySQLContainerConfig {
	return &MySQLContainerConfig{
		ImageTag:       "8.4",
		Username:       "testuser",
		Password:       "testpass",
		Database:       "testdb",
		StartupTimeout: 90 * time.Second,
	}
}

// MySQLContainer wraps the testcontainers MySQL module.
type MySQLContainer struct {
	container *tcmysql.MySQLContainer
	cfg       *MySQLContainerConfig
}

// StartMySQLContainer starts a MySQL testcontainer using cfg, or
// DefaultMySQLConfig when cfg is nil. The test is skipped when Docker is not
// reachable.
func StartMySQLContainer(ctx context.Context, t *testing.T, cfg *MySQLContainerConfig) (*MySQLContainer, error) {
	t.Helper()

	if cfg == nil {
		cfg = DefaultMySQLConfig()
	}

	if !isDockerAvailable(ctx) {
		t.Skip("Docker is not available - skipping integration test. Install Docker Desktop or ensure Docker daemon is running.")
		return nil, nil
	}

	startCtx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()

	opts := []testcontainers.ContainerCustomizer{
		tcmysql.WithDatabase(cfg.Database),
		tcmysql.WithUsername(cfg.Username),
		tcmysql.WithPassword(cfg.Password),
	}
	if len(cfg.Scripts) > 0 {
		opts = append(opts, tcmysql.WithScripts(cfg.Scripts...))
	}

	container, err := tcmysql.Run(startCtx, "mysql:"+cfg.ImageTag, opts...)
	if err != nil {
		if container != nil {
			_ = container.Terminate(ctx)
		}
		return nil, fmt.Errorf("failed to start MySQL container: %w", err)
	}

	t.Logf("MySQL container started (image mysql:%s, database %s)", cfg.ImageTag, cfg.Database)

	return &MySQLContainer{container: container, cfg: cfg}, nil
}

// MustStartMySQLContainer is StartMySQLContainer that fails the test on error.
func MustStartMySQLContainer(ctx context.Context, t *testing.T, cfg *MySQLContainerConfig) *MySQLContainer {
	t.Helper()

	container, err := StartMySQLContainer(ctx, t, cfg)
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}
	return container
}

// WithCleanup terminates the container when the test finishes.
func (m *MySQLContainer) WithCleanup(t *testing.T) *MySQLContainer {
	t.Helper()
	t.Cleanup(func() {
		if err := m.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate MySQL container: %v", err)
		}
	})
	return m
}

// DatabaseConfig returns a config.DatabaseConfig pointing at the container.
func (m *MySQLContainer) DatabaseConfig(ctx context.Context) (*config.DatabaseConfig, error) {
	if m.container == nil {
		return nil, fmt.Errorf("container not initialized")
	}

	host, err := m.container.Host(ctx)
	if err != nil {
		return nil, err
	}
	port, err := m.container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		return nil, err
	}

	return &config.DatabaseConfig{
		Type:     config.MySQL,
		Host:     host,
		Port:     port.Int(),
		Database: m.cfg.Database,
		Username: m.cfg.Username,
		Password: m.cfg.Password,
	}, nil
}

// Address returns host:port of the mapped MySQL port.
func (m *MySQLContainer) Address(ctx context.Context) (string, error) {
	cfg, err := m.DatabaseConfig(ctx)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), nil
}

// Terminate stops and removes the container.
func (m *MySQLContainer) Terminate(ctx context.Context) error {
	if m.container == nil {
		return nil
	}
	return m.container.Terminate(ctx)
}

// isDockerAvailable reports whether the testcontainers Docker provider can
// reach a daemon.
func isDockerAvailable(ctx context.Context) bool {
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	_, err = provider.DaemonHost(ctx)
	return err == nil
}
