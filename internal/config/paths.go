package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations used by the service.
// Relative configuration values are anchored at BaseDir.
type Paths struct {
	BaseDir  string
	DataDir  string
	LogsDir  string
	DataFile string
}

// ResolvePaths turns the configured paths into absolute ones.
// An empty BaseDir means the directory holding the executable.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		exeDir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	p := &Paths{
		BaseDir: base,
		DataDir: anchor(base, c.Paths.DataDir),
		LogsDir: anchor(base, c.Paths.LogsDir),
	}
	p.DataFile = anchor(p.DataDir, c.Data.File)

	return p, nil
}

// ExecutableDir returns the directory of the running binary with symlinks
// resolved, so an installed link still finds files shipped beside the target.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// DefaultDataFilePath is DefaultDataFile next to the executable.
func DefaultDataFilePath() (string, error) {
	dir, err := ExecutableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultDataFile), nil
}

// EnsureDirectories creates the directories the service writes to
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Path resolution summary",
		slog.Group("paths",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("logs", p.LogsDir),
			slog.String("data_file", p.DataFile),
		),
		slog.Bool("data_file_exists", FileExists(p.DataFile)),
	)
}

// FileExists checks if a regular file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func anchor(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
