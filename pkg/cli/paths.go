package cli

import (
	"os"
	"path/filepath"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".tutorcore"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Paths provides access to the tutorcore directory structure
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths instance
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base directory (~/.tutorcore)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns the config file path (~/.tutorcore/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// ArchiveDir returns the session archive directory (~/.tutorcore/archive)
func (p *Paths) ArchiveDir() string {
	return filepath.Join(p.BaseDir(), "archive")
}

// EnsureArchiveDir creates the archive directory if it doesn't exist
func (p *Paths) EnsureArchiveDir() error {
	return os.MkdirAll(p.ArchiveDir(), 0755)
}
