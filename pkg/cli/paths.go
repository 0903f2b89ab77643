package cli

import (
	"os"
	"path/filepath"
)

// Paths resolves the morganai directory layout under $HOME.
type Paths struct {
	HomeDir string
}

// NewPaths creates a Paths for the current user.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns ~/.morganai.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, BaseDirName)
}

// DataDir returns the database directory (~/.morganai/data).
func (p *Paths) DataDir() string {
	return filepath.Join(p.BaseDir(), "data")
}

// DocsDir returns the knowledge document archive (~/.morganai/documents).
func (p *Paths) DocsDir() string {
	return filepath.Join(p.BaseDir(), "documents")
}

// LogDir returns the log directory (~/.morganai/logs).
func (p *Paths) LogDir() string {
	return filepath.Join(p.BaseDir(), "logs")
}

// EnsureAll creates the whole layout.
func (p *Paths) EnsureAll() error {
	for _, dir := range []string{p.DataDir(), p.DocsDir(), p.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// DataPath returns a path inside the data directory.
func (p *Paths) DataPath(name string) string {
	return filepath.Join(p.DataDir(), name)
}

// LogPath returns a path inside the log directory.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogDir(), name)
}
