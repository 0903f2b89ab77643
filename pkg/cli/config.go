package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// BaseDirName is the configuration directory under $HOME.
	BaseDirName = ".morganai"

	// ConfigFileName is the configuration filename inside it.
	ConfigFileName = "config.yaml"
)

// Config is the on-disk CLI configuration.
type Config struct {
	// Current is the name of the active context.
	Current string `yaml:"current_context,omitempty"`

	// Contexts maps context name to its settings.
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	path string
}

// Context is one named server-plus-credentials profile.
type Context struct {
	Name string `yaml:"name"`

	// ServerURL is the morganai API base URL, for client commands.
	ServerURL string `yaml:"server_url,omitempty"`

	// OpenAIKey authenticates against the OpenAI API, for serve and talk.
	OpenAIKey string `yaml:"openai_key,omitempty"`

	// Model overrides the chat completion model.
	Model string `yaml:"model,omitempty"`

	// Voice is the preferred synthesis voice.
	Voice string `yaml:"voice,omitempty"`

	// Secret signs session tokens when serving.
	Secret string `yaml:"secret,omitempty"`

	// DataDir overrides where serve keeps its database and documents.
	DataDir string `yaml:"data_dir,omitempty"`

	// GroupMeToken and GroupMeGroup point the internship board at the
	// department's announcement group. Both must be set for serve to
	// enable the board.
	GroupMeToken string `yaml:"groupme_token,omitempty"`
	GroupMeGroup string `yaml:"groupme_group,omitempty"`

	// Extra holds free-form settings.
	Extra map[string]string `yaml:"extra,omitempty"`
}

// LoadConfig loads the configuration, creating an empty one on first
// run. An empty path means ~/.morganai/config.yaml.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, BaseDirName, ConfigFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	cfg := &Config{Contexts: make(map[string]*Context), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the configuration back to disk.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the config file location.
func (c *Config) Path() string { return c.path }

// Dir returns the directory holding the config file.
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// SetContext adds or replaces a context.
func (c *Config) SetContext(name string, ctx *Context) error {
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.Current == "" {
		c.Current = name
	}
	return c.Save()
}

// DeleteContext removes a context.
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.Current == name {
		c.Current = ""
	}
	return c.Save()
}

// UseContext makes a context current.
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.Current = name
	return c.Save()
}

// GetContext returns a context by name.
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// CurrentContext returns the active context.
func (c *Config) CurrentContext() (*Context, error) {
	if c.Current == "" {
		return nil, fmt.Errorf("no current context; run 'morganai config set' first")
	}
	return c.GetContext(c.Current)
}

// ResolveContext returns the named context, or the current one for an
// empty name.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name == "" {
		return c.CurrentContext()
	}
	return c.GetContext(name)
}

// ListContexts returns all context names, sorted.
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetExtra reads a free-form setting.
func (ctx *Context) GetExtra(key string) string {
	if ctx.Extra == nil {
		return ""
	}
	return ctx.Extra[key]
}

// SetExtra stores a free-form setting.
func (ctx *Context) SetExtra(key, value string) {
	if ctx.Extra == nil {
		ctx.Extra = make(map[string]string)
	}
	ctx.Extra[key] = value
}

// MaskKey hides the middle of a credential for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
