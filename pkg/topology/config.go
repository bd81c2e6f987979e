package topology

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the declarative form of a Network.
//
//	program = "amp.txt"
//	output = "e"
//
//	[[node]]
//	name = "a"
//	seed = [9, 0]
//
//	[[link]]
//	from = "a"
//	to = "b"
type Config struct {
	// Program is used by every node that does not name its own.
	Program string       `toml:"program"`
	Output  string       `toml:"output"`
	Nodes   []NodeConfig `toml:"node"`
	Links   []LinkConfig `toml:"link"`

	dir string
}

type NodeConfig struct {
	Name         string  `toml:"name"`
	Program      string  `toml:"program"`
	Seed         []int64 `toml:"seed"`
	DefaultInput *int64  `toml:"default_input"`
}

type LinkConfig struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// LoadConfig decodes a TOML network description. Relative program paths
// are resolved against the directory of path.
func LoadConfig(path string) (Config, error) {
	var config Config

	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode network config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown keys %v", path, undecoded)
	}

	config.dir = filepath.Dir(path)

	return config, nil
}

// DecodeConfig decodes a TOML network description from a string.
func DecodeConfig(data string) (Config, error) {
	var config Config

	md, err := toml.Decode(data, &config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode network config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown keys %v", undecoded)
	}

	return config, nil
}

func (c *Config) Validate(logger *slog.Logger) error {
	errs := newErrorSet()

	if len(c.Nodes) == 0 {
		errs.Add(fmt.Errorf("no nodes"))
	}

	for i, node := range c.Nodes {
		if node.Name == "" {
			errs.Add(fmt.Errorf("node %d has no name", i))
			continue
		}

		if node.Program == "" && c.Program == "" {
			errs.Add(NodeError{Node: node.Name, Err: fmt.Errorf("no program and no default program")})
		}
	}

	for _, link := range c.Links {
		if link.From == "" || link.To == "" {
			errs.Add(fmt.Errorf("link %q -> %q is incomplete", link.From, link.To))
		}
	}

	if err := errs.Err(); err != nil {
		return err
	}

	logger.Debug("network config valid", "nodes", len(c.Nodes), "links", len(c.Links))

	return nil
}

func (c *Config) programPath(node NodeConfig) string {
	path := node.Program
	if path == "" {
		path = c.Program
	}

	if c.dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}

	return path
}

// Build validates the config and turns it into a Network. load reads a
// program file; each distinct path is loaded once.
func (c *Config) Build(logger *slog.Logger, load func(path string) ([]int64, error)) (*Network, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	err := c.Validate(logger)
	if err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}

	programs := make(map[string][]int64)

	n := New(logger)
	for _, node := range c.Nodes {
		path := c.programPath(node)

		program, ok := programs[path]
		if !ok {
			program, err = load(path)
			if err != nil {
				return nil, NodeError{Node: node.Name, Err: err}
			}
			programs[path] = program
		}

		n.AddNode(Node{
			Name:         node.Name,
			Program:      program,
			Seed:         node.Seed,
			DefaultInput: node.DefaultInput,
		})
	}

	for _, link := range c.Links {
		n.Connect(link.From, link.To)
	}

	n.SetOutput(c.Output)

	err = n.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid network: %w", err)
	}

	return n, nil
}
