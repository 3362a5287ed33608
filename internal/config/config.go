// Package config loads modgen settings from .modgen.yaml, MODGEN_* environment
// variables and defaults.
package config

// Parser names accepted by the parser key.
const (
	ParserAuto   = "auto"
	ParserJSON   = "json"
	ParserSource = "source"
	ParserClang  = "clang"
)

// DefaultMaxFileSize is the largest header parsed during directory discovery.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// Config is the complete modgen configuration.
type Config struct {
	Namespaces  []string    `yaml:"namespaces" mapstructure:"namespaces"`
	Filter      string      `yaml:"filter" mapstructure:"filter"`
	Exclude     string      `yaml:"exclude" mapstructure:"exclude"`
	Module      string      `yaml:"module" mapstructure:"module"`
	Parser      string      `yaml:"parser" mapstructure:"parser"` // auto, json, source or clang
	Clang       ClangConfig `yaml:"clang" mapstructure:"clang"`
	Paths       PathsConfig `yaml:"paths" mapstructure:"paths"`
	MaxFileSize int64       `yaml:"max_file_size" mapstructure:"max_file_size"`
	Jobs        int         `yaml:"jobs" mapstructure:"jobs"` // 0 means GOMAXPROCS
}

// ClangConfig configures the compiler used to dump a JSON AST.
type ClangConfig struct {
	Command string   `yaml:"command" mapstructure:"command"`
	Args    []string `yaml:"args" mapstructure:"args"` // extra flags such as -std=c++20 or -I
}

// PathsConfig selects headers when the input is a directory.
type PathsConfig struct {
	Headers []string `yaml:"headers" mapstructure:"headers"` // glob patterns for headers
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Parser: ParserAuto,
		Clang: ClangConfig{
			Command: "clang++",
			Args:    []string{"-std=c++20"},
		},
		Paths: PathsConfig{
			Headers: []string{
				"**/*.h",
				"**/*.hh",
				"**/*.hpp",
				"**/*.hxx",
				"**/*.ixx",
				"**/*.cppm",
			},
			Ignore: []string{
				"**/test/**",
				"**/tests/**",
				"**/third_party/**",
			},
		},
		MaxFileSize: DefaultMaxFileSize,
	}
}
