package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory.
const FileName = ".modgen"

// Loader reads configuration.
type Loader struct {
	dir  string
	file string
	used string
}

// NewLoader returns a loader that searches dir for .modgen.yaml or
// .modgen.yml. A non-empty file overrides the search and must exist.
func NewLoader(dir, file string) *Loader {
	return &Loader{dir: dir, file: file}
}

// Load merges, from lowest to highest priority, defaults, the config file and
// MODGEN_* environment variables, then validates the result. Command-line
// flags are applied by the caller on top.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(l.dir)
	}

	v.SetEnvPrefix("MODGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"namespaces", "filter", "exclude", "module", "parser",
		"clang.command", "clang.args",
		"paths.headers", "paths.ignore",
		"max_file_size", "jobs",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		l.used = v.ConfigFileUsed()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Namespaces = splitList(cfg.Namespaces)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Used reports the config file the last Load read, or "" when none was found.
func (l *Loader) Used() string {
	return l.used
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("namespaces", d.Namespaces)
	v.SetDefault("filter", d.Filter)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("module", d.Module)
	v.SetDefault("parser", d.Parser)
	v.SetDefault("clang.command", d.Clang.Command)
	v.SetDefault("clang.args", d.Clang.Args)
	v.SetDefault("paths.headers", d.Paths.Headers)
	v.SetDefault("paths.ignore", d.Paths.Ignore)
	v.SetDefault("max_file_size", d.MaxFileSize)
	v.SetDefault("jobs", d.Jobs)
}

// splitList flattens comma-separated entries so MODGEN_NAMESPACES=a,b and a
// YAML list behave the same.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
