package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "DOCINT_"

// DefaultFile is the configuration file Load reads when none is named and
// it exists in the working directory.
const DefaultFile = ".docint.yaml"

// Options controls where Load reads configuration from.
type Options struct {
	// Fs is the filesystem the configuration file is read from.
	Fs afero.Fs
	// File is an explicit configuration file. A missing explicit file is an
	// error; when empty, DefaultFile is read if present.
	File string
	// Environ supplies environment variables; nil uses os.Environ.
	Environ func() []string
}

// Load builds the configuration from defaults, the YAML file and the
// environment, in increasing precedence, and validates the result.
func Load(opts Options) (*Config, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	data, err := readFile(opts.Fs, opts.File)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := k.Load(rawMap(data), nil); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		EnvironFunc:   opts.Environ,
		TransformFunc: transformEnvKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and the cross-field rules the tags
// cannot express.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration cannot be nil")
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	for category := range cfg.Structure.Sections {
		if strings.Contains(category, ".") {
			return fmt.Errorf("configuration validation failed: structure.sections: category %q contains '.'", category)
		}
	}
	if _, err := cfg.Allocator(0); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := cfg.Formats(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// readFile returns the decoded YAML file, or nil when no file applies.
func readFile(fsys afero.Fs, name string) (map[string]any, error) {
	explicit := name != ""
	if !explicit {
		name = DefaultFile
	}
	raw, err := afero.ReadFile(fsys, name)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", name, err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", name, err)
	}
	if data == nil {
		return nil, nil
	}
	return stringKeys(data).(map[string]any), nil
}

// stringKeys rewrites nested YAML maps so every key is a string; koanf
// cannot flatten map[any]any.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = stringKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stringKeys(val)
		}
		return out
	default:
		return v
	}
}

// transformEnvKey maps DOCINT_BATCH_WORKERS to batch.workers: the first
// segment names the section, the rest the field.
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok || section == "" || field == "" {
		return "", nil
	}
	return section + "." + field, value
}

// rawMap adapts decoded YAML to koanf.Provider.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, errors.New("ReadBytes not implemented")
}
