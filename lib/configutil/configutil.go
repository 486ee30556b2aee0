// Package configutil loads configuration from json5 files, .env files and
// the environment, in that order of increasing priority.
package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/titanous/json5"
)

// localName turns `dir/config.json5` into `dir/config.local.json5`.
func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// readJson5 decodes path into out. Keys missing from the file leave the
// fields of out untouched, so decoding twice layers the second file over the
// first.
func readJson5(path string, out any) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads `name` and layers `<name>.local.<ext>` over it when it
// exists. Values set in the local file always win, including false and 0.
// os.ErrNotExist is returned if neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := readJson5(name, &out)
	if err != nil {
		return out, err
	}

	local := localName(name)
	foundLocal, err := readJson5(local, &out)
	if err != nil {
		return out, err
	}
	if foundLocal {
		slog.Info("merged config with local overrides", "local", local)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ApplyDefaults fills every zero field and nil pointer of dst with the value
// from defaults. Fields that are already set are kept.
func ApplyDefaults[T any](dst *T, defaults T) error {
	return mergo.Merge(dst, defaults, mergo.WithoutDereference)
}

// ReadEnv loads `.env` in the working directory if there is one and then
// overrides the fields of out with environment variables under prefix.
// Variables that are already set in the environment win over `.env`.
func ReadEnv(prefix string, out any) error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	err = envconfig.Process(prefix, out)
	if err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the `validate` struct tags of v.
func Validate(v any) error {
	return validate.Struct(v)
}

// Load reads the config file (a missing file is not an error) and applies
// the environment over it.
func Load[T any](name, envPrefix string) (T, error) {
	out, err := ReadConfig[T](name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return out, err
	}
	err = ReadEnv(envPrefix, &out)
	if err != nil {
		return out, err
	}
	return out, nil
}
