// Package config loads generator settings from a configuration file
// and merges them with command-line flags. The canonical file is
// appsettings.json with a top-level CodeGenerator object whose keys
// mirror the flag names in camelCase; a .toml file with the same
// shape is also accepted.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgen/internal/core"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the configuration file consulted when --config is
// not given.
const DefaultFile = "appsettings.json"

// Defaults for settings that neither the file nor the flags provide.
const (
	DefaultProvider  = "Microsoft.Data.SqlClient"
	DefaultNamespace = "GeneratedApp.Data"
	DefaultOutput    = "./Generated"
)

// Settings is the merged generator configuration. Pointer fields
// distinguish "not set" from an explicit false.
type Settings struct {
	Connection      string `json:"connection" toml:"connection"`
	Provider        string `json:"provider" toml:"provider"`
	Namespace       string `json:"namespace" toml:"namespace"`
	Output          string `json:"output" toml:"output"`
	Pluralize       *bool  `json:"pluralize" toml:"pluralize"`
	DataAnnotations *bool  `json:"dataAnnotations" toml:"dataAnnotations"`
}

type file struct {
	CodeGenerator Settings `json:"CodeGenerator" toml:"CodeGenerator"`
}

// Load reads the configuration file at path. A missing default file
// yields empty settings; a missing explicit file is a ConfigError.
func Load(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Settings{}, nil
		}
		return nil, &core.ConfigError{Msg: fmt.Sprintf("failed to read config file %s", path), Err: err}
	}

	var f file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, &core.ConfigError{Msg: fmt.Sprintf("failed to parse config file %s", path), Err: err}
	}
	return &f.CodeGenerator, nil
}

// Merge overlays flag values onto file settings. A flag value wins
// whenever its flag was set on the command line.
func (s *Settings) Merge(flags Settings, set func(name string) bool) {
	if set("connection") {
		s.Connection = flags.Connection
	}
	if set("provider") {
		s.Provider = flags.Provider
	}
	if set("namespace") {
		s.Namespace = flags.Namespace
	}
	if set("output") {
		s.Output = flags.Output
	}
	if set("pluralize") {
		s.Pluralize = flags.Pluralize
	}
	if set("data-annotations") {
		s.DataAnnotations = flags.DataAnnotations
	}
}

// Finalize fills defaults and validates the required fields.
func (s *Settings) Finalize() error {
	if strings.TrimSpace(s.Connection) == "" {
		return &core.ConfigError{Msg: "connection string is required (use --connection or the config file)"}
	}
	if s.Provider == "" {
		s.Provider = DefaultProvider
	}
	if s.Namespace == "" {
		s.Namespace = DefaultNamespace
	}
	if s.Output == "" {
		s.Output = DefaultOutput
	}
	if s.Pluralize == nil {
		v := true
		s.Pluralize = &v
	}
	if s.DataAnnotations == nil {
		v := true
		s.DataAnnotations = &v
	}
	return nil
}

// ProviderName maps the CLI's short provider aliases onto the full
// provider tokens the reader factory recognizes. Full tokens pass
// through unchanged.
func ProviderName(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "sqlserver":
		return "Microsoft.Data.SqlClient"
	case "mysql":
		return "MySql.Data.MySqlClient"
	case "postgresql", "postgres":
		return "Npgsql"
	default:
		return p
	}
}
