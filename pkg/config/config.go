// Package config layers configuration the way the teacher does: flags, then
// environment variables, then an optional YAML file, then defaults — the
// first layer to supply a value wins. The contractual surface (listen port,
// data directory, log level) is never overridden by the file or defaults;
// the file only fills in values the contractual surface leaves unset.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source records which configuration layer supplied the effective value of
// a given setting, for startup banner reporting.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "env"
	SourceFile    Source = "file"
	SourceDefault Source = "default"
)

const (
	defaultPort    = 42090
	defaultDataDir = ".litemq"
	defaultLevel   = "info"
)

// Flags holds the parsed command-line surface: the positional data
// directory argument plus a convenience -mode flag layered on top of it.
type Flags struct {
	DataDir    string
	Mode       string
	ConfigPath string
	modeSet    bool
	dataDirSet bool
}

// ParseFlags parses args (normally os.Args[1:]) into Flags. The first
// positional argument, if present, is the data directory.
func ParseFlags(args []string) Flags {
	var f Flags
	var positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-mode" || a == "--mode":
			if i+1 < len(args) {
				f.Mode = args[i+1]
				f.modeSet = true
				i++
			}
		case strings.HasPrefix(a, "-mode=") || strings.HasPrefix(a, "--mode="):
			f.Mode = a[strings.Index(a, "=")+1:]
			f.modeSet = true
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				f.ConfigPath = args[i+1]
				i++
			}
		case strings.HasPrefix(a, "-config=") || strings.HasPrefix(a, "--config="):
			f.ConfigPath = a[strings.Index(a, "=")+1:]
		default:
			positional = append(positional, a)
		}
	}
	if len(positional) > 0 {
		f.DataDir = positional[0]
		f.dataDirSet = true
	}
	return f
}

// EnvResult is the set of contractual environment variables LiteMQ honors.
type EnvResult struct {
	Port     int
	PortSet  bool
	Level    string
	LevelSet bool
}

// ParseEnv reads PORT and LOG_LEVEL. An invalid PORT is reported as a
// warning on stderr and treated as unset, falling through to the next
// layer.
func ParseEnv() EnvResult {
	var r EnvResult
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			r.Port = p
			r.PortSet = true
		} else {
			fmt.Fprintf(os.Stderr, "warning: ignoring invalid PORT %q\n", v)
		}
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		r.Level = v
		r.LevelSet = true
	}
	return r
}

// ParseFile loads an optional YAML config file. A missing file is not an
// error; it simply yields a zero Config, so the layering below falls
// through to defaults.
func ParseFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// EffectiveConfigResult is the fully-resolved configuration plus a record
// of which layer won each contractual setting, for the startup banner.
type EffectiveConfigResult struct {
	Config       Config
	PortSource   Source
	LevelSource  Source
	ModeSource   Source
	DataDirSrc   Source
	ConfigPath   string
}

// LoadEffective resolves Flags, environment, and an optional file into a
// single Config, in that precedence order: flags > env > file > defaults.
func LoadEffective(f Flags) (EffectiveConfigResult, error) {
	env := ParseEnv()
	fileCfg, err := ParseFile(f.ConfigPath)
	if err != nil {
		return EffectiveConfigResult{}, err
	}

	res := EffectiveConfigResult{Config: fileCfg, ConfigPath: f.ConfigPath}

	switch {
	case env.PortSet:
		res.Config.Server.Port = env.Port
		res.PortSource = SourceEnv
	case fileCfg.Server.Port != 0:
		res.PortSource = SourceFile
	default:
		res.Config.Server.Port = defaultPort
		res.PortSource = SourceDefault
	}

	switch {
	case f.dataDirSet:
		res.Config.Server.DataDir = f.DataDir
		res.DataDirSrc = SourceFlag
	case fileCfg.Server.DataDir != "":
		res.DataDirSrc = SourceFile
	default:
		res.Config.Server.DataDir = defaultDataDir
		res.DataDirSrc = SourceDefault
	}

	switch {
	case f.modeSet:
		res.Config.Server.Mode = f.Mode
		res.ModeSource = SourceFlag
	case fileCfg.Server.Mode != "":
		res.ModeSource = SourceFile
	default:
		res.Config.Server.Mode = "persistent"
		res.ModeSource = SourceDefault
	}

	switch {
	case env.LevelSet:
		res.Config.Logging.Level = env.Level
		res.LevelSource = SourceEnv
	case fileCfg.Logging.Level != "":
		res.LevelSource = SourceFile
	default:
		res.Config.Logging.Level = defaultLevel
		res.LevelSource = SourceDefault
	}

	return res, nil
}
