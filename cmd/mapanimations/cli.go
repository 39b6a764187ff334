package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nixta/mapanimations/internal/config"
)

const (
	logFormatText    = "text"
	logFormatConsole = "console"
)

// options are the flags that do not map to a config key.
type options struct {
	configDir string
	logFormat string
	version   bool
}

// flagKeys maps flags to the config keys they override.
var flagKeys = map[string]string{
	"scenario":  "demo.scenario",
	"origin":    "demo.origin",
	"log-level": "logLevel",
	"storage":   "storage.type",
}

func newFlagSet(out io.Writer) (*pflag.FlagSet, *options) {
	opts := &options{}
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVarP(&opts.configDir, "config", "c", ".", "directory containing "+config.FileName)
	fs.StringVar(&opts.logFormat, "log-format", logFormatText, "animation log format: text or console")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	fs.StringP("scenario", "s", "both", "scenario: planes, routes, both, 3d or path")
	fs.String("origin", "lhr", "IATA code of the departure airport")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("storage", "memory", "storage backend: memory, sqlite, postgres, websocket or influx")

	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s [flags]\n\n", AppName)
		fs.PrintDefaults()
	}
	return fs, opts
}

// parseFlags parses args and binds the config flags into viper.
func parseFlags(args []string, out io.Writer) (*options, error) {
	fs, opts := newFlagSet(out)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	opts.logFormat = strings.ToLower(opts.logFormat)
	if opts.logFormat != logFormatText && opts.logFormat != logFormatConsole {
		return nil, fmt.Errorf("unknown log format %q", opts.logFormat)
	}
	return opts, nil
}
