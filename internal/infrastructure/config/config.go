// Package config resolves the device runtime's startup configuration from
// command-line flags, following the settings-struct convention used
// elsewhere in this codebase for plain, validated configuration values.
package config

import (
	"flag"
	"fmt"
)

// Action names the top-level action a run of the binary performs.
type Action string

const (
	ActionStart   Action = "start"
	ActionGetCert Action = "get_cert"
)

// LogLevel is the closed set of levels the logging layer accepts.
type LogLevel string

const (
	LogDebug LogLevel = "DEBUG"
	LogInfo  LogLevel = "INFO"
	LogError LogLevel = "ERROR"
)

// Config is the fully-resolved configuration for one run of the device
// runtime.
type Config struct {
	Action Action

	Port    int
	LogLvl  LogLevel
	LogFile string
	WebRoot string

	CertPath          string
	CertSegments      int
	CertSegmentLength int
}

// Parse resolves a Config from argv (excluding the program name),
// mirroring the action/--port/--loglvl/--logfile/--certsize flags of the
// original command-line surface.
func Parse(argv []string) (Config, error) {
	if len(argv) == 0 {
		return Config{}, fmt.Errorf("config: expected an action (start or get_cert)")
	}
	action := Action(argv[0])
	if action != ActionStart && action != ActionGetCert {
		return Config{}, fmt.Errorf("config: unknown action %q", argv[0])
	}

	fs := flag.NewFlagSet(string(action), flag.ContinueOnError)
	port := fs.Int("port", 8000, "the port the HTTP server should listen on")
	loglvl := fs.String("loglvl", string(LogInfo), "the level to log at: DEBUG, INFO, or ERROR")
	logfile := fs.String("logfile", "", "the file to log to; defaults to stdout")
	webroot := fs.String("webroot", "./web", "the directory static files and description documents are served from")
	certpath := fs.String("cert", "./device.cert", "the certificate file path")
	// certsegments/certseglen stand in for a single --certsize S L flag:
	// Go's flag package takes one value per flag, not a pair.
	certsize := fs.Int("certsegments", 1000, "the number of segments a generated certificate should hold")
	certlen := fs.Int("certseglen", 1500, "the length, in bytes, of each certificate segment")

	if err := fs.Parse(argv[1:]); err != nil {
		return Config{}, err
	}

	level := LogLevel(*loglvl)
	if level != LogDebug && level != LogInfo && level != LogError {
		return Config{}, fmt.Errorf("config: unknown log level %q", *loglvl)
	}

	return Config{
		Action:            action,
		Port:              *port,
		LogLvl:            level,
		LogFile:           *logfile,
		WebRoot:           *webroot,
		CertPath:          *certpath,
		CertSegments:      *certsize,
		CertSegmentLength: *certlen,
	}, nil
}
