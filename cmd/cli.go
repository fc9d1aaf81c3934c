package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Author is credited in the description of every tool.
const Author = "Harry Scells"

// Logging are the flags every tool accepts to control its log output.
type Logging struct {
	Verbose bool `help:"log debug messages" arg:"-v"`
	Quiet   bool `help:"only log warnings and errors" arg:"-q"`
}

// Describe formats the description of a tool.
func Describe(name, version string) string {
	return fmt.Sprintf(`%s
@ %s
# %s`, name, Author, version)
}

// ParseArgs parses args into dest. It reports whether the tool should exit right away and with which
// status: help and version requests exit 0 after writing to stdout, bad arguments exit 1 after
// writing the usage and the error to stderr.
func ParseArgs(dest interface{}, args []string, stdout, stderr io.Writer) (exit bool, status int) {
	p, err := arg.NewParser(arg.Config{}, dest)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return true, 1
	}
	err = p.Parse(args)
	switch {
	case err == arg.ErrHelp:
		p.WriteHelp(stdout)
		return true, 0
	case err == arg.ErrVersion:
		if v, ok := dest.(arg.Versioned); ok {
			fmt.Fprintln(stdout, v.Version())
		}
		return true, 0
	case err != nil:
		p.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return true, 1
	}
	return false, 0
}

// MustParse parses the command line into dest, exiting the process when ParseArgs says so.
func MustParse(dest interface{}) {
	if exit, status := ParseArgs(dest, os.Args[1:], os.Stdout, os.Stderr); exit {
		os.Exit(status)
	}
}

// SetupLogging sends human readable logs to w at the level the flags ask for.
func SetupLogging(w io.Writer, l Logging) {
	level := zerolog.InfoLevel
	switch {
	case l.Verbose:
		level = zerolog.DebugLevel
	case l.Quiet:
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
}

// Fatal logs err and exits with status 1.
func Fatal(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	os.Exit(1)
}
