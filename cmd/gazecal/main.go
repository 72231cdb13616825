// Command gazecal records calibration sessions and compares calibration strategies on them.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/LdDl/gaze-go/internal/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Error("gazecal failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	dbPath      string
	profilePath string
	configPath  string
	sessionID   string
	strategy    string
	folds       int
	logLevel    string
	importPath  string
	username    string
	device      string
	list        bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("gazecal", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.dbPath, "db", "gazecal.db", "path to SQLite database with calibration sessions")
	fs.StringVar(&opts.profilePath, "profile", "config/devices/ipad-mini-6.json", "path to device profile JSON")
	fs.StringVar(&opts.configPath, "config", "", "path to calibration config JSON (defaults are used when empty)")
	fs.StringVar(&opts.sessionID, "session", "", "session to evaluate (latest matching -user/-device when empty)")
	fs.StringVar(&opts.strategy, "strategy", "", "calibration strategy: mean, weighted, linear or all (config value when empty)")
	fs.IntVar(&opts.folds, "folds", 0, "cross-validation folds (config value when zero)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&opts.importPath, "import", "", "JSON array of samples or capture app CSV export to record as a new session")
	fs.StringVar(&opts.username, "user", "", "username of imported session, filter for latest session")
	fs.StringVar(&opts.device, "device", "", "device of imported session (profile name when empty), filter for latest session")
	fs.BoolVar(&opts.list, "list", false, "list stored sessions and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}
	if err := log.Init(opts.logLevel); err != nil {
		return err
	}
	app, err := newApp(opts)
	if err != nil {
		return err
	}
	defer app.close()

	if opts.list {
		return app.listSessions(stdout)
	}
	if opts.importPath != "" {
		id, err := app.importSession(opts.importPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Imported session %s\n", id)
		if opts.sessionID == "" {
			opts.sessionID = id.String()
		}
	}
	session, err := app.session(opts.sessionID)
	if err != nil {
		return err
	}
	return app.report(stdout, session)
}
