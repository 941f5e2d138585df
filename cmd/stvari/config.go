package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/language"
)

const usage = `Usage: stvari [flags]

Flags:
  -d, -db <path>          SQLite database path (default: stvari.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username when none exists (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -v, -vocab <path>       category vocabulary YAML (default: built in)
  -r, -redis <host:port>  Redis address for the facet cache (default: in memory)
  -lang <tag>             collation language for alphabetical sort (default: sl)
  -rotate-secret          replace the token signing secret, logging everyone out
  -h, -help               show this help and exit

Environment:
  STVARI_REDIS_PASSWORD   Redis password
`

// config is the parsed command line.
type config struct {
	dbPath        string
	addr          string
	adminUser     string
	logPath       string
	vocabPath     string
	redisAddr     string
	redisPassword string
	lang          language.Tag
	rotateSecret  bool
}

// parseFlags parses args (without the program name). It returns flag.ErrHelp
// when help was requested.
func parseFlags(args []string, out io.Writer) (*config, error) {
	fs := flag.NewFlagSet("stvari", flag.ContinueOnError)
	fs.SetOutput(out)

	cfg := &config{redisPassword: os.Getenv("STVARI_REDIS_PASSWORD")}

	fs.StringVar(&cfg.dbPath, "db", "stvari.sqlite3", "")
	fs.StringVar(&cfg.dbPath, "d", "stvari.sqlite3", "")

	fs.StringVar(&cfg.addr, "addr", ":8080", "")
	fs.StringVar(&cfg.addr, "a", ":8080", "")

	fs.StringVar(&cfg.adminUser, "user", "Admin", "")
	fs.StringVar(&cfg.adminUser, "u", "Admin", "")

	fs.StringVar(&cfg.logPath, "log", "", "")
	fs.StringVar(&cfg.logPath, "l", "", "")

	fs.StringVar(&cfg.vocabPath, "vocab", "", "")
	fs.StringVar(&cfg.vocabPath, "v", "", "")

	fs.StringVar(&cfg.redisAddr, "redis", "", "")
	fs.StringVar(&cfg.redisAddr, "r", "", "")

	lang := fs.String("lang", "sl", "")
	fs.BoolVar(&cfg.rotateSecret, "rotate-secret", false, "")

	fs.Usage = func() { fmt.Fprint(out, usage) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	tag, err := language.Parse(*lang)
	if err != nil {
		return nil, fmt.Errorf("invalid -lang %q: %w", *lang, err)
	}
	cfg.lang = tag

	return cfg, nil
}
