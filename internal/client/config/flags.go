package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/flagx"
)

var knownFlags = []string{
	"-a", "--a", "-l", "--l", "-d", "--d", "-i", "--i",
	"-log-level", "--log-level", "-log-format", "--log-format",
	"-headless", "--headless",
}

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered through flagx.FilterArgs first so flags owned by other
// loaders (-c, -e) do not trip the parser.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the reading service")
	fs.StringVar(&cfg.ListenAddr, "l", cfg.ListenAddr, "listen address of the local gateway")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "serve the gateway without the REPL")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
