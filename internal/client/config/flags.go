package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the auth server
//	-i value    online check interval: seconds ("5") or a duration ("1m")
//	-d string   local data directory
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	interval := timex.Duration{Duration: cfg.OnlineCheckInterval}
	fs.Var(&interval, "i", "online check interval (seconds or duration)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = interval.Duration
}
