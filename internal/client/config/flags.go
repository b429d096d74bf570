package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blinkdrive/blinkauth/internal/flagx"
)

// Flags lists every flag the client owns, -c/-config included. Each takes a
// value.
var Flags = []string{"-a", "-t", "-c", "-config"}

// parseFlags overlays Config fields from command-line flags. -t is only
// applied when given and must be positive.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	timeout := fs.Int("t", 0, "per-call timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name != "t" {
			return
		}
		if *timeout <= 0 {
			panic(fmt.Errorf("-t must be a positive number of seconds, got %d", *timeout))
		}
		cfg.CallTimeout = time.Duration(*timeout) * time.Second
	})
}
