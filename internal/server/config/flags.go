package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blinkdrive/blinkauth/internal/flagx"
)

// parseFlags overlays Config fields from command-line flags:
//
//	-a string   gRPC bind address
//	-d string   PostgreSQL DSN
//	-t int      token validity, minutes (only applied when given)
//	-k string   signing key source: ephemeral | static | s3
//	-s string   signing key material for -k static
//	-p string   password scheme for new users: sha256 | argon2id
//	-m bool     run migrations on start (use -m=false to disable)
//	-u string   S3 access key
//	-w string   S3 secret key
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-o string   S3 object holding the signing key
//
// Only these flags are looked at; everything else in os.Args is ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-t", "-k", "-s", "-p", "-m", "-u", "-w", "-b", "-g", "-e", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	validity := fs.Int("t", 0, "token validity duration (in minutes), keeps the current value when unset")
	fs.StringVar(&config.KeySource, "k", config.KeySource, "signing key source")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "signing key for the static source")
	fs.StringVar(&config.PasswordScheme, "p", config.PasswordScheme, "password hashing scheme")
	fs.BoolVar(&config.RunMigrations, "m", config.RunMigrations, "run database migrations")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "w", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3KeyObject, "o", config.S3KeyObject, "S3 object holding the signing key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name != "t" {
			return
		}
		if *validity <= 0 {
			panic(fmt.Errorf("-t must be a positive number of minutes, got %d", *validity))
		}
		config.TokenValidityDuration = time.Duration(*validity) * time.Minute
	})
}
