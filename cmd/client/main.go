// Command client talks to a blinkauth server.
//
//	client [flags] register <username> [password]
//	client [flags] login <username> [password]
//	client [flags] validate <token>
//	client [flags] revoke <token>
//
// Flags (-c/-config, -a, -t) must come before the subcommand; see package
// internal/client/config. A missing password is read from the terminal
// without echo.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blinkdrive/blinkauth/internal/client"
	"github.com/blinkdrive/blinkauth/internal/client/config"
	"github.com/blinkdrive/blinkauth/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// authClient is the part of client.GRPCClient the commands use.
type authClient interface {
	Register(ctx context.Context, username, password string) (bool, error)
	Authenticate(ctx context.Context, username, password string) (string, bool, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
	RevokeToken(ctx context.Context, token string) (bool, error)
	Close() error
}

var dial = func(addr string) (authClient, error) {
	return client.NewGRPCClient(addr)
}

var errUsage = errors.New("usage: client [-c file] [-a addr] [-t seconds] register|login <username> [password] | validate|revoke <token>")

func main() {
	cfg := config.LoadConfig()
	if err := run(context.Background(), cfg, commandArgs(os.Args[1:]), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandArgs drops the leading configuration flags and their values and
// returns the subcommand with its arguments.
func commandArgs(args []string) []string {
	owned := make(map[string]bool, len(config.Flags))
	for _, f := range config.Flags {
		owned[f] = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return args[i:]
		}
		if name, _, found := strings.Cut(arg, "="); found && owned[name] {
			continue
		}
		if owned[arg] {
			i++
			continue
		}
		return args[i:]
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, rest []string, w io.Writer) error {
	if len(rest) < 2 {
		return errUsage
	}
	cmd, arg := rest[0], rest[1]

	c, err := dial(cfg.ServerEndpointAddr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.ServerEndpointAddr, err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.CallTimeout)
	defer cancel()

	switch cmd {
	case "register":
		password, err := passwordArg(rest, w)
		if err != nil {
			return err
		}
		ok, err := c.Register(ctx, arg, password)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("registration refused for %q", arg)
		}
		fmt.Fprintf(w, "registered %s\n", arg)

	case "login":
		password, err := passwordArg(rest, w)
		if err != nil {
			return err
		}
		token, ok, err := c.Authenticate(ctx, arg, password)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("invalid username or password")
		}
		fmt.Fprintln(w, token)

	case "validate":
		ok, err := c.ValidateToken(ctx, arg)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(w, "valid")
		} else {
			fmt.Fprintln(w, "invalid")
		}

	case "revoke":
		ok, err := c.RevokeToken(ctx, arg)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(w, "revoked")
		} else {
			fmt.Fprintln(w, "unknown token")
		}

	default:
		return errUsage
	}

	return nil
}

func passwordArg(rest []string, w io.Writer) (string, error) {
	if len(rest) > 2 {
		return rest[2], nil
	}
	fmt.Fprint(w, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}
