// articlectl is the terminal client for articledesk. Every command maps to
// one client route and passes that route's guards before it talks to the
// API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"articledesk/internal/client"
	"articledesk/internal/guard"
	"articledesk/internal/session"

	"github.com/spf13/pflag"
)

const defaultAPI = "http://localhost:8080/api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var redirect redirectError
		if errors.As(err, &redirect) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

type app struct {
	client *client.Client
	out    io.Writer
	json   bool
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var (
		apiURL    string
		tokenFile string
		asJSON    bool
	)
	flagSet := pflag.NewFlagSet("articlectl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&apiURL, "api", envOr("ARTICLECTL_API", defaultAPI), "API base URL")
	flagSet.StringVar(&tokenFile, "token-file", session.DefaultTokenPath(), "where the session token is kept")
	flagSet.BoolVar(&asJSON, "json", false, "print JSON instead of text")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(out, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printHelp(out, flagSet)
		return nil
	}

	provider := session.NewProvider(session.FileTokenStore{Path: tokenFile})
	if err := provider.Init(); err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	a := &app{client: client.New(apiURL, provider), out: out, json: asJSON}

	name, rest := flagSet.Arg(0), flagSet.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (see --help)", name)
	}
	return cmd.run(ctx, a, rest)
}

// redirectError is a guard denial: the command's route sent us elsewhere.
type redirectError struct {
	route string
	to    string
}

func (e redirectError) Error() string {
	switch e.to {
	case guard.LoginPath:
		return fmt.Sprintf("%s requires a session; run \"articlectl login\" first", e.route)
	default:
		return fmt.Sprintf("%s is not available to your role (redirected to %s)", e.route, e.to)
	}
}

// enter applies the guards of the route path resolves to.
func (a *app) enter(path string) (map[string]string, error) {
	r, params, d := guard.Resolve(a.client.Session, path)
	if !d.Allowed {
		name := r.Name
		if name == "" {
			name = path
		}
		return nil, redirectError{route: name, to: d.Redirect}
	}
	return params, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, `articlectl submits articles and reviews them.

Usage:
  articlectl [flags] <command> [args]

Commands:
`)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-12s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nFlags:\n%s", flagSet.FlagUsages())
}
