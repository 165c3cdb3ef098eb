// Package cli implements ticketctl, an operator tool that talks to the ticket
// service through the same client the web server uses.
package cli

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tickethub/internal/platform/config"
	"tickethub/internal/platform/logger"
	"tickethub/internal/remote"
)

// ClientFactory builds the remote client once flags are parsed.
type ClientFactory func(opts Options, log *slog.Logger) remote.Client

// Options are the global flags.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	JSON    bool
	NoColor bool
	Verbose bool
}

type app struct {
	opts      Options
	newClient ClientFactory
	client    remote.Client
	printer   *Printer
}

// DefaultClientFactory returns the HTTP client.
func DefaultClientFactory(opts Options, log *slog.Logger) remote.Client {
	return remote.NewHTTPClient(opts.BaseURL,
		remote.WithAPIKey(opts.APIKey),
		remote.WithTimeout(opts.Timeout),
		remote.WithLogger(log),
	)
}

// NewRootCommand builds the ticketctl command tree. Flag defaults come from
// the same environment variables the server reads.
func NewRootCommand(factory ClientFactory, stdout, stderr io.Writer) *cobra.Command {
	if factory == nil {
		factory = DefaultClientFactory
	}
	var remoteCfg config.Remote
	_ = config.ParseEnv(&remoteCfg)

	a := &app{newClient: factory}
	root := &cobra.Command{
		Use:   "ticketctl",
		Short: "Operate the Ghana Card ticket service",
		Long: `ticketctl verifies cards, lists ticket types and tickets, issues tickets
and submits payments against the ticket service.

Example usage:
  ticketctl verify GHA-123456789-0 --role user
  ticketctl types
  ticketctl tickets 7
  ticketctl admin --status pending
  ticketctl issue 7 2
  ticketctl pay 101 --method momo
  ticketctl audit tail --brokers localhost:9092`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := "warn"
			if a.opts.Verbose {
				level = "debug"
			}
			a.printer = NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), !a.opts.NoColor && colorsWanted())
			a.client = a.newClient(a.opts, logger.NewWithWriter(cmd.ErrOrStderr(), level))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.BaseURL, "base-url", remoteCfg.BaseURL, "ticket service base URL (REMOTE_BASE_URL)")
	flags.StringVar(&a.opts.APIKey, "api-key", remoteCfg.APIKey, "API key sent as X-API-Key (REMOTE_API_KEY)")
	flags.DurationVar(&a.opts.Timeout, "timeout", remoteCfg.Timeout, "per-call timeout")
	flags.BoolVar(&a.opts.JSON, "json", false, "print JSON instead of tables")
	flags.BoolVar(&a.opts.NoColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "log remote calls to stderr")

	root.AddCommand(
		a.verifyCommand(),
		a.typesCommand(),
		a.ticketsCommand(),
		a.adminCommand(),
		a.issueCommand(),
		a.payCommand(),
		a.auditCommand(),
	)
	return root
}

func colorsWanted() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
