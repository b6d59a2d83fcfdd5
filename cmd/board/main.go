// Command board prints the ticket board in a terminal and mints refresh tokens
// for the API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lorrc/ticket-board/internal/adapters/primary/terminal"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/memory"
	"github.com/lorrc/ticket-board/internal/adapters/secondary/remote"
	"github.com/lorrc/ticket-board/internal/auth"
	"github.com/lorrc/ticket-board/internal/config"
	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/lorrc/ticket-board/internal/core/services"
	"github.com/lorrc/ticket-board/internal/infrastructure/logging"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run executes the command line against the given streams.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "board",
		Short:         "Ticket board in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	newLogger := func() *slog.Logger {
		return logging.NewLogger(logging.Config{
			Level:  logLevel,
			Format: "console",
			Output: stderr,
		})
	}

	root.AddCommand(newShowCommand(stdout, newLogger), newTokenCommand(stdout))
	return root
}

type showOptions struct {
	file     string
	url      string
	grouping string
	ordering string
	locale   string
	width    int
	timeout  time.Duration
}

func newShowCommand(stdout io.Writer, newLogger func() *slog.Logger) *cobra.Command {
	cfg := config.FromEnv()
	opts := showOptions{
		url:      cfg.Remote.URL,
		grouping: cfg.Board.DefaultGrouping,
		ordering: cfg.Board.DefaultOrdering,
		locale:   cfg.Board.Locale,
		timeout:  cfg.Remote.Timeout,
	}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch tickets and print the board",
		Example: "  board show --grouping user --ordering title\n" +
			"  board show --file tickets.json --grouping priority",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd.Context(), opts, stdout, newLogger())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "read tickets from a JSON file instead of the API")
	flags.StringVar(&opts.url, "url", opts.url, "ticket API URL")
	flags.StringVarP(&opts.grouping, "grouping", "g", opts.grouping, "group by: "+strings.Join(domain.GroupingNames(), ", "))
	flags.StringVarP(&opts.ordering, "ordering", "o", opts.ordering, "order by: "+strings.Join(domain.OrderingNames(), ", "))
	flags.StringVar(&opts.locale, "locale", opts.locale, "BCP 47 locale used to compare titles")
	flags.IntVar(&opts.width, "width", 0, "output width (default: terminal width)")
	flags.DurationVar(&opts.timeout, "timeout", opts.timeout, "API request timeout")

	return cmd
}

func runShow(ctx context.Context, opts showOptions, stdout io.Writer, logger *slog.Logger) error {
	grouping, err := domain.ParseGrouping(opts.grouping)
	if err != nil {
		return err
	}
	ordering, err := domain.ParseOrdering(opts.ordering)
	if err != nil {
		return err
	}
	locale, err := domain.ParseLocale(opts.locale)
	if err != nil {
		return err
	}

	var source ports.SnapshotSource
	if opts.file != "" {
		source = remote.FileSource{Path: opts.file}
	} else {
		source = remote.NewClient(opts.url, opts.timeout, logger)
	}

	board := services.NewBoardService(source, memory.NewSnapshotStore(), nil, services.BoardServiceConfig{
		Orderer: domain.NewOrderer(locale),
	}, logger)

	if _, err := board.Refresh(ctx); err != nil {
		return err
	}

	view, err := board.View(ctx, domain.ViewOptions{Grouping: grouping, Ordering: ordering})
	if err != nil {
		return err
	}

	width := opts.width
	if width <= 0 {
		width = terminalWidth(stdout)
	}

	_, err = io.WriteString(stdout, terminal.NewRenderer(stdout, terminal.WithWidth(width)).Render(view))
	return err
}

// terminalWidth reports the width of w when it is a terminal, else zero.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func newTokenCommand(stdout io.Writer) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for POST /api/v1/board/refresh",
		Long:  "Mint a bearer token signed with JWT_SECRET and valid for JWT_TOKEN_TTL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromEnv()
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL).GenerateToken(subject)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			_, err = fmt.Fprintln(stdout, token)
			return err
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "who the token is issued to")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
