// Package cli is the trackerctl command tree. Every command runs the tracker
// engine locally against the API through httpgw.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bugtracker/internal/config"
	"bugtracker/internal/gateway"
	"bugtracker/internal/gateway/httpgw"
	"bugtracker/internal/models"
	"bugtracker/internal/service"
	"bugtracker/internal/utils"
	"bugtracker/pkg/logger"
)

var version = "dev"

func SetVersion(v string) { version = v }

// app is what PersistentPreRunE builds for the subcommands.
type app struct {
	cfg      config.Client
	log      zerolog.Logger
	actor    models.Actor
	gw       gateway.Gateway
	tickets  *service.TicketService
	projects *service.ProjectService
	comments *service.CommentService
	views    *service.Views
	now      func() time.Time
}

func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		flags   config.ClientFlags
		verbose bool
		a       = &app{now: time.Now}
	)

	root := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Command-line client for the bug tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			file := &config.Client{}
			if _, statErr := os.Stat(cfgFile); statErr == nil {
				var err error
				if file, err = config.LoadClient(cfgFile); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}
			a.cfg = file.Resolve(flags)

			env := "cli"
			if verbose {
				env = "dev"
			}
			a.log = logger.NewWithWriter(env, cmd.ErrOrStderr())
			if !verbose {
				a.log = a.log.Level(zerolog.WarnLevel)
			}

			if a.cfg.Token == "" {
				return fmt.Errorf("token is required (set in config or pass --token)")
			}
			actor, err := utils.ActorFromToken(a.cfg.Token)
			if err != nil {
				return err
			}
			a.actor = actor

			a.gw = httpgw.New(a.cfg.BaseURL, a.cfg.Token,
				httpgw.WithTimeout(a.cfg.Timeout), httpgw.WithLogger(a.log))
			a.tickets = service.NewTicketService(a.gw, a.log)
			a.projects = service.NewProjectService(a.gw, a.log)
			a.comments = service.NewCommentService(a.gw)
			a.views = service.NewViews(a.gw, a.tickets).WithClock(a.now)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "trackerctl.yaml", "config file path")
	root.PersistentFlags().StringVar(&flags.BaseURL, "base-url", "", "API base URL")
	root.PersistentFlags().StringVar(&flags.Token, "token", "", "bearer token")
	root.PersistentFlags().IntVar(&flags.PageSize, "page-size", 0, "tickets per page")
	root.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 0, "request timeout")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log API calls to stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "trackerctl %s\n", version)
			},
		},
		dashboardCmd(a),
		ticketsCmd(a),
		ticketCmd(a),
		projectsCmd(a),
		projectCmd(a),
		commentCmd(a),
		usersCmd(a),
	)
	return root
}

func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return err
	}
	return nil
}

// ids parses positional id arguments in order.
func ids(args []string, names ...string) ([]int64, error) {
	out := make([]int64, len(names))
	for i, n := range names {
		id, err := utils.ParseID(n, args[i])
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}
