// Package cli implements the command-line client for the login service:
//
//	cli login -e user@entrelibros.com   prompts for the password, prints the session token
//	cli me -t <token>                   prints the identity behind a token
//	cli health                          checks that the server answers
//
// HTTP is used by default; --grpc switches to the gRPC endpoint.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/client/config"
	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/spf13/cobra"
)

type App struct {
	in  *bufio.Reader
	out io.Writer

	cfgFile   string
	serverURL string
	grpcAddr  string
	timeout   time.Duration

	// newClient is a seam for tests.
	newClient func(cfg *config.Config) (AuthClient, error)
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		in:        bufio.NewReader(in),
		out:       out,
		newClient: defaultClient,
	}
}

func defaultClient(cfg *config.Config) (AuthClient, error) {
	if cfg.GRPCAddr != "" {
		return newGRPCClient(cfg.GRPCAddr)
	}
	return newHTTPClient(cfg.ServerURL), nil
}

// resolveConfig loads the config file and applies the persistent flags
// that were set explicitly.
func (a *App) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = a.serverURL
	}
	if flags.Changed("grpc") {
		cfg.GRPCAddr = a.grpcAddr
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	return cfg, nil
}

func (a *App) withClient(cmd *cobra.Command, fn func(ctx context.Context, c AuthClient) error) error {
	cfg, err := a.resolveConfig(cmd)
	if err != nil {
		return err
	}

	c, err := a.newClient(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	return fn(ctx, c)
}

// RootCommand builds the command tree.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cli",
		Short:         "EntreLibros login client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.out)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "path to JSON config file")
	pf.StringVarP(&a.serverURL, "server", "s", "", "HTTP API base URL")
	pf.StringVarP(&a.grpcAddr, "grpc", "g", "", "gRPC address; switches transport to gRPC")
	pf.DurationVar(&a.timeout, "timeout", 0, "per-command timeout")

	root.AddCommand(a.loginCommand(), a.meCommand(), a.healthCommand())
	return root
}

func (a *App) loginCommand() *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				var err error
				if email, err = GetSimpleText(a.in, "Email", a.out); err != nil {
					return err
				}
			}

			var password []byte
			if passwordStdin {
				line, err := a.in.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = []byte(strings.TrimRight(line, "\r\n"))
			} else {
				var err error
				if password, err = GetPassword(a.out); err != nil {
					return err
				}
			}
			defer common.WipeByteArray(password)

			return a.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				s, err := c.Login(ctx, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Logged in as %s (id=%s, role=%s)\n", s.User.Email, s.User.ID, s.User.Role)
				fmt.Fprintf(a.out, "Token: %s\n", s.Token)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func (a *App) meCommand() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the identity behind a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				return fmt.Errorf("a token is required (-t)")
			}
			return a.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				id, err := c.Me(ctx, token)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "id=%s role=%s\n", id.ID, id.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "session token")
	return cmd
}

func (a *App) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, c AuthClient) error {
				if err := c.Health(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "ok")
				return nil
			})
		},
	}
}

// Run executes the command line and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := a.RootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return 1
	}
	return 0
}
