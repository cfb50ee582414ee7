package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/signup/pkg/storage"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	apiURL      string
	driver      string
	databaseURL string
}

// NewRootCommand creates the signup-cli command tree reading from in and
// writing to out
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "signup-cli",
		Short:         "Subscription sign-up CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("SIGNUP_API_URL", "http://localhost:3001"), "sign-up API base URL")
	root.PersistentFlags().StringVar(&opts.driver, "driver", envOr("SIGNUP_DATABASE_DRIVER", storage.DriverPostgres), "database driver (postgres, sqlite3)")
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", envOr("SIGNUP_DATABASE_URL", os.Getenv("DATABASE_URL")), "database connection URL")

	root.AddCommand(wizardCmd(opts), migrateCmd(opts), seedCmd(opts))
	return root
}

// Execute runs the CLI on the process arguments and standard streams
func Execute() error {
	return NewRootCommand(os.Stdin, os.Stdout).Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *globalOptions) storageConfig() storage.Config {
	cfg := storage.DefaultConfig()
	cfg.Driver = o.driver
	cfg.DSN = o.databaseURL
	return cfg
}
