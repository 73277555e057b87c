package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ochronus/gogett/internal/app"
	"github.com/ochronus/gogett/internal/config"
	"github.com/ochronus/gogett/internal/utils"
)

const version = "0.3.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cli struct {
	configPath string
	prompter   *utils.Prompter
}

func newRootCmd() *cobra.Command {
	// Get default config path
	defaultConfigPath, err := config.DefaultConfigPath()
	if err != nil {
		defaultConfigPath = "./config.toml"
	}

	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "gogett",
		Short:         "Ge.tt command line client",
		Long:          "List, upload and download files shared on Ge.tt.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", defaultConfigPath, "Path to config file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gogett version %s\n", version)
		},
	}

	generateConfigCmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return utils.GenerateConfig(c.configPath, c.getPrompter(cmd))
		},
	}

	rootCmd.AddCommand(
		c.sharesCmd(),
		c.shareCmd(),
		c.fileCmd(),
		c.catCmd(),
		c.uploadCmd(),
		c.downloadCmd(),
		c.createShareCmd(),
		c.destroyShareCmd(),
		c.rmCmd(),
		c.whoamiCmd(),
		generateConfigCmd,
		versionCmd,
	)

	return rootCmd
}

func (c *cli) getPrompter(cmd *cobra.Command) *utils.Prompter {
	if c.prompter == nil {
		c.prompter = utils.NewPrompter(os.Stdin, cmd.ErrOrStderr())
	}
	return c.prompter
}

// container loads the configuration and builds the shared dependencies
func (c *cli) container(cmd *cobra.Command) (*app.Container, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.LoadOrEnv(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Gett.Password == "" {
		password, err := c.getPrompter(cmd).Password(fmt.Sprintf("Ge.tt password for %s: ", cfg.Gett.Email))
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Gett.Password = password
	}

	container, err := app.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build container: %w", err)
	}
	container.Logger.SetOutput(cmd.ErrOrStderr())
	container.Logger.Debugf("gogett version %s", version)

	return container, nil
}
