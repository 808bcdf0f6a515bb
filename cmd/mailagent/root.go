package main

import (
	"fmt"

	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/eren-998/Email-assistant/internal/tui"
	"github.com/eren-998/Email-assistant/internal/version"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	backendURL string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mailagent",
		Short: "Terminal client for the AI email assistant",
		Long: `mailagent talks to the AI email assistant backend. It shows your inbox,
summarizes emails and runs natural-language commands against your mailbox.

Run without a subcommand to open the terminal UI.`,
		Version:      version.String(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to JSON configuration file (default: ~/.config/mailagent/config.json)")
	cmd.PersistentFlags().StringVar(&opts.backendURL, "backend", "", "Backend URL, overrides config and "+config.EnvBackendURL)

	cmd.AddCommand(
		newTUICmd(opts),
		newAskCmd(opts),
		newInboxCmd(opts),
		newStatusCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newHistoryCmd(opts),
		newKeyCmd(opts),
		newModelCmd(opts),
		newThemeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	rt, err := setup(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.NewApp(rt.panel, config.NewThemeLoader(rt.cfg.GetThemeDir()), rt.logger)
	return app.Run()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Detailed())
		},
	}
}
