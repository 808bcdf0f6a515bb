package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/eren-998/Email-assistant/internal/config"
	"github.com/eren-998/Email-assistant/internal/render"
	"github.com/eren-998/Email-assistant/internal/services"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run: mailagent login --email <address>")

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <command...>",
		Short: "Run one natural-language command and print the reply",
		Example: `  mailagent ask "summarize my unread emails"
  mailagent ask refresh my inbox`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}

			err = rt.panel.Conversation.Submit(ctx, strings.Join(args, " "))
			if errors.Is(err, services.ErrEmptyCommand) {
				return err
			}
			// Failures are reported as an assistant message too
			if msgs := rt.panel.Conversation.Messages(); len(msgs) > 0 {
				if last := msgs[len(msgs)-1]; last.Role == services.RoleAssistant {
					fmt.Fprintln(cmd.OutOrStdout(), last.Content)
				}
			}
			return err
		},
	}
}

func newInboxCmd(opts *rootOptions) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Refresh and print the latest inbox messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}
			if err := rt.panel.Session.CheckStatus(ctx); err != nil {
				return err
			}
			if !rt.panel.Session.Current().Authenticated {
				return errNotLoggedIn
			}
			// CheckStatus already refreshed; a failure leaves an error toast
			if t, ok := rt.panel.Toasts.Current(); ok && t.Kind == services.ToastError {
				return errors.New(t.Text)
			}

			emails := rt.panel.Inbox.Emails()
			if len(emails) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No emails")
				return nil
			}
			for _, e := range emails {
				fmt.Fprintln(cmd.OutOrStdout(), render.InboxRow(e, width))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 100, "Row width in columns")
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the backend session and local settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}
			statusErr := rt.panel.Session.CheckStatus(ctx)

			sess := rt.panel.Session.Current()
			st := rt.panel.Settings.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "Backend:  %s\n", rt.cfg.Backend.URL)
			switch {
			case statusErr != nil:
				fmt.Fprintln(cmd.OutOrStdout(), "Session:  unreachable")
			case sess.Authenticated:
				fmt.Fprintf(cmd.OutOrStdout(), "Session:  logged in as %s\n", sess.UserEmail)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "Session:  logged out")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key:  %s\n", yesNo(sess.HasKey, "present", "missing"))
			fmt.Fprintf(cmd.OutOrStdout(), "Model:    %s (%s)\n", st.Model, st.Model.Label())
			fmt.Fprintf(cmd.OutOrStdout(), "Theme:    %s\n", st.Theme)
			fmt.Fprintf(cmd.OutOrStdout(), "History:  %d messages\n", len(rt.panel.Conversation.Messages()))
			return statusErr
		},
	}
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the mailbox with a Gmail app password",
		Long: `Log in to the mailbox through the backend. The app password is read
from --password or, when the flag is empty, from ` + config.EnvPassword + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(config.EnvPassword)
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("both --email and a password (--password or %s) are required", config.EnvPassword)
			}

			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}
			if err := rt.panel.Session.Login(ctx, email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s\n", rt.panel.Session.Current().UserEmail)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Gmail address")
	cmd.Flags().StringVar(&password, "password", "", "Gmail app password (prefer "+config.EnvPassword+")")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the mailbox session and clear the conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}
			err = rt.panel.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var clearLog bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print or clear the saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}

			if clearLog {
				if err := rt.panel.Conversation.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			}

			msgs := rt.panel.Conversation.Messages()
			if len(msgs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved conversation")
				return nil
			}
			for _, m := range msgs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", speaker(m.Role), m.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearLog, "clear", false, "Delete the saved conversation")
	return cmd
}

func newKeyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "key <api-key>",
		Short: "Save the Gemini API key on the backend and locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}
			if err := rt.panel.SaveAPIKey(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Settings saved! Using %s\n", rt.panel.Settings.Model())
			return nil
		},
	}
}

func newModelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "model [name]",
		Short: "List the models or select one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}

			if len(args) == 1 {
				if err := rt.panel.Settings.SetModel(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Using %s\n", rt.panel.Settings.Model())
				return nil
			}
			current := rt.panel.Settings.Model()
			for _, m := range services.Models() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-22s %s\n", yesNo(m == current, "*", " "), m, m.Label())
			}
			return nil
		},
	}
}

func newThemeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [name]",
		Short: "List the themes or select one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.load(ctx); err != nil {
				return err
			}

			if len(args) == 1 {
				if err := rt.panel.Settings.SetTheme(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Using %s\n", rt.panel.Settings.Theme())
				return nil
			}
			current := rt.panel.Settings.Theme()
			for _, t := range services.Themes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", yesNo(t == current, "*", " "), t)
			}
			return nil
		},
	}
}

func speaker(r services.Role) string {
	if r == services.RoleUser {
		return "You"
	}
	return "Agent"
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}
