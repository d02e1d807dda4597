package main

import (
	"fmt"
	"os"

	"github.com/amonks/pv/account"
	"github.com/amonks/pv/internal/editor"
	"github.com/amonks/pv/internal/ui"
	"github.com/spf13/cobra"
)

// login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in",
	Long: `Log in as a registered user or the built-in admin.

Missing credentials are prompted for when running interactively.
If someone is already logged in and no credentials are given, the
current session is kept.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var (
	loginUsername string
	loginPassword string
)

// register
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a user",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var (
	registerUsername string
	registerPassword string
)

// logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

// whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "Username")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Password")

	addFlagAliases(credentialFlagAliases, loginCmd, registerCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if loginUsername == "" && loginPassword == "" {
		if session, ok, err := a.sessions.Current(); err != nil {
			return err
		} else if ok {
			fmt.Fprintf(out, "Already logged in as %s\n", session.Username)
			return nil
		}
	}

	username, password, err := readCredentials(cmd, loginUsername, loginPassword)
	if err != nil {
		return err
	}
	session, err := a.sessions.Login(username, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, ui.Success("Logged in as "+session.Username))
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	username, password, err := readCredentials(cmd, registerUsername, registerPassword)
	if err != nil {
		return err
	}
	if err := a.users.Register(username, password); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Registered "+username+"; run `pv login` to continue"))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sessions.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.requireSession()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), session.Username)
	return nil
}

// readCredentials trims the flag values and prompts for missing ones when
// stdin is a terminal.
func readCredentials(cmd *cobra.Command, username, password string) (string, string, error) {
	username, password = account.TrimCredentials(username, password)
	if (username == "" || password == "") && editor.IsInteractive() {
		out := cmd.ErrOrStderr()
		var err error
		if username == "" {
			if username, err = promptLine(os.Stdin, out, "Username"); err != nil {
				return "", "", err
			}
		}
		if password == "" {
			if password, err = promptPassword(out, "Password"); err != nil {
				return "", "", err
			}
		}
		username, password = account.TrimCredentials(username, password)
	}
	if username == "" || password == "" {
		return "", "", account.ErrMissingFields
	}
	return username, password, nil
}
