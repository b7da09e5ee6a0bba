package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskforge/backend/api/transport"
)

var (
	signupFullName string
	signupUsername string
	signupEmail    string
	signupPassword string
	loginPassword  string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		user, err := c.Signup(transport.SignupRequest{
			FullName: signupFullName,
			Username: signupUsername,
			Email:    signupEmail,
			Password: signupPassword,
		})
		if err != nil {
			return err
		}

		fmt.Printf("registered %s (%s)\n", user.Username, user.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Authenticate and store the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		user, err := c.Login(args[0], loginPassword)
		if err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		fmt.Printf("logged in as %s\n", user.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Close the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		logoutErr := c.Logout()
		if err := saveSession(c); err != nil {
			return err
		}
		if logoutErr != nil {
			return logoutErr
		}

		fmt.Println("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := apiClient()
		if err != nil {
			return err
		}

		user, err := c.CurrentUser()
		if err != nil {
			return err
		}
		if err := saveSession(c); err != nil {
			return err
		}

		fmt.Printf("%s <%s>", user.Username, user.Email)
		if user.FullName != "" {
			fmt.Printf(" (%s)", user.FullName)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupFullName, "full-name", "", "full name (optional)")
	signupCmd.Flags().StringVar(&signupUsername, "username", "", "username (lowercase)")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "email address")
	signupCmd.Flags().StringVar(&signupPassword, "password", "", "password")
	_ = signupCmd.MarkFlagRequired("username")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password")
	_ = loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(signupCmd, loginCmd, logoutCmd, whoamiCmd)
}
