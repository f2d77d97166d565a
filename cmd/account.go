package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linguaku/linguaku/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your Linguaku account",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		p := newPrompter(cmd)
		flag, _ := cmd.Flags().GetString("email")
		email, err := p.value(flag, "Email: ")
		if err != nil {
			return err
		}
		password, err := p.ask("Password: ")
		if err != nil {
			return err
		}

		u, err := d.auth.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", u.Name, u.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Linguaku account",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		p := newPrompter(cmd)
		nameFlag, _ := cmd.Flags().GetString("name")
		emailFlag, _ := cmd.Flags().GetString("email")
		var in auth.RegisterInput
		if in.Name, err = p.value(nameFlag, "Name: "); err != nil {
			return err
		}
		if in.Email, err = p.value(emailFlag, "Email: "); err != nil {
			return err
		}
		if in.Password, err = p.ask("Password: "); err != nil {
			return err
		}
		if in.Confirm, err = p.ask("Confirm password: "); err != nil {
			return err
		}

		res, err := d.auth.Register(cmd.Context(), in)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if res.RequiresVerification || res.User == nil {
			fmt.Fprintf(out, "Account created. Check %s for a verification link, then run `linguaku login`.\n", in.Email)
			return nil
		}
		fmt.Fprintf(out, "Account created. Signed in as %s\n", res.User.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if err := d.requireSession(ctx); err != nil {
			return err
		}
		refresh, _ := cmd.Flags().GetBool("refresh")
		u, err := d.session.User(ctx)
		if refresh {
			u, err = d.auth.Refresh(ctx)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:     %s\n", u.Name)
		fmt.Fprintf(out, "Email:    %s\n", u.Email)
		fmt.Fprintf(out, "Verified: %v\n", u.Verified)
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Recover or change your password",
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot",
	Short: "Email a password reset link",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		flag, _ := cmd.Flags().GetString("email")
		email, err := newPrompter(cmd).value(flag, "Email: ")
		if err != nil {
			return err
		}
		msg, err := d.auth.ForgotPassword(cmd.Context(), email)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), orDefault(msg, "Password reset email sent."))
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset <token>",
	Short: "Set a new password with the token from the reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		p := newPrompter(cmd)
		password, err := p.ask("New password: ")
		if err != nil {
			return err
		}
		confirm, err := p.ask("Confirm password: ")
		if err != nil {
			return err
		}
		msg, err := d.auth.ResetPassword(cmd.Context(), args[0], password, confirm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), orDefault(msg, "Password has been reset."))
		return nil
	},
}

var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the password of the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if err := d.requireSession(ctx); err != nil {
			return err
		}
		p := newPrompter(cmd)
		current, err := p.ask("Current password: ")
		if err != nil {
			return err
		}
		next, err := p.ask("New password: ")
		if err != nil {
			return err
		}
		confirm, err := p.ask("Confirm password: ")
		if err != nil {
			return err
		}
		msg, err := d.auth.ChangePassword(ctx, current, next, confirm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), orDefault(msg, "Password changed."))
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
}

var profileSetNameCmd = &cobra.Command{
	Use:   "set-name <name>",
	Short: "Change your display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if err := d.requireSession(ctx); err != nil {
			return err
		}
		u, err := d.auth.UpdateProfile(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Name updated to %s\n", u.Name)
		return nil
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("email", "", "Account email")
	whoamiCmd.Flags().Bool("refresh", false, "Reload the profile from the server")
	passwordForgotCmd.Flags().String("email", "", "Account email")

	passwordCmd.AddCommand(passwordForgotCmd, passwordResetCmd, passwordChangeCmd)
	profileCmd.AddCommand(profileSetNameCmd)
}
