package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	profileUser      string
	profileName      string
	profileAvatar    string
	profileListening string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profiles",
}

var profileLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Set a user's display fields and listening account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if profileUser == "" {
			return errors.New("--user is required")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		profile, err := a.profiles.Get(cmd.Context(), profileUser)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if cmd.Flags().Changed("display-name") {
			profile.DisplayName = profileName
		}
		if cmd.Flags().Changed("avatar-url") {
			profile.AvatarURL = profileAvatar
		}
		if cmd.Flags().Changed("listening-username") {
			profile.ListeningUsername = profileListening
		}

		if err := a.profiles.Upsert(cmd.Context(), profile, a.clock.Now()); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: name=%q avatar=%q listening=%q\n",
			profile.UserID, profile.DisplayName, profile.AvatarURL, profile.ListeningUsername)
		return nil
	},
}

func init() {
	profileLinkCmd.Flags().StringVar(&profileUser, "user", "", "user id")
	profileLinkCmd.Flags().StringVar(&profileName, "display-name", "", "leaderboard display name")
	profileLinkCmd.Flags().StringVar(&profileAvatar, "avatar-url", "", "leaderboard avatar url")
	profileLinkCmd.Flags().StringVar(&profileListening, "listening-username", "", "listening provider username")
	profileCmd.AddCommand(profileLinkCmd)
	rootCmd.AddCommand(profileCmd)
}
