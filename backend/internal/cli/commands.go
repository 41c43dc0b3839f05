package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"profilegraph/backend/internal/constants"
	"profilegraph/backend/internal/state"
)

func (a *app) addProfileCommand() *cobra.Command {
	var phone, dob string

	cmd := &cobra.Command{
		Use:   "add-profile",
		Short: "Register the profile named by --first-name and --last-name",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth")

	cmd.RunE = a.run(true, func(cmd *cobra.Command, args []string) error {
		var opts []state.ProfileOption
		if cmd.Flags().Changed("phone") {
			opts = append(opts, state.WithPhone(phone))
		}
		if cmd.Flags().Changed("dob") {
			opts = append(opts, state.WithDOB(dob))
		}
		_, err := a.store.AddProfile(cmd.Context(), state.NewProfile(a.firstname, a.lastname, opts...))
		return err
	})
	return cmd
}

func (a *app) removeProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-profile",
		Short: "Remove the profile and all its friendships",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.run(true, func(cmd *cobra.Command, args []string) error {
		return a.store.RemoveProfile(cmd.Context(), a.profile())
	})
	return cmd
}

func (a *app) modifyProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify-profile <field>:<value>",
		Short: "Change one field (firstname, lastname, phone, dob, email) of the profile",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(true, func(cmd *cobra.Command, args []string) error {
		name, value, ok := strings.Cut(args[0], ":")
		if !ok {
			return fmt.Errorf("expected <field>:<value>, got %q", args[0])
		}
		field, err := state.ParseField(name)
		if err != nil {
			return fmt.Errorf("unknown field %q", name)
		}
		return a.store.ModifyProfile(cmd.Context(), a.profile(), field, value)
	})
	return cmd
}

func (a *app) addFriendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-friend <firstname>/<lastname>",
		Short: "Befriend the profile with another one",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(true, func(cmd *cobra.Command, args []string) error {
		friend, err := parseFriend(args[0])
		if err != nil {
			return err
		}
		return a.store.AddFriend(cmd.Context(), a.profile(), friend)
	})
	return cmd
}

func (a *app) removeFriendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-friend <firstname>/<lastname>",
		Short: "End a friendship",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(true, func(cmd *cobra.Command, args []string) error {
		friend, err := parseFriend(args[0])
		if err != nil {
			return err
		}
		return a.store.RemoveFriend(cmd.Context(), a.profile(), friend)
	})
	return cmd
}

func (a *app) showCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the profile and its friends",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.run(true, func(cmd *cobra.Command, args []string) error {
		p := a.profile()
		if err := a.store.GetProfile(cmd.Context(), p); err != nil {
			return err
		}
		friends, err := a.store.GetFriends(cmd.Context(), p)
		if err != nil {
			return err
		}
		printShow(cmd.OutOrStdout(), p, friends)
		return nil
	})
	return cmd
}

func (a *app) dumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every profile with its friends",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.run(false, func(cmd *cobra.Command, args []string) error {
		entries, err := a.store.Dump(cmd.Context())
		if err != nil {
			return err
		}
		printDump(cmd.OutOrStdout(), entries)
		return nil
	})
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.AppName, constants.Version)
		},
	}
}

func parseFriend(arg string) (*state.Profile, error) {
	firstname, lastname, ok := strings.Cut(arg, "/")
	if !ok {
		return nil, fmt.Errorf("expected <firstname>/<lastname>, got %q", arg)
	}
	return state.NewProfile(firstname, lastname), nil
}
