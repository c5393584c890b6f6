package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"siggate/internal/groups"
	"siggate/internal/identifier"
	"siggate/internal/signalrpc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		endpoint string
		account  string
		timeout  time.Duration
	)

	svc := groups.NewService(signalrpc.New())
	opts := func() (groups.Options, error) {
		if endpoint == "" {
			return groups.Options{}, fmt.Errorf("no daemon endpoint: set --endpoint or SIGNAL_ENDPOINT")
		}
		return groups.Options{Endpoint: endpoint, Account: account, Timeout: timeout}, nil
	}

	root := &cobra.Command{
		Use:           "siggate",
		Short:         "Inspect signal-cli group membership the way the bot gate sees it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if endpoint == "" {
				endpoint = os.Getenv("SIGNAL_ENDPOINT")
			}
			if account == "" {
				account = os.Getenv("SIGNAL_ACCOUNT")
			}
		},
	}
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "signal-cli daemon base URL (defaults to SIGNAL_ENDPOINT)")
	root.PersistentFlags().StringVar(&account, "account", "", "daemon account, for multi-account daemons (defaults to SIGNAL_ACCOUNT)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-RPC timeout (default 10s)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the groups the daemon knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts()
			if err != nil {
				return err
			}
			gs, err := svc.Groups(cmd.Context(), o, true)
			if err != nil {
				return err
			}
			for _, g := range gs {
				flags := ""
				if g.IsBlocked {
					flags = " (blocked)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d members%s\n", g.ID, g.Name, len(g.Members), flags)
			}
			return nil
		},
	}

	resolve := &cobra.Command{
		Use:   "resolve <group-id>",
		Short: "Resolve a possibly lowercased group id to its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts()
			if err != nil {
				return err
			}
			canonical, err := svc.Resolve(cmd.Context(), args[0], o)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "group:"+canonical)
			return nil
		},
	}

	groupsCmd := &cobra.Command{
		Use:   "groups",
		Short: "Group directory operations",
	}
	groupsCmd.AddCommand(list, resolve)

	check := &cobra.Command{
		Use:   "check <group-id> <identity>...",
		Short: "Check whether a group contains at least one allow-listed identity",
		Long: "Runs the same membership gate the bot applies to inbound group\n" +
			"messages. Identities are allow-list entries: a phone number, a\n" +
			"uuid, or the wildcard *.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts()
			if err != nil {
				return err
			}
			ok, err := svc.IsSatisfied(cmd.Context(), args[0], args[1:], o)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "denied")
				os.Exit(1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "allowed")
			return nil
		},
	}

	gateCmd := &cobra.Command{
		Use:   "gate",
		Short: "Membership gate operations",
	}
	gateCmd.AddCommand(check)

	normalize := &cobra.Command{
		Use:   "normalize <target>...",
		Short: "Show the canonical form of phone/uuid/group targets",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, arg := range args {
				kind := "raw"
				if identifier.LooksLikeTargetID(arg) {
					kind = "id"
				} else if strings.HasPrefix(identifier.NormalizeTarget(arg), "+") {
					kind = "phone"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", arg, identifier.NormalizeTarget(arg), kind)
			}
		},
	}

	root.AddCommand(groupsCmd, gateCmd, normalize)
	return root
}
