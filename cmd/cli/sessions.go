package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and revoke live sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list <tenant>",
	Short: "List a tenant's live sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, cleanup, err := storeContext(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		tenant := args[0]
		kind, _ := cmd.Flags().GetString("kind")

		var records interface{}
		switch kind {
		case "access":
			records, err = registry.ListAccess(cmd.Context(), tenant)
		case "refresh":
			records, err = registry.ListRefresh(cmd.Context(), tenant)
		case "oauth":
			records, err = registry.ListOAuth(cmd.Context(), tenant)
		default:
			return fmt.Errorf("unknown session kind %q (access, refresh, oauth)", kind)
		}
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	},
}

var sessionsRevokeCmd = &cobra.Command{
	Use:   "revoke <tenant> <authType> <account>",
	Short: "Revoke an account's sessions",
	Long: `Revoke deletes the account's refresh record and every access and oauth
record under it, ending all of its live sessions.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, cleanup, err := storeContext(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		tenant, authType, account := args[0], args[1], args[2]
		if err := registry.DeleteRefresh(cmd.Context(), tenant, authType, account); err != nil {
			return err
		}
		accessDeleted, err := registry.DeleteAccessesByAccount(cmd.Context(), tenant, authType, account)
		if err != nil {
			return err
		}
		oauthDeleted, err := registry.DeleteOAuthByAccount(cmd.Context(), tenant, authType, account)
		if err != nil {
			return err
		}

		fmt.Printf("revoked: %d access record(s), %d oauth record(s)\n", accessDeleted, oauthDeleted)
		return nil
	},
}

var sessionsRevokeAccessCmd = &cobra.Command{
	Use:   "revoke-access <tenant> <authType> <account> <accessId>",
	Short: "Revoke a single access record",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, cleanup, err := storeContext(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := registry.DeleteAccess(cmd.Context(), args[0], args[1], args[2], args[3]); err != nil {
			return err
		}
		fmt.Println("access record revoked")
		return nil
	},
}

var sessionsRevokeRefreshCmd = &cobra.Command{
	Use:   "revoke-refresh <tenant> <authType> <account>",
	Short: "Revoke an account's refresh record",
	Long: `Revoke-refresh deletes only the refresh record, preventing further
rotations. Already issued access tokens keep working until they expire or
their records are revoked.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, cleanup, err := storeContext(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := registry.DeleteRefresh(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Println("refresh record revoked")
		return nil
	},
}

var sessionsRevokeOAuthCmd = &cobra.Command{
	Use:   "revoke-oauth <tenant> <authType> <account> <oauthAppId>",
	Short: "Revoke an account's session for one external application",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, cleanup, err := storeContext(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		if err := registry.DeleteOAuth(cmd.Context(), args[0], args[1], args[2], args[3]); err != nil {
			return err
		}
		fmt.Println("oauth record revoked")
		return nil
	},
}

func init() {
	sessionsListCmd.Flags().String("kind", "access", "session kind: access, refresh or oauth")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsRevokeCmd)
	sessionsCmd.AddCommand(sessionsRevokeAccessCmd)
	sessionsCmd.AddCommand(sessionsRevokeRefreshCmd)
	sessionsCmd.AddCommand(sessionsRevokeOAuthCmd)
	rootCmd.AddCommand(sessionsCmd)
}
