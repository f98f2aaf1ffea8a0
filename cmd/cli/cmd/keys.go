// Package cmd - API key management
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shipquote/core/auth"
	"shipquote/db"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "API key management",
}

var keysRegenerateCmd = &cobra.Command{
	Use:   "regenerate <user-id>",
	Short: "Issue a new API key for a user; the old key stops working",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRegenerate,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysRegenerateCmd)
}

func runKeysRegenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	profile, err := db.NewProfileStore(pool).SetAPIKey(ctx, args[0], auth.GenerateAPIKey())
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("no profile for user %s", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), profile.APIKey)
	return nil
}
