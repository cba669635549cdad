/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/usermgmt/apiserver/internal/db"
	"github.com/usermgmt/apiserver/internal/services"
	"github.com/usermgmt/apiserver/internal/storage"
	"github.com/usermgmt/apiserver/internal/store"
)

var snapshotKey string

// snapshotCmd groups commands that manage user snapshots in object storage.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage user snapshots in object storage",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every user to object storage as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshotService(cmd, func(snapshots *services.SnapshotService) error {
			count, err := snapshots.Export(cmd.Context(), snapshotKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d users to %s\n", count, snapshotKey)
			return nil
		})
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshotService(cmd, func(snapshots *services.SnapshotService) error {
			users, err := snapshots.Load(cmd.Context(), snapshotKey)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(users)
		})
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a stored snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshotService(cmd, func(snapshots *services.SnapshotService) error {
			err := snapshots.Delete(cmd.Context(), snapshotKey)
			if errors.Is(err, storage.ErrObjectNotFound) {
				return fmt.Errorf("snapshot %s does not exist", snapshotKey)
			}
			return err
		})
	},
}

func withSnapshotService(cmd *cobra.Command, fn func(*services.SnapshotService) error) error {
	cfg, log, err := loadConfig("snapshot")
	if err != nil {
		return err
	}
	ctx := log.WithContext(cmd.Context())

	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	objects, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer objects.Close()

	cmd.SetContext(ctx)
	return fn(services.NewSnapshotService(store.NewUserRepository(conn, cfg.Database.Driver), objects))
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	for _, c := range []*cobra.Command{snapshotExportCmd, snapshotShowCmd, snapshotDeleteCmd} {
		c.Flags().StringVar(&snapshotKey, "key", "", "object key of the snapshot")
		_ = c.MarkFlagRequired("key")
		snapshotCmd.AddCommand(c)
	}
}
