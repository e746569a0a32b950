package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize/english"
	"github.com/lehigh-university-libraries/bggsearch/internal/output"
	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the icon cache",
		Long: `The icon cache maps a game's representative image id to the icon file
downloaded for it. Entries never expire; an entry whose file has disappeared
is dropped and refetched on the next search.`,
	}

	cmd.AddCommand(newCacheListCmd(a))
	cmd.AddCommand(newCacheRemoveCmd(a))
	cmd.AddCommand(newCacheClearCmd(a))
	cmd.AddCommand(newCachePathCmd(a))

	return cmd
}

func newCacheListCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := output.ResolveFormat(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			return output.WriteEntries(cmd.OutOrStdout(), resolved, entries)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", output.FormatAuto, "Output format: auto, json, yaml or table")

	return cmd
}

func newCacheRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <image-id>...",
		Aliases: []string{"rm"},
		Short:   "Remove cached icons by representative image id",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var errs []error
			for _, key := range args {
				if err := store.Delete(cmd.Context(), key); err != nil {
					errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", key)
			}
			return errors.Join(errs...)
		},
	}
}

func newCacheClearCmd(a *app) *cobra.Command {
	var removeFiles bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			if removeFiles {
				for _, entry := range entries {
					if err := os.Remove(entry.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
						a.logger.Warn("Failed to remove icon file", "path", entry.Path, "error", err)
					}
				}
			}

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", english.Plural(len(entries), "entry", "entries"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&removeFiles, "files", false, "Also delete the cached icon files")

	return cmd
}

func newCachePathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache and icons are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			iconDir := a.cfg.Images.Dir
			if iconDir == "" {
				iconDir = os.TempDir()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\ncache:   %s\nicons:   %s\n", a.cfg.Cache.Backend, a.cfg.Cache.Path, iconDir)
			return nil
		},
	}
}
