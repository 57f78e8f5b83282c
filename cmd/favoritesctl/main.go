package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tair/furniture-storefront/internal/config"
	"github.com/tair/furniture-storefront/internal/favorites/domain"
	"github.com/tair/furniture-storefront/internal/favorites/repository"
	"github.com/tair/furniture-storefront/internal/favorites/storage"
	"github.com/tair/furniture-storefront/internal/favorites/store"
	"github.com/tair/furniture-storefront/pkg/logger"
)

func main() {
	logger.InitWithWriter("favoritesctl", os.Stderr)
	logger.SetLevel("warn")

	if err := newRootCmd(openBackend).Execute(); err != nil {
		os.Exit(1)
	}
}

// opener returns the key-value backend the commands operate on
type opener func(ctx context.Context, backend string) (*repository.Backend, error)

// openBackend loads the service configuration and opens its storage. A
// non-empty backend overrides the configured one.
func openBackend(ctx context.Context, backend string) (*repository.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if backend != "" {
		cfg.Storage.Backend = backend
	}
	return repository.NewKeyValueStore(ctx, cfg)
}

func newRootCmd(open opener) *cobra.Command {
	var visitorID, backend string

	root := &cobra.Command{
		Use:           "favoritesctl",
		Short:         "Inspect and repair visitors' favorites",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&visitorID, "visitor", "", "visitor id (the visitor_id cookie value)")
	root.PersistentFlags().StringVar(&backend, "backend", "", "storage backend, overrides STORAGE_BACKEND")

	// withAdapter opens storage and hands the visitor's adapter to fn
	withAdapter := func(cmd *cobra.Command, fn func(context.Context, *storage.Adapter) error) error {
		if strings.TrimSpace(visitorID) == "" {
			return errors.New("--visitor is required")
		}
		ctx := cmd.Context()
		b, err := open(ctx, backend)
		if err != nil {
			return err
		}
		defer b.Close()

		// Commands go straight to storage; no store is hydrated
		registry, err := store.NewRegistry(b.Store, 1)
		if err != nil {
			return err
		}
		return fn(ctx, registry.Adapter(visitorID))
	}

	root.AddCommand(
		newListCmd(withAdapter),
		newExportCmd(withAdapter),
		newImportCmd(withAdapter),
		newClearCmd(withAdapter),
	)
	return root
}

type adapterRunner func(cmd *cobra.Command, fn func(context.Context, *storage.Adapter) error) error

func newListCmd(run adapterRunner) *cobra.Command {
	var query, category string
	var recent int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a visitor's favorites, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *storage.Adapter) error {
				var items []domain.FavoriteItem
				switch {
				case recent > 0:
					items = a.Recent(ctx, recent)
				case query != "":
					items = a.Search(ctx, query)
				default:
					items = a.Read(ctx)
				}
				if category != "" {
					items = slices.DeleteFunc(items, func(item domain.FavoriteItem) bool {
						return !strings.EqualFold(item.CategoryOrUnknown(), category)
					})
				}
				printItems(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only favorites whose name, category or model contain the text")
	cmd.Flags().StringVar(&category, "category", "", "only favorites of this category")
	cmd.Flags().IntVar(&recent, "recent", 0, "only the n most recently added favorites")
	return cmd
}

func printItems(w io.Writer, items []domain.FavoriteItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No favorites.")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "%-12s %-32s %-16s %s\n", item.ID, item.Name, item.CategoryOrUnknown(), item.AddedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "%d favorite(s)\n", len(items))
}

func newExportCmd(run adapterRunner) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a visitor's favorites as an export document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *storage.Adapter) error {
				w := cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(a.Export(ctx))
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "file to write, - for stdout")
	return cmd
}

func newImportCmd(run adapterRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace a visitor's favorites with an export document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading import: %w", err)
			}

			return run(cmd, func(ctx context.Context, a *storage.Adapter) error {
				res := a.Import(ctx, raw)
				if !res.Success {
					return errors.New(res.Message)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", res.Message, res.Count)
				return nil
			})
		},
	}
}

func newClearCmd(run adapterRunner) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all of a visitor's favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			return run(cmd, func(ctx context.Context, a *storage.Adapter) error {
				n := a.Count(ctx)
				if !a.Clear(ctx) {
					return errors.New("failed to clear favorites")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d favorite(s)\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
