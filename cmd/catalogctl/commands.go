package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/princinho/storecatalog/admin"
	"github.com/princinho/storecatalog/form"
	"github.com/princinho/storecatalog/models"
)

func newRootCmd() *cobra.Command {
	var a *app
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage a store's product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				_ = a.log.Sync()
			}
		},
	}
	get := func() *app { return a }

	root.AddCommand(
		listCmd(get),
		toggleCmd(get, "toggle-stock", "Flip a product's in-stock flag", (*admin.Manager).ToggleStock),
		toggleCmd(get, "toggle-fast-delivery", "Flip a product's fast delivery flag", (*admin.Manager).ToggleFastDelivery),
		deleteCmd(get),
		deleteImageCmd(get),
		fbtCmd(get),
		uploadCmd(get),
		saveCmd(get),
	)
	return root
}

func listCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the store's products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := a.manager.Load(cmd.Context()); err != nil {
				return err
			}
			return printProducts(cmd.OutOrStdout(), a.manager.Products(), a.manager.CategoryNames)
		},
	}
}

func printProducts(w io.Writer, products []models.Product, categories func(models.Product) []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tIN STOCK\tFAST\tCATEGORIES")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID.Hex(),
			p.Name,
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			yesNo(p.InStock),
			yesNo(p.FastDelivery),
			strings.Join(categories(p), ", "),
		)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func toggleCmd(get func() *app, use, short string, toggle func(*admin.Manager, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <product-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggle(get().manager, cmd.Context(), args[0])
		},
	}
}

func deleteCmd(get func() *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Delete a product and its media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			a.console.yes = yes
			err := a.manager.Delete(cmd.Context(), args[0])
			if errors.Is(err, admin.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func deleteImageCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-image <product-id> <slot>",
		Short: "Remove one stored image from a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := strconv.Atoi(args[1])
			if err != nil || slot < 1 || slot > form.ImageSlots {
				return fmt.Errorf("slot must be between 1 and %d", form.ImageSlots)
			}
			a := get()
			if err := a.manager.Load(cmd.Context()); err != nil {
				return err
			}
			ed, err := a.manager.Edit(args[0], admin.EditorHooks{})
			if err != nil {
				return err
			}
			return ed.DeleteImage(cmd.Context(), slot)
		},
	}
}

func fbtCmd(get func() *app) *cobra.Command {
	fbt := &cobra.Command{
		Use:   "fbt",
		Short: "Frequently bought together configuration",
	}
	fbt.AddCommand(&cobra.Command{
		Use:   "show <product-id>",
		Short: "Print a product's bought-together configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := get().client.GetFBT(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "enabled: %s\n", yesNo(cfg.EnableFBT))
			if cfg.BundlePrice != nil {
				fmt.Fprintf(out, "bundle price: %s\n", strconv.FormatFloat(*cfg.BundlePrice, 'f', -1, 64))
			}
			if cfg.BundleDiscount != nil {
				fmt.Fprintf(out, "bundle discount: %s%%\n", strconv.FormatFloat(*cfg.BundleDiscount, 'f', -1, 64))
			}
			return printProducts(out, cfg.Products, func(models.Product) []string { return nil })
		},
	})
	return fbt
}

func uploadCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image or video and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, err := readUpload(args[0])
			if err != nil {
				return err
			}
			u, err := get().client.UploadImage(cmd.Context(), up)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func saveCmd(get func() *app) *cobra.Command {
	var file, id string
	cmd := &cobra.Command{
		Use:   "save --file product.json [--id product-id]",
		Short: "Create a product, or edit one with --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pf, err := readProductFile(file)
			if err != nil {
				return err
			}
			a := get()
			ctx := cmd.Context()

			var ed *admin.Editor
			if id != "" {
				if err := a.manager.Load(ctx); err != nil {
					return err
				}
				if ed, err = a.manager.Edit(id, admin.EditorHooks{}); err != nil {
					return err
				}
				ed.LoadFBT(ctx)
			} else {
				ed = a.manager.Create(admin.EditorHooks{})
			}

			evs, err := planEvents(ed.State(), pf, readUpload)
			if err != nil {
				return err
			}
			for _, ev := range evs {
				if err := ed.Dispatch(ev); err != nil {
					return fmt.Errorf("%T: %w", ev, err)
				}
			}
			if pf.FBT != nil {
				if err := selectFBT(ctx, ed, pf.FBT.ProductIDs); err != nil {
					return err
				}
			}

			res, err := ed.Submit(ctx)
			if err != nil {
				return err
			}
			a.log.Debug("product saved", zap.String("productId", res.Product.ID.Hex()))
			fmt.Fprintln(cmd.OutOrStdout(), res.Product.ID.Hex())
			if res.Partial() {
				return fmt.Errorf("product saved but bought-together config was not: %w", res.FBTErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "product JSON document")
	cmd.Flags().StringVar(&id, "id", "", "product to edit")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func selectFBT(ctx context.Context, ed *admin.Editor, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	byID := map[string]form.Candidate{}
	for _, c := range ed.Candidates(ctx, "") {
		byID[c.ID] = c
	}
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return fmt.Errorf("product %s is not available for bought-together", id)
		}
		if err := ed.Dispatch(form.SelectFBTProduct{Candidate: c}); err != nil {
			return err
		}
	}
	return nil
}
