package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/easybook/internal/app"
	"github.com/roach88/easybook/internal/model"
)

// NewServicesCommand creates the services command group.
func NewServicesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Browse the merged catalog and manage stored services",
		Long: `Browse the service catalog and manage admin-added services.

The catalog is the built-in reference services followed by services saved
with "services save" or "services import". A stored service never replaces
a built-in service with the same id.`,
	}

	cmd.AddCommand(newServicesListCommand(rootOpts))
	cmd.AddCommand(newServicesSearchCommand(rootOpts))
	cmd.AddCommand(newServicesShowCommand(rootOpts))
	cmd.AddCommand(newServicesCategoriesCommand(rootOpts))
	cmd.AddCommand(newServicesFeaturedCommand(rootOpts))
	cmd.AddCommand(newServicesSaveCommand(rootOpts))
	cmd.AddCommand(newServicesDeleteCommand(rootOpts))
	cmd.AddCommand(newServicesImportCommand(rootOpts))
	cmd.AddCommand(newServicesExportCommand(rootOpts))

	return cmd
}

func newServicesListCommand(rootOpts *RootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if category != "" {
					return out.Success(serviceList(a.Catalog.ServicesByCategory(ctx, category)))
				}
				return out.Success(serviceList(a.Catalog.AllServices(ctx)))
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only services in this category")
	return cmd
}

func newServicesSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search services by name, description or category",
		Long: `Search services by name, description or category.

The query matches case-insensitively anywhere in any of the three fields.
With --category only services of that category are considered.

Example:
  easybook services search install --category electrical`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				return out.Success(serviceList(a.Catalog.Search(ctx, query, category)))
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only services in this category")
	return cmd
}

func newServicesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				svc, ok := a.Catalog.Service(ctx, args[0])
				if !ok {
					return out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("service %s not found", args[0]), nil)
				}
				return out.Success(serviceList{svc})
			})
		},
	}
}

func newServicesCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List service categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				cats := a.Catalog.ServiceCategories(ctx)
				sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
				return out.Success(categoryList(cats))
			})
		},
	}
}

func newServicesFeaturedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: fmt.Sprintf("List services rated %.1f or higher", model.FeaturedRating),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				return out.Success(serviceList(a.Catalog.FeaturedServices(ctx)))
			})
		},
	}
}

func newServicesSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var svc model.Service
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Add or replace a stored service",
		Long: `Add or replace a stored service.

A stored service with the same id is replaced. Built-in services are never
modified; a stored service that reuses a built-in id stays hidden behind it.

Example:
  easybook services save --id roof-1 --name "Roof Repair" --category Roofing --price 300`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if !a.Catalog.SaveService(ctx, svc) {
					return out.Fail(ExitFailure, CodeRejected, fmt.Sprintf("service %q was not saved", svc.ID), nil)
				}
				return out.Success(message{Text: fmt.Sprintf("Saved service %s", svc.ID)})
			})
		},
	}

	cmd.Flags().StringVar(&svc.ID, "id", "", "service id (required)")
	cmd.Flags().StringVar(&svc.Name, "name", "", "service name (required)")
	cmd.Flags().StringVar(&svc.Description, "description", "", "description")
	cmd.Flags().StringVar(&svc.Category, "category", "", "category (required)")
	cmd.Flags().Float64Var(&svc.Price, "price", 0, "price")
	cmd.Flags().Float64Var(&svc.Rating, "rating", 0, "rating between 0 and 5")
	cmd.Flags().StringVar(&svc.Duration, "duration", "", "duration in minutes")
	cmd.Flags().BoolVar(&svc.Available, "available", true, "whether the service can be booked")
	cmd.Flags().StringSliceVar(&svc.Tags, "tag", nil, "tag (repeatable)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newServicesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if !a.Catalog.DeleteService(ctx, args[0]) {
					return out.Fail(ExitFailure, CodeInternal, fmt.Sprintf("service %s was not deleted", args[0]), nil)
				}
				return out.Success(message{Text: fmt.Sprintf("Deleted service %s", args[0])})
			})
		},
	}
}

func newServicesImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Save every service listed in a YAML file",
		Long: `Save every service listed in a YAML file.

The file holds a list of services using the same field names as the JSON
output (id, name, description, category, price, rating, duration, ...).
Invalid entries are skipped and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := readServicesFile(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read services file", err)
			}

			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				var saved, rejected []string
				for _, svc := range services {
					if a.Catalog.SaveService(ctx, svc) {
						saved = append(saved, svc.ID)
					} else {
						rejected = append(rejected, svc.ID)
					}
				}
				out.VerboseLog("imported %d of %d services from %s", len(saved), len(services), args[0])

				result := message{
					Text:   fmt.Sprintf("Imported %d services, rejected %d", len(saved), len(rejected)),
					Fields: map[string]any{"saved": saved, "rejected": rejected},
				}
				if err := out.Success(result); err != nil {
					return err
				}
				if len(rejected) > 0 {
					return NewExitError(ExitFailure, fmt.Sprintf("%d services rejected: %v", len(rejected), rejected))
				}
				return nil
			})
		},
	}
}

func newServicesExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print stored services as YAML",
		Long: `Print stored services as YAML, in the format "services import" reads.
With --format json the services are wrapped in the usual JSON envelope.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				services, err := a.Catalog.StoredServices(ctx)
				if err != nil {
					return out.Fail(ExitFailure, CodeInternal, "failed to read stored services", err)
				}
				if out.Format == "json" {
					return out.Success(services)
				}
				enc := yaml.NewEncoder(out.Writer)
				enc.SetIndent(2)
				if err := enc.Encode(services); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}
}

func readServicesFile(path string) ([]model.Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var services []model.Service
	if err := yaml.Unmarshal(data, &services); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return services, nil
}
