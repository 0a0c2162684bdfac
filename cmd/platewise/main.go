package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	client "github.com/platewise/platewise/client"
	"github.com/platewise/platewise/client/internal/weekdate"
)

var serviceURL string
var preferredHousehold string
var debug bool

const opTimeout = 20 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "platewise",
		Short: "Platewise CLI for household meal planning",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				os.Setenv("PLATEWISE_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	defaultURL := getEnv("PLATEWISE_SERVICE_URL", "http://localhost:3000")
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", defaultURL, "Base URL of the Platewise backend")
	defaultHousehold := getEnv("PLATEWISE_HOUSEHOLD", "")
	rootCmd.PersistentFlags().StringVar(&preferredHousehold, "household", defaultHousehold, "Preferred household name when the session is not yet bound to one")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newHouseholdCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newShopCmd())
	rootCmd.AddCommand(newRecipesCmd())

	return rootCmd
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("encode output")
		return
	}
	fmt.Println(string(out))
}

func newClient() (*client.Client, error) {
	var opts []client.Option
	if preferredHousehold != "" {
		opts = append(opts, client.WithPreferredHousehold(preferredHousehold))
	}
	return client.New(serviceURL, opts...)
}

// restoredClient loads the persisted session; most commands require one.
func restoredClient() (*client.Client, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	sess, err := c.Restore()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in, run `platewise login` first")
	}
	return c, nil
}

func opContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), opTimeout)
}

func newLoginCmd() *cobra.Command {
	var name, email, household string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a display name (dev credential exchange)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			sess, err := c.Login(ctx, name, email, household)
			if err != nil {
				log.Error().Err(err).Str("name", name).Msg("login failed")
				return err
			}
			if sess.HasHousehold() {
				fmt.Printf("Logged in as %s, household %q\n", sess.DisplayName, sess.HouseholdName)
			} else {
				fmt.Printf("Logged in as %s (no household yet)\n", sess.DisplayName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email (optional)")
	cmd.Flags().StringVar(&household, "household", "", "Household name to create or match (optional)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear persisted credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func newHouseholdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "household",
		Short: "Create, join, leave and inspect households",
	}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a household and bind the session to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			hh, err := c.CreateHousehold(ctx, name)
			if err != nil {
				return err
			}
			fmt.Printf("Household %q created (%s)\n", hh.Name, hh.ID)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "Household name (required)")
	_ = create.MarkFlagRequired("name")

	leave := &cobra.Command{
		Use:   "leave",
		Short: "Leave the active household",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			if err := c.LeaveHousehold(ctx); err != nil {
				return err
			}
			fmt.Println("Left household")
			return nil
		},
	}

	invite := &cobra.Command{
		Use:   "invite",
		Short: "Create an invitation token for the active household",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			inv, err := c.CreateInvitation(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Invitation token: %s\n", inv.Token)
			return nil
		},
	}

	var token string
	join := &cobra.Command{
		Use:   "join",
		Short: "Preview and accept an invitation token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			preview, err := c.PreviewInvitation(ctx, token)
			if err != nil {
				return err
			}
			if preview.Status != client.InvitationPending {
				fmt.Println(client.InvitationStatusMessage(preview.Status))
				return nil
			}
			hh, err := c.AcceptInvitation(ctx, token)
			if err != nil {
				return err
			}
			if hh == nil {
				return nil
			}
			fmt.Printf("Joined household %q\n", hh.Name)
			return nil
		},
	}
	join.Flags().StringVar(&token, "token", "", "Invitation token (required)")
	_ = join.MarkFlagRequired("token")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the households you belong to",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			hhs, err := c.Households(ctx)
			if err != nil {
				return err
			}
			printJSON(hhs)
			return nil
		},
	}

	cmd.AddCommand(create, leave, invite, join, list)
	return cmd
}

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Inspect and edit the weekly meal plan",
	}

	var date, slot, recipeID string
	set := &cobra.Command{
		Use:   "set",
		Short: "Assign a recipe to a (date, slot) cell",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			meals := c.Meals()
			if meals == nil {
				if _, err := c.ResolveHousehold(ctx); err != nil {
					return err
				}
				meals = c.Meals()
			}
			if err := meals.UpsertSlot(ctx, date, client.MealSlot(slot), client.Recipe{ID: recipeID}); err != nil {
				return err
			}
			fmt.Printf("Planned %s for %s %s\n", recipeID, date, slot)
			return nil
		},
	}
	set.Flags().StringVar(&date, "date", "", "ISO date, e.g. 2024-03-04 (required)")
	set.Flags().StringVar(&slot, "slot", "", "breakfast|lunch|dinner (required)")
	set.Flags().StringVar(&recipeID, "recipe-id", "", "Recipe id (required)")
	_ = set.MarkFlagRequired("date")
	_ = set.MarkFlagRequired("slot")
	_ = set.MarkFlagRequired("recipe-id")

	var rmDate, rmSlot string
	remove := &cobra.Command{
		Use:   "remove",
		Short: "Clear a (date, slot) cell",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			meals := c.Meals()
			if meals == nil {
				if _, err := c.ResolveHousehold(ctx); err != nil {
					return err
				}
				meals = c.Meals()
			}
			week, err := weekdate.WeekStart(rmDate)
			if err != nil {
				return err
			}
			if err := meals.LoadWeek(ctx, week, false); err != nil {
				return err
			}
			if err := meals.RemoveSlot(ctx, rmDate, client.MealSlot(rmSlot)); err != nil {
				return err
			}
			fmt.Printf("Cleared %s %s\n", rmDate, rmSlot)
			return nil
		},
	}
	remove.Flags().StringVar(&rmDate, "date", "", "ISO date (required)")
	remove.Flags().StringVar(&rmSlot, "slot", "", "breakfast|lunch|dinner (required)")
	_ = remove.MarkFlagRequired("date")
	_ = remove.MarkFlagRequired("slot")

	var week string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the plan for a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			meals := c.Meals()
			if meals == nil {
				if _, err := c.ResolveHousehold(ctx); err != nil {
					return err
				}
				meals = c.Meals()
			}
			weekStart, err := weekdate.WeekStart(week)
			if err != nil {
				return err
			}
			if err := meals.LoadWeek(ctx, weekStart, true); err != nil {
				return err
			}
			printJSON(meals.Slots())
			return nil
		},
	}
	show.Flags().StringVar(&week, "week", "", "Any ISO date inside the week (required)")
	_ = show.MarkFlagRequired("week")

	cmd.AddCommand(set, remove, show)
	return cmd
}

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Inspect and check off the shopping list",
	}

	var week string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the shopping list for a week",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			list := c.ShoppingList()
			if list == nil {
				if _, err := c.ResolveHousehold(ctx); err != nil {
					return err
				}
				list = c.ShoppingList()
			}
			weekStart, err := weekdate.WeekStart(week)
			if err != nil {
				return err
			}
			if err := list.Load(ctx, weekStart, true); err != nil {
				return err
			}
			printJSON(list.Items())
			return nil
		},
	}
	show.Flags().StringVar(&week, "week", "", "Any ISO date inside the week (required)")
	_ = show.MarkFlagRequired("week")

	var checkWeek, product string
	check := &cobra.Command{
		Use:   "check",
		Short: "Toggle an item's checked flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			list := c.ShoppingList()
			if list == nil {
				if _, err := c.ResolveHousehold(ctx); err != nil {
					return err
				}
				list = c.ShoppingList()
			}
			weekStart, err := weekdate.WeekStart(checkWeek)
			if err != nil {
				return err
			}
			if err := list.Load(ctx, weekStart, false); err != nil {
				return err
			}
			if err := list.ToggleChecked(ctx, product); err != nil {
				return err
			}
			fmt.Printf("Toggled %s\n", product)
			return nil
		},
	}
	check.Flags().StringVar(&checkWeek, "week", "", "Any ISO date inside the week (required)")
	check.Flags().StringVar(&product, "product", "", "Product key (required)")
	_ = check.MarkFlagRequired("week")
	_ = check.MarkFlagRequired("product")

	cmd.AddCommand(show, check)
	return cmd
}

func newRecipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Browse the recipe catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the household's recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			catalog := c.RecipeCatalog()
			if catalog == nil {
				if _, err := c.ResolveHousehold(ctx); err != nil {
					return err
				}
				catalog = c.RecipeCatalog()
			}
			if err := catalog.LoadIfNeeded(ctx); err != nil {
				return err
			}
			printJSON(catalog.Recipes())
			return nil
		},
	}

	var recipeID string
	fav := &cobra.Command{
		Use:   "fav",
		Short: "Toggle a recipe's favourite flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := restoredClient()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := opContext(cmd)
			defer cancel()

			catalog := c.RecipeCatalog()
			if catalog == nil {
				if _, err := c.ResolveHousehold(ctx); err != nil {
					return err
				}
				catalog = c.RecipeCatalog()
			}
			if err := catalog.LoadIfNeeded(ctx); err != nil {
				return err
			}
			if err := catalog.ToggleFavorite(ctx, recipeID); err != nil {
				return err
			}
			fmt.Printf("Toggled favourite for %s\n", recipeID)
			return nil
		},
	}
	fav.Flags().StringVar(&recipeID, "recipe-id", "", "Recipe id (required)")
	_ = fav.MarkFlagRequired("recipe-id")

	cmd.AddCommand(list, fav)
	return cmd
}
