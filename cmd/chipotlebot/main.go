// Command chipotlebot drives a full ordering flow end to end: browser
// login, store search, order assembly over the REST API, a mirror of the
// order into the web app's state, and a UI-driven checkout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chipotlebot/lib/chipotle"
	"chipotlebot/lib/configutil"
	"chipotlebot/lib/telemetry"

	"github.com/spf13/cobra"
)

type Config struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Headless bool   `json:"headless"`

	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`

	MealName string                  `json:"meal_name"`
	Entree   chipotle.OrderEntree    `json:"entree"`
	Sides    []chipotle.OrderContent `json:"sides"`
	Drinks   []chipotle.OrderContent `json:"drinks"`
	Utensils bool                    `json:"utensils"`

	CardLastFour string `json:"card_last_four"`
}

var (
	configPath *string
	headless   *bool
)

var rootCmd = &cobra.Command{
	Use:   "chipotlebot",
	Short: "chipotlebot logs into a Chipotle account, builds an order and checks it out.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configutil.ReadConfig[Config](*configPath)
		if err != nil {
			return fmt.Errorf("read config %s: %w", *configPath, err)
		}
		if cmd.Flags().Changed("headless") {
			config.Headless = *headless
		}
		return run(cmd.Context(), config)
	},
	SilenceUsage: true,
}

func init() {
	configPath = rootCmd.Flags().String("config", "config.json5", "Path to the ordering config.")
	headless = rootCmd.Flags().Bool("headless", false, "Run the browser headless.")
}

func run(ctx context.Context, config Config) error {
	tel, err := telemetry.SetupFromEnv(ctx, "chipotlebot")
	if err == nil {
		defer tel.Shutdown(context.Background())
	} else if !os.IsNotExist(err) {
		return err
	}

	client, err := chipotle.New(ctx, chipotle.Options{Headless: config.Headless})
	if err != nil {
		return err
	}
	defer client.Close()

	err = client.Login(ctx, config.Email, config.Password, 5)
	if errors.Is(err, chipotle.ErrTwoFactorRequired) {
		return fmt.Errorf("the account asked for two-step verification; resolve it in a browser and rerun: %w", err)
	}
	if err != nil {
		return err
	}

	restaurants, err := client.SearchRestaurants(ctx, config.Latitude, config.Longitude, config.RadiusMeters)
	if err != nil {
		return err
	}
	if len(restaurants) == 0 {
		return fmt.Errorf("no open stores within %dm", config.RadiusMeters)
	}
	store := restaurants[0]
	slog.InfoContext(ctx, "picked store",
		"name", store.RestaurantName, "number", store.RestaurantNumber, "distance", store.Distance)

	menu, err := client.GetMenu(ctx, store.RestaurantNumber)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "fetched menu", "entrees", len(menu.Entrees))

	order, etag, err := client.CreateOrder(ctx, store.RestaurantNumber)
	if err != nil {
		return err
	}

	meal, etag, err := client.AddMeal(ctx, order.OrderID, etag, config.MealName,
		[]chipotle.OrderEntree{config.Entree}, config.Sides, config.Drinks)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "added meal", "meal_id", meal.MealID)

	latest := &meal.Order
	if config.Utensils {
		utensils, newTag, err := client.AddUtensils(ctx, order.OrderID, etag)
		if err != nil {
			return err
		}
		etag = newTag
		latest = &utensils.Order
		slog.InfoContext(ctx, "added utensils", "item_id", utensils.NonFoodItemID)
	}

	if err := client.MirrorToBrowser(ctx, etag, latest); err != nil {
		return err
	}

	times, err := client.GetPickupTimes(ctx, store.RestaurantNumber)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("store %d has no pickup slots", store.RestaurantNumber)
	}

	wallet, err := client.GetWallet(ctx)
	if err != nil {
		return err
	}
	if len(wallet) == 0 {
		return fmt.Errorf("no saved payment methods on this account")
	}

	result, err := client.CheckoutViaUI(ctx, times[0], config.CardLastFour)
	if err != nil {
		return err
	}

	if result.JSON != nil {
		pretty, _ := json.MarshalIndent(result.JSON, "", "  ")
		fmt.Println(string(pretty))
	} else {
		fmt.Println(result.Text)
	}
	slog.InfoContext(ctx, "checkout finished", "status", result.Status)
	return nil
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	return ctx
}

func main() {
	if err := rootCmd.ExecuteContext(signalContext()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
