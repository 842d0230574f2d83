package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stackmill/storefront/internal"
	"github.com/stackmill/storefront/internal/api"
	"github.com/stackmill/storefront/internal/events"
	"github.com/stackmill/storefront/internal/localstore"
	"github.com/stackmill/storefront/internal/service"
	"github.com/stackmill/storefront/internal/telemetry"
)

// app is the composition root: every command reaches the stores and
// services through this single wired instance.
type app struct {
	api        *api.Client
	session    *service.Session
	guestCart  service.GuestCartService
	cart       service.CartService
	merge      service.MergeService
	favourites service.FavouriteService
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	store, err := localstore.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open client storage: %w", err)
	}
	defer store.Close()

	clientID, err := ensureClientID(store)
	if err != nil {
		return fmt.Errorf("failed to establish client id: %w", err)
	}

	bus := events.NewBus()
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, clientID, logger)

	session := service.NewSession(store, apiClient, metrics, logger)
	guestCart := service.NewGuestCartService(store, apiClient, bus, metrics, logger)

	a := &app{
		api:        apiClient,
		session:    session,
		guestCart:  guestCart,
		cart:       service.NewCartService(apiClient, session, bus, metrics, logger),
		merge:      service.NewMergeService(guestCart, session, apiClient, metrics, logger),
		favourites: service.NewFavouriteService(apiClient, session, logger),
	}

	// Resume a previous session if a token is on disk.
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	return newRootCmd(a).ExecuteContext(ctx)
}

// ensureClientID returns the persistent anonymous instance id,
// minting one on first run.
func ensureClientID(store *localstore.Store) (string, error) {
	id, ok, err := store.Get(localstore.KeyClientID)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := store.Put(localstore.KeyClientID, id); err != nil {
		return "", err
	}
	return id, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "shopd",
		Short:         "Storefront client",
		Long:          "Command-line client for the storefront backend: browse products, manage the cart (anonymous or signed in), and keep favourites.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newMeCmd(a),
		newCartCmd(a),
		newFavCmd(a),
		newProductsCmd(a),
	)
	return root
}
