package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pomerium/storefront/config"
	"github.com/pomerium/storefront/internal/adapter"
	"github.com/pomerium/storefront/internal/apiclient"
	"github.com/pomerium/storefront/internal/catalog"
	"github.com/pomerium/storefront/internal/credstore"
	"github.com/pomerium/storefront/internal/favorites"
	"github.com/pomerium/storefront/internal/httputil"
	"github.com/pomerium/storefront/internal/log"
	"github.com/pomerium/storefront/internal/netmon"
	"github.com/pomerium/storefront/internal/session"
	"github.com/pomerium/storefront/internal/telemetry/metrics"
	"github.com/pomerium/storefront/internal/version"
)

// app holds the components shared by every command.
type app struct {
	opts      *config.Options
	store     *credstore.Store
	session   *session.Manager
	api       *apiclient.Client
	catalog   *catalog.Repository
	favorites *favorites.Service
	monitor   *netmon.Prober
}

func newApp(ctx context.Context, opts *config.Options) (*app, error) {
	baseURL, err := opts.GetAPIBaseURL()
	if err != nil {
		return nil, err
	}

	store, err := credstore.Open(ctx, opts.SecretBackend, opts.DataDir, baseURL.String())
	if err != nil {
		return nil, fmt.Errorf("cmd/storefront: opening credential store: %w", err)
	}

	base := &http.Client{}
	if opts.InsecureSkipVerify {
		log.Warn(ctx).Msg("cmd/storefront: TLS certificate verification is disabled")
		base.Transport = httputil.GetInsecureTransport()
	}

	mgr := session.New(store,
		session.WithBaseURL(baseURL.String()),
		session.WithHTTPClient(httputil.NewLoggingClient(base, 0)),
		session.WithTimeout(opts.AuthTimeout),
		session.WithRefreshEnabled(opts.RefreshEnabled),
		session.WithUserAgent(version.UserAgent()))

	a := &app{
		opts:      opts,
		store:     store,
		session:   mgr,
		favorites: favorites.New(store.Preferences()),
	}

	apiOptions := []apiclient.Option{
		apiclient.WithHTTPClient(httputil.NewLoggingClient(base, 0)),
		apiclient.WithTimeout(opts.RequestTimeout),
		apiclient.WithAdapters(
			adapter.UserAgent(version.UserAgent()),
			adapter.Accept("application/json"),
			adapter.Auth(mgr),
		),
		apiclient.WithRefresher(session.NewRefreshCoordinator(mgr)),
	}
	if opts.ConnectivityCheckAddr != "" {
		a.monitor = netmon.NewProber(opts.ConnectivityCheckAddr,
			netmon.WithInterval(opts.ConnectivityCheckInterval))
		a.monitor.OnStatusChange(func(connected bool) {
			log.Info(ctx).Bool("connected", connected).Msg("cmd/storefront: connectivity changed")
		})
		a.monitor.Check(ctx)
		a.monitor.Start(ctx)
		apiOptions = append(apiOptions, apiclient.WithMonitor(a.monitor))
	}
	a.api = apiclient.New(baseURL.String(), apiOptions...)

	cache, err := credstore.OpenCache(opts.SecretBackend, opts.DataDir, baseURL.String())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("cmd/storefront: opening catalog cache: %w", err)
	}
	a.catalog = catalog.NewRepository(a.api,
		catalog.WithCacheTTL(opts.CatalogCacheTTL),
		catalog.WithCacheSize(opts.CatalogCacheSize),
		catalog.WithPersistence(cache))
	return a, nil
}

// Close stops the connectivity monitor and writes the metrics textfile.
func (a *app) Close() error {
	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.opts.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.opts.MetricsTextfile); err != nil {
			return fmt.Errorf("cmd/storefront: writing metrics: %w", err)
		}
	}
	return nil
}
