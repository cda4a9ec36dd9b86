package cmd

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grovetools/idler/cli"
	"github.com/grovetools/idler/config"
	"github.com/grovetools/idler/errors"
	"github.com/grovetools/idler/logging"
	"github.com/grovetools/idler/pkg/api"
	"github.com/grovetools/idler/pkg/helper"
	"github.com/grovetools/idler/pkg/inventory"
	"github.com/grovetools/idler/pkg/library"
	"github.com/grovetools/idler/pkg/orchestrator"
	"github.com/grovetools/idler/pkg/profiling"
	"github.com/grovetools/idler/pkg/tags"
	"github.com/grovetools/idler/pkg/telemetry"
	"github.com/grovetools/idler/state"
)

// app is the object graph one command invocation works with.
type app struct {
	cfg       *config.Config
	state     *state.Store
	tags      *tags.Store
	client    *api.Client
	session   *inventory.FileSession
	cache     *inventory.Cache
	telemetry *telemetry.Aggregator
	helper    *helper.Native
	orch      *orchestrator.Orchestrator
	pretty    *logging.PrettyLogger
	logger    *logrus.Entry
	json      bool
}

// AddAppFlags registers the flags newApp reads on the root command.
func AddAppFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("steam-id", "", "Steam account id (overrides steam_id in the config)")
	flags.String("session", "", "Session id for the inventory snapshot (default $IDLER_SESSION or the parent shell)")
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if steamID, _ := cmd.Flags().GetString("steam-id"); steamID != "" {
		cfg.SteamID = steamID
	}

	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = inventory.DefaultSessionID()
	}

	st := state.Default()
	client := api.NewClient(cfg.API)
	session := inventory.NewFileSession(sessionID)

	var reporter telemetry.Reporter = client
	if !cfg.Telemetry.IsEnabled() {
		reporter = telemetry.Discard
	}
	agg := telemetry.NewAggregator(telemetry.RealClock, reporter, cfg.Telemetry.Quiescence)

	native := helper.NewNative(cfg.Helper)

	return &app{
		cfg:       cfg,
		state:     st,
		tags:      tags.NewStore(st),
		client:    client,
		session:   session,
		cache:     inventory.NewCache(client, session, st),
		telemetry: agg,
		helper:    native,
		orch:      orchestrator.New(native, agg, cfg.Helper.UtilityPath),
		pretty:    logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout()),
		logger:    cli.GetLogger(cmd),
		json:      cli.GetOptions(cmd).JSONOutput,
	}, nil
}

// close delivers pending telemetry before the process exits.
func (a *app) close() {
	a.telemetry.Flush()
}

func (a *app) steamID() (string, error) {
	if a.cfg.SteamID == "" {
		return "", errors.InvalidInput("steam_id", "set steam_id in idler.yml or pass --steam-id")
	}
	return a.cfg.SteamID, nil
}

// inventory returns the library, fetching it when the session has none.
// A cold fetch is reported as a launch.
func (a *app) inventory(ctx context.Context, refresh bool) ([]library.Item, inventory.Source, error) {
	steamID, err := a.steamID()
	if err != nil {
		return nil, inventory.SourceNone, err
	}

	defer profiling.Stage("inventory")()

	var (
		items  []library.Item
		source inventory.Source
	)
	if refresh {
		items, source = a.cache.Refresh(ctx, steamID)
	} else {
		items, source = a.cache.Inventory(ctx, steamID)
	}
	if source == inventory.SourceRemote {
		a.telemetry.ReportLaunch("launched")
	}
	return items, source, nil
}

// findItem looks appID up in the inventory. A game the inventory does not
// know keeps only its id.
func (a *app) findItem(ctx context.Context, appID int) (library.Item, error) {
	items, _, err := a.inventory(ctx, false)
	if err != nil {
		return library.Item{}, err
	}
	for _, it := range items {
		if it.AppID == appID {
			return it, nil
		}
	}
	return library.Item{AppID: appID, Name: strconv.Itoa(appID)}, nil
}

// cachedName returns the name of appID from the session snapshot, or its id
// when the snapshot is missing or does not list it. It never fetches.
func (a *app) cachedName(appID int) string {
	items, ok := a.cache.Session().Load()
	if ok {
		for _, it := range items {
			if it.AppID == appID && it.Name != "" {
				return it.Name
			}
		}
	}
	return strconv.Itoa(appID)
}

func (a *app) credentials() api.Credentials {
	blob, err := a.state.GetString(state.KeySteamCookies)
	if err != nil {
		a.logger.WithError(err).Warn("Cookie slot unreadable")
		return api.Credentials{}
	}
	return api.ParseCredentials(blob)
}

func parseAppID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errors.InvalidInput("appId", "app id must be a positive integer, got "+strconv.Quote(arg))
	}
	return id, nil
}

func parseAppIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parseAppID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
