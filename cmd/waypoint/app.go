package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/metrics"
	"github.com/aretw0/waypoint/pkg/adapters/file"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/process"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/adapters/simulator"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
)

// robot is a sensor that also executes.
type robot interface {
	ports.Sensor
	ports.Executor
}

// app holds what every command builds from flags and configuration.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	engine  *waypoint.Engine
	metrics *metrics.Collectors
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if mapPath, _ := cmd.Flags().GetString("map"); mapPath != "" {
		cfg.Map.Path = mapPath
	}
	if v, _ := cmd.Flags().GetCount("verbose"); v > cfg.Planner.Verbosity {
		cfg.Planner.Verbosity = v
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), level, cfg.Log.JSON)

	collectors := metrics.New(true)
	opts := []waypoint.Option{
		waypoint.WithLogger(logger),
		waypoint.WithVerbosity(cfg.Planner.Verbosity),
		waypoint.WithMaxDepth(cfg.Planner.MaxDepth),
		waypoint.WithHooks(collectors.Hooks()),
	}
	if cfg.Map.Path != "" {
		opts = append(opts, waypoint.WithMapFile(cfg.Map.Path))
	}
	eng, err := waypoint.New(opts...)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, engine: eng, metrics: collectors}, nil
}

// robot returns the process driver when one is configured, the simulator otherwise.
func (a *app) robot() (robot, error) {
	if path := a.cfg.Driver.Path; path != "" {
		file, err := process.LoadDriver(path)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Using process driver", "config", path)
		return process.NewDriver(
			process.WithConfig(file),
			process.WithBaseDir(filepath.Dir(path)),
			process.WithLogger(a.logger),
		), nil
	}

	opts := []simulator.Option{
		simulator.WithLogger(a.logger),
		simulator.WithStepDelay(a.cfg.Simulator.StepDelay),
	}
	if a.cfg.Simulator.Dynamic {
		opts = append(opts, simulator.WithReshuffle(a.cfg.Simulator.ReshuffleProbability, a.cfg.Simulator.Seed))
	}
	return simulator.New(a.engine.Map(), opts...), nil
}

// sessions records missions in redis when configured, in a directory when one is set,
// and in memory otherwise. The returned function releases the backend.
func (a *app) sessions(ctx context.Context) (*session.Manager, func(), error) {
	var (
		store   ports.MissionStore
		opts    = []session.Option{session.WithLogger(a.logger)}
		release = func() {}
	)

	switch rc := a.cfg.Redis; {
	case rc.Addr != "":
		rs := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
		if err := rs.Ping(ctx); err != nil {
			rs.Client().Close()
			return nil, nil, fmt.Errorf("redis %s: %w", rc.Addr, err)
		}
		a.logger.Info("Using redis mission store", "addr", rc.Addr)
		store = rs
		release = func() { rs.Client().Close() }
		opts = append(opts,
			session.WithLocker(redis.NewLocker(rs.Client(), "waypoint:lock:")),
			session.WithLockTTL(rc.LockTTL),
		)
	case a.cfg.Store.Dir != "":
		a.logger.Info("Using file mission store", "dir", a.cfg.Store.Dir)
		store = file.NewStore(a.cfg.Store.Dir)
	default:
		store = memory.NewStore()
	}

	if a.cfg.Store.Key != "" {
		key, err := middleware.ParseKey(a.cfg.Store.Key)
		if err != nil {
			release()
			return nil, nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			release()
			return nil, nil, err
		}
		store = middleware.Chain(store, mw)
	}
	return session.NewManager(store, opts...), release, nil
}
