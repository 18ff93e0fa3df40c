// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/enrolldesk/internal/app/store/audit"
	"github.com/dalemusser/enrolldesk/internal/app/store/backend"
	"github.com/dalemusser/enrolldesk/internal/app/store/viewstate"
	"github.com/dalemusser/enrolldesk/internal/app/system/timeouts"
	"github.com/dalemusser/enrolldesk/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB builds the backend client and connects the view-state store and
// the optional audit database.
//
// The backend is not dialed here: the console starts even when the API is
// down and reports it through /health. Redis and MongoDB, when configured,
// must answer a ping or startup fails.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	client, err := backend.New(appCfg.BackendURL, appCfg.BackendTimeout)
	if err != nil {
		return DBDeps{}, fmt.Errorf("backend client: %w", err)
	}
	deps.Backend = client
	logger.Info("enrollment backend configured", zap.String("backend_url", client.BaseURL()))

	if appCfg.RedisAddr != "" {
		rs := viewstate.NewRedis(viewstate.RedisConfig{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		err := rs.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = rs.Close()
			return DBDeps{}, fmt.Errorf("redis ping %s: %w", appCfg.RedisAddr, err)
		}
		deps.ViewState = rs
		logger.Info("view state in redis", zap.String("addr", appCfg.RedisAddr), zap.Int("db", appCfg.RedisDB))
	} else {
		mem := viewstate.NewMemory()
		deps.ViewState = mem
		deps.Memory = mem
		logger.Info("view state in memory")
	}

	if appCfg.MongoURI == "" {
		logger.Info("audit database disabled (no mongo_uri)")
		return deps, nil
	}

	mc, err := mongo.Connect(ctx, options.Client().
		ApplyURI(appCfg.MongoURI).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		_ = deps.ViewState.Close()
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	if err := mc.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = mc.Disconnect(context.Background())
		_ = deps.ViewState.Close()
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	deps.MongoClient = mc
	deps.MongoDatabase = mc.Database(appCfg.MongoDatabase)
	deps.Audit = audit.New(deps.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	return deps, nil
}

// EnsureSchema creates the audit collection, its validator and its indexes
// when MongoDB is in use.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Audit == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("audit collection setup failed", zap.Error(err))
		return fmt.Errorf("audit collection: %w", err)
	}
	if err := deps.Audit.EnsureIndexes(ctx); err != nil {
		logger.Error("audit index setup failed", zap.Error(err))
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}
