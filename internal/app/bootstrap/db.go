// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/aboutadmin/internal/app/store/diagnostics"
	"github.com/dalemusser/aboutadmin/internal/app/system/diaglog"
	"github.com/dalemusser/aboutadmin/internal/app/system/timeouts"
	"github.com/dalemusser/aboutadmin/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB when diagnostics are persisted. With the
// log or off modes nothing is connected and DBDeps stays empty.
//
// It is the first hook WAFFLE runs after validation, so it also applies the
// configured timeouts: the connect below and EnsureSchema use Long.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeoutConfig(appCfg))

	if !diaglog.UsesDB(appCfg.DiagnosticsMode) {
		logger.Info("diagnostics not persisted; skipping MongoDB",
			zap.String("diagnostics_mode", appCfg.DiagnosticsMode))
		return DBDeps{}, nil
	}

	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Diagnostics:   diagnostics.New(db),
	}, nil
}

// EnsureSchema creates the diagnostics collection with its validator and
// indexes (including the retention TTL) when diagnostics are persisted.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Diagnostics == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("diagnostics collection setup failed", zap.Error(err))
		return fmt.Errorf("ensure diagnostics collection: %w", err)
	}
	if err := deps.Diagnostics.EnsureIndexes(ctx, appCfg.DiagnosticsRetention); err != nil {
		logger.Error("diagnostics index creation failed", zap.Error(err))
		return fmt.Errorf("ensure diagnostics indexes: %w", err)
	}
	return nil
}
