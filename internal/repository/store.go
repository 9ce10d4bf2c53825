package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"legal-companion/internal/config"
	"legal-companion/internal/db"
)

// Store agrupa los repositorios del backend elegido con su cierre.
type Store struct {
	Users    UserRepository
	OTPs     OTPRepository
	Searches SearchHistoryRepository
	Pinger   db.Pinger
	close    func()
}

// Close libera la conexion del backend.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open conecta al backend indicado por STORE_BACKEND. Mongo crea sus indices
// y Postgres aplica las migraciones antes de devolver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return openMongo(ctx, cfg, logger)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	mongoStore, err := db.OpenMongo(ctx, cfg.MongoURL, cfg.MongoDBName)
	if err != nil {
		return nil, err
	}
	idxCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := mongoStore.EnsureIndexes(idxCtx); err != nil {
		_ = mongoStore.Close(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	logger.Info("mongo connected", zap.String("db", cfg.MongoDBName))

	return &Store{
		Users:    NewMongoUserRepository(mongoStore.Collection(db.UsersCollection)),
		OTPs:     NewMongoOTPRepository(mongoStore.Collection(db.OTPsCollection)),
		Searches: NewMongoSearchHistoryRepository(mongoStore.Collection(db.SearchHistoryCollection)),
		Pinger:   mongoStore,
		close: func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoStore.Close(closeCtx); err != nil {
				logger.Warn("mongo disconnect", zap.Error(err))
			}
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("postgres connected")

	return &Store{
		Users:    NewPgUserRepository(pool),
		OTPs:     NewPgOTPRepository(pool),
		Searches: NewPgSearchHistoryRepository(pool),
		Pinger:   db.PoolPinger{Pool: pool},
		close:    pool.Close,
	}, nil
}
