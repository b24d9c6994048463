package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scalarorg/crosschain-relayer/pkg/db/models"
	"github.com/scalarorg/crosschain-relayer/pkg/events"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const stageCollection = "stage_events"

var ErrTransferNotFound = errors.New("transfer not found")

// DatabaseAdapter stores stage transitions. Postgres is the queryable store,
// mongo an optional append-only mirror. Either client may be nil.
type DatabaseAdapter struct {
	PostgresClient *gorm.DB
	MongoClient    *mongo.Client
	MongoDatabase  *mongo.Database
}

var _ events.Sink = (*DatabaseAdapter)(nil)

func NewDatabaseAdapter(ctx context.Context, postgresDSN, mongoURI, mongoDatabase string) (*DatabaseAdapter, error) {
	adapter := &DatabaseAdapter{}
	var err error
	if postgresDSN != "" {
		if adapter.PostgresClient, err = NewPostgresClient(postgresDSN); err != nil {
			return nil, err
		}
	}
	if mongoURI != "" {
		if adapter.MongoClient, adapter.MongoDatabase, err = NewMongoClient(ctx, mongoURI, mongoDatabase); err != nil {
			return nil, err
		}
	}
	return adapter, nil
}

func NewPostgresClient(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Transfer{}, &models.StageEvent{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func NewMongoClient(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Info().Str("database", database).Msg("[DatabaseAdapter] [NewMongoClient] connected to MongoDB")
	return client, client.Database(database), nil
}

// Publish persists the transition. Failures are logged; the pipeline never waits on storage.
func (da *DatabaseAdapter) Publish(ctx context.Context, event events.StageEvent) {
	if event.TransferID == "" {
		return
	}
	if da.PostgresClient != nil {
		if err := da.SaveStageEvent(ctx, event); err != nil {
			log.Error().Err(err).Str("transferId", event.TransferID).Str("stage", string(event.Stage)).
				Msg("[DatabaseAdapter] [Publish] cannot save stage event to postgres")
		}
	}
	if da.MongoDatabase != nil {
		if _, err := da.MongoDatabase.Collection(stageCollection).InsertOne(ctx, models.NewStageDocument(event)); err != nil {
			log.Error().Err(err).Str("transferId", event.TransferID).Str("stage", string(event.Stage)).
				Msg("[DatabaseAdapter] [Publish] cannot save stage event to mongo")
		}
	}
}

// SaveStageEvent appends the transition and moves the transfer to its stage.
func (da *DatabaseAdapter) SaveStageEvent(ctx context.Context, event events.StageEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return da.PostgresClient.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.NewStageEvent(event)).Error; err != nil {
			return fmt.Errorf("failed to create stage event: %w", err)
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stage", "reason", "updated_at"}),
		}).Create(models.NewTransfer(event)).Error
		if err != nil {
			return fmt.Errorf("failed to upsert transfer: %w", err)
		}
		return nil
	})
}

func (da *DatabaseAdapter) FindTransfer(ctx context.Context, transferID string) (*models.Transfer, error) {
	var transfer models.Transfer
	err := da.PostgresClient.WithContext(ctx).Where("id = ?", transferID).First(&transfer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transfer %s: %w", transferID, err)
	}
	return &transfer, nil
}

// FindStageEvents returns the transitions of a transfer in the order they happened.
func (da *DatabaseAdapter) FindStageEvents(ctx context.Context, transferID string) ([]events.StageEvent, error) {
	if da.PostgresClient == nil {
		return da.findStageDocuments(ctx, transferID)
	}
	var rows []models.StageEvent
	err := da.PostgresClient.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("occurred_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find stage events of %s: %w", transferID, err)
	}
	result := make([]events.StageEvent, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].ToStageEvent())
	}
	return result, nil
}

func (da *DatabaseAdapter) findStageDocuments(ctx context.Context, transferID string) ([]events.StageEvent, error) {
	if da.MongoDatabase == nil {
		return nil, fmt.Errorf("no stage store configured")
	}
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cursor, err := da.MongoDatabase.Collection(stageCollection).Find(ctx, bson.M{"transfer_id": transferID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage documents of %s: %w", transferID, err)
	}
	var docs []models.StageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode stage documents: %w", err)
	}
	result := make([]events.StageEvent, 0, len(docs))
	for _, doc := range docs {
		result = append(result, events.StageEvent{
			TransferID:       doc.TransferID,
			CanonicalID:      doc.CanonicalID,
			MethodIdentifier: doc.MethodIdentifier,
			Mode:             doc.Mode,
			Stage:            events.Stage(doc.Stage),
			SourceChain:      doc.SourceChain,
			DestinationChain: doc.DestinationChain,
			Height:           doc.Height,
			LibHeight:        doc.LibHeight,
			Reason:           doc.Reason,
			Timestamp:        doc.OccurredAt,
		})
	}
	return result, nil
}

func (da *DatabaseAdapter) Close(ctx context.Context) {
	if da.PostgresClient != nil {
		if sqlDB, err := da.PostgresClient.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if da.MongoClient != nil {
		if err := da.MongoClient.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("[DatabaseAdapter] [Close] cannot disconnect from MongoDB")
		}
	}
}
