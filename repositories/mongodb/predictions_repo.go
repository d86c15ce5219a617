package mongodb

import (
	// Go Internal Packages
	"context"

	// Local Packages
	models "fraud-stream/models"

	// External Packages
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PredictionsRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

func NewPredictionsRepository(client *mongo.Client, database, collection string) *PredictionsRepository {
	return &PredictionsRepository{client: client, database: database, collection: collection}
}

// InsertPredictions appends a scored batch into the collection, preserving batch order
func (r *PredictionsRepository) InsertPredictions(ctx context.Context, txs []models.ScoredTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	docs := make([]interface{}, len(txs))
	for i := range txs {
		docs[i] = txs[i]
	}

	collection := r.client.Database(r.database).Collection(r.collection)
	_, err := collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func (r *PredictionsRepository) Close() error {
	return r.client.Disconnect(context.Background())
}
