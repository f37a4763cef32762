package global

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Troublor/erebus-sandwich/config"
)

var (
	mongoClient *mongo.Client
)

func MongoDbClient() *mongo.Client {
	if mongoClient != nil {
		return mongoClient
	}

	var err error
	mongoUrl := viper.GetString(config.CMongoURL.Key)
	mongoClient, err = mongo.Connect(Ctx(), options.Client().ApplyURI(mongoUrl))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err = mongoClient.Ping(Ctx(), readpref.Primary()); err != nil {
		log.Fatal().Err(err).Str("url", mongoUrl).Msg("MongoDB is unreachable")
	}
	RegisterCleanupTask(func() {
		err := mongoClient.Disconnect(Ctx())
		if err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	})
	return mongoClient
}

// FindingCollection is the collection configured to hold detected findings.
func FindingCollection() *mongo.Collection {
	return MongoDbClient().
		Database(viper.GetString(config.CMongoDatabase.Key)).
		Collection(viper.GetString(config.CMongoCollection.Key))
}
