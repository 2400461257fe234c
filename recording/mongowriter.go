package recording

import (
	"context"
	"log"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScopeWriter is a ScopeWriter that stores scope records in a MongoDB
// database.
type MongoScopeWriter struct {
	clientSide *mongo.Client
	collect    *mongo.Collection
	uri        string
}

// NewMongoScopeWriter returns a new MongoScopeWriter that connects to a
// local MongoDB server by default.
func NewMongoScopeWriter() *MongoScopeWriter {
	w := &MongoScopeWriter{
		uri: "mongodb://localhost:27017",
	}
	return w
}

// SetURI sets the server and the port to connect to.
func (w *MongoScopeWriter) SetURI(uri string) {
	w.uri = uri
}

// Init connects to the MongoDB database.
func (w *MongoScopeWriter) Init() {
	var err error

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	w.clientSide, err = mongo.Connect(ctx, options.Client().ApplyURI(w.uri))
	if err != nil {
		log.Panic(err)
	}

	dbName := xid.New().String()
	log.Printf("Scopes are collected in database: %s\n", dbName)

	w.collect = w.clientSide.Database(dbName).Collection("scopes")

	w.createIndexes()
}

func (w *MongoScopeWriter) createIndexes() {
	w.createIndex("chainid", true)
	w.createIndex("name", true)
	w.createIndex("depth", true)
	w.createIndex("startus", false)
	w.createIndex("endus", false)
}

func (w *MongoScopeWriter) createIndex(key string, useHash bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var value any
	if useHash {
		value = "hashed"
	} else {
		value = 1
	}

	_, err := w.collect.Indexes().CreateOne(ctx,
		mongo.IndexModel{
			Keys: bson.D{bson.E{Key: key, Value: value}},
		},
	)
	if err != nil {
		log.Panic(err)
	}
}

// Write stores the record into the database.
func (w *MongoScopeWriter) Write(record ScopeRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := w.collect.InsertOne(ctx, record)
	if err != nil {
		log.Panic(err)
	}
}

// Flush does nothing. Records are written as they arrive.
func (w *MongoScopeWriter) Flush() {
}
