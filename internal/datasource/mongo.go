package datasource

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"enricher/internal/common"
	"enricher/internal/errs"
	"enricher/internal/logs"
)

// MongoConfig configures a MongoDB client.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// OpenMongo connects to MongoDB and pings the server.
func OpenMongo(ctx context.Context, cfg MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, errs.ErrConfiguration.WithMsg("mongodb uri is empty")
	}

	logger = logs.OrDefault(logger)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("open mongodb success",
		zap.String("uri", cfg.URI),
		zap.String("database", cfg.Database),
	)

	return client, nil
}

// CollectionDef describes a collection container.
type CollectionDef struct {
	Namespace  string `mapstructure:"namespace"`
	Collection string `mapstructure:"collection"`
	KeyField   string `mapstructure:"key_field"`
}

// Collection serves the documents of a MongoDB collection by key field.
type Collection struct {
	coll   *mongo.Collection
	def    CollectionDef
	logger *zap.Logger
}

// NewCollection creates a Collection container. KeyField defaults to "_id".
func NewCollection(db *mongo.Database, def CollectionDef, logger *zap.Logger) (*Collection, error) {
	switch {
	case db == nil:
		return nil, errs.ErrConfiguration.WithMsg("collection %q: nil database", def.Namespace)
	case def.Namespace == "":
		return nil, errs.ErrConfiguration.WithMsg("collection %q: empty namespace", def.Collection)
	case def.Collection == "":
		return nil, errs.ErrConfiguration.WithMsg("collection container %q: empty collection name", def.Namespace)
	}

	if def.KeyField == "" {
		def.KeyField = "_id"
	}

	return &Collection{
		coll:   db.Collection(def.Collection),
		def:    def,
		logger: logs.OrDefault(logger).Named("collection").With(zap.String("namespace", def.Namespace)),
	}, nil
}

func (c *Collection) Namespace() string { return c.def.Namespace }

func (c *Collection) Get(ctx context.Context, keys []any) (map[any]any, error) {
	keys = common.UniqueComparable(keys)
	if len(keys) == 0 {
		return map[any]any{}, nil
	}

	cursor, err := c.coll.Find(ctx, inFilter(c.def.KeyField, keys))
	if err != nil {
		return nil, errs.ErrDispatch.WithMsg("find in %s", c.def.Collection).WithCause(err)
	}

	var docs []bson.M
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errs.ErrDispatch.WithMsg("decode %s", c.def.Collection).WithCause(err)
	}

	idx := newKeyIndex(keys)
	out := make(map[any]any, len(docs))

	for _, doc := range docs {
		k, ok := idx.lookup(doc[c.def.KeyField])
		if !ok {
			c.logger.Debug("document key not requested", zap.Any("key", doc[c.def.KeyField]))
			continue
		}

		out[k] = map[string]any(doc)
	}

	return out, nil
}

func inFilter(field string, keys []any) bson.M {
	return bson.M{field: bson.M{"$in": keys}}
}
