package rolodex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tarmac-project/hord"
	"github.com/tarmac-project/hord/drivers/hashmap"
	"github.com/tarmac-project/hord/drivers/redis"
)

// KVStorage implements the Storage interface using hord.Database for the
// storage backend, so the same API can run against the in-memory hashmap
// driver, a JSON file, or Redis
type KVStorage struct {
	prefix string
	db     hord.Database
}

// NewKVStorage creates a new storage client. It stores records with keys
// prefixed by 'prefix'
func NewKVStorage(db hord.Database, prefix string) *KVStorage {
	return &KVStorage{prefix, db}
}

func (c *KVStorage) key(lastName string) string {
	return fmt.Sprintf("%s_%s", c.prefix, lastName)
}

// Get will use the provided last name to read data from the data source and
// unmarshal it into a Record
func (c *KVStorage) Get(_ context.Context, lastName string) (*Record, error) {
	return c.get(c.key(lastName))
}

func (c *KVStorage) get(key string) (*Record, error) {
	if c.db == nil {
		return nil, fmt.Errorf("error missing database connection")
	}

	dataBytes, err := c.db.Get(key)
	if err != nil {
		if errors.Is(err, hord.ErrNil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting data: %w", err)
	}

	var result Record
	err = json.Unmarshal(dataBytes, &result)
	if err != nil {
		return nil, fmt.Errorf("error parsing data: %w", err)
	}

	return &result, nil
}

// GetAll will read all keys matching the prefix and use Get to read each
// element into a Record
func (c *KVStorage) GetAll(_ context.Context, filter FilterFunc) (Records, error) {
	keys, err := c.db.Keys()
	if err != nil {
		return nil, fmt.Errorf("error getting keys: %w", err)
	}

	results := Records{}
	for _, key := range keys {
		if !strings.HasPrefix(key, c.prefix) {
			continue
		}

		result, err := c.get(key)
		if err != nil {
			return nil, fmt.Errorf("error getting data: %w", err)
		}

		if filter == nil || filter(result) {
			results = append(results, result)
		}
	}

	sortRecords(results)

	return results, nil
}

// Set marshals the provided record and writes it to the database
func (c *KVStorage) Set(_ context.Context, record *Record) error {
	asBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error marshalling data: %w", err)
	}

	err = c.db.Set(c.key(record.GetID()), asBytes)
	if err != nil {
		return fmt.Errorf("error writing data to database: %w", err)
	}

	return nil
}

// Delete will delete a record by last name. It reads the record first so a
// missing key results in ErrNotFound instead of a silent no-op
func (c *KVStorage) Delete(_ context.Context, lastName string) error {
	key := c.key(lastName)

	_, err := c.get(key)
	if err != nil {
		return err
	}

	return c.db.Delete(key)
}

// NewDefaultDB creates a default in-memory KV-storage. Theoretically it should
// not error, but if it does, it panics
func NewDefaultDB() hord.Database {
	db, err := NewFileDB(hashmap.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func NewFileDB(cfg hashmap.Config) (hord.Database, error) {
	db, err := hashmap.Dial(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating database connection: %w", err)
	}

	err = db.Setup()
	if err != nil {
		return nil, fmt.Errorf("error setting up database: %w", err)
	}

	return db, nil
}

func NewRedisDB(cfg redis.Config) (hord.Database, error) {
	db, err := redis.Dial(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating database connection: %w", err)
	}

	err = db.Setup()
	if err != nil {
		return nil, fmt.Errorf("error setting up database: %w", err)
	}

	return db, nil
}
