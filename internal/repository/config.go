package repository

// Config carries the backend table settings for repository implementations.
type Config struct {
	TableName string
	IndexName string
}

// NewConfig creates a repository config with the given table and index names.
func NewConfig(tableName, indexName string) Config {
	return Config{TableName: tableName, IndexName: indexName}.WithDefaults()
}

// WithDefaults fills in development defaults for empty fields.
func (c Config) WithDefaults() Config {
	if c.TableName == "" {
		c.TableName = "second-brain-dev"
	}
	if c.IndexName == "" {
		c.IndexName = "NoteDateIndex"
	}
	return c
}
