package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxAgentNameLength is the maximum length for agent names.
	MaxAgentNameLength = 255

	// MaxFolderAddressLength bounds the "/"-joined folder address accepted in
	// query parameters. Longer addresses indicate overly deep hierarchies.
	MaxFolderAddressLength = 2048

	// MaxBatchItems caps the number of updates per entity type in a single
	// batch request.
	MaxBatchItems = 1000

	// DefaultBatchConcurrency is the number of row updates issued at once when
	// applying a batch.
	DefaultBatchConcurrency = 16
)
