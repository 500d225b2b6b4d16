package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the target platform database
	DefaultDatabasePath = "./discussion.db"

	// DefaultSourceDatabasePath is the default path for the legacy forum database
	DefaultSourceDatabasePath = "./legacy-forum.db"
)
