package constants

// Application constants
const (
	// AppName is the program name shown by the CLI and the server
	AppName = "profilegraph"
	// Version is the release version
	Version = "0.3.0"
)

// Storage constants
const (
	// DefaultDBName is the fixed name of the local database file
	DefaultDBName = "profiles.sqlite"
	// DefaultLogFile receives CLI logs so stdout only carries command output
	DefaultLogFile = "profiles.log"
)

// Backend names
const (
	BackendSQLite = "sqlite"
	BackendNeo4j  = "neo4j"
)

// Profile field limits
const (
	// NameMaxLength is the exclusive upper bound on firstname/lastname length
	NameMaxLength = 100
	// AttributeMaxLength is the inclusive upper bound on phone/dob length
	AttributeMaxLength = 100
)
