package constants

// Application Information
const (
	AppName    = "StreamHive"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Cache Key Prefixes
const (
	CacheKeyPrefix  = "sh:"
	CacheKeyVideo   = CacheKeyPrefix + "video:"
	CacheKeyChannel = CacheKeyPrefix + "channel:"
)
