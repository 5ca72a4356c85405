package constants

import "time"

// Unreal editor command socket defaults.
const (
	DefaultUnrealHost = "127.0.0.1"
	DefaultUnrealPort = 55557

	// RecvChunkSize is the read size used while accumulating a response.
	RecvChunkSize = 4096
	// MaxResponseBytes bounds a single response document (16MB).
	MaxResponseBytes = 16 * 1024 * 1024

	DefaultDialTimeout = 5 * time.Second
	// DefaultIOTimeout of zero keeps reads unbounded; the editor can take
	// a long time to compile large blueprints.
	DefaultIOTimeout = 0 * time.Second
)

// Bridge defaults
const (
	DefaultBridgeListen   = "127.0.0.1:8095"
	DefaultEngineListen   = "127.0.0.1:55557"
	DefaultBridgeRPS      = 0
	DefaultBridgeBurst    = 10
	DefaultStreamClients  = 100
	WebSocketWriteTimeout = 5 * time.Second
)
