package mbean

import "context"

// Conn is a live session with a remote management endpoint.
type Conn interface {
	// GetAttribute reads the named attribute of an object.
	GetAttribute(ctx context.Context, name ObjectName, attribute string) (Value, error)

	// SetAttribute writes the named attribute of an object.
	SetAttribute(ctx context.Context, name ObjectName, attribute string, value interface{}) error

	// Invoke calls an operation on an object with the given typed arguments.
	Invoke(ctx context.Context, name ObjectName, operation string, args ...interface{}) (Value, error)

	// Close releases the resources held by the connection.
	Close() error
}

// Connector opens connections to an endpoint.
type Connector interface {
	Connect(ctx context.Context, endpoint string) (Conn, error)
}
