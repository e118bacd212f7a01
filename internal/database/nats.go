package database

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// ConnectNats establishes a NATS connection for cross-service notifications.
// An empty URL disables messaging and returns a nil connection.
func ConnectNats(url, name string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return conn, nil
}
