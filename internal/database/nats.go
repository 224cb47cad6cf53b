package database

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// ConnectNATS dials the NATS server used for background grading events.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}

	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}

	return conn, nil
}
