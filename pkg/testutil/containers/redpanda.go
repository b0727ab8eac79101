//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcredpanda "github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// RedpandaContainer wraps a Kafka-compatible Redpanda broker.
type RedpandaContainer struct {
	Container testcontainers.Container
	Broker    string
}

// NewRedpandaContainer starts Redpanda and creates the given topic.
func NewRedpandaContainer(t *testing.T, topic string) *RedpandaContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcredpanda.Run(ctx, "redpandadata/redpanda:v24.2.1")
	if err != nil {
		t.Fatalf("start redpanda container: %v", err)
	}

	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("get redpanda broker: %v", err)
	}

	client, err := kgo.NewClient(kgo.SeedBrokers(broker))
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("create kafka client: %v", err)
	}
	defer client.Close()

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopics(ctx, 1, 1, nil, topic); err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("create topic %s: %v", topic, err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	return &RedpandaContainer{Container: container, Broker: broker}
}
