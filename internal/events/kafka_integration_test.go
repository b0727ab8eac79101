//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"medfund/internal/events"
	"medfund/pkg/domain"
	"medfund/pkg/testutil/containers"
)

func TestKafkaPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	const topic = "funding-events"
	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t, topic)

	publisher, err := events.NewKafkaPublisher([]string{redpanda.Broker}, topic)
	require.NoError(t, err)
	t.Cleanup(publisher.Close)

	caseID := domain.NewCaseID()
	published := events.Event{
		Type:        events.TypeDonationRecorded,
		CaseID:      caseID,
		DonorID:     domain.NewDonorID().String(),
		AmountCents: 12_500,
		RaisedCents: 12_500,
		Timestamp:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(ctx, published))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, caseID.String(), string(records[0].Key),
		"events are keyed by case for per-case ordering")

	var got events.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, published.Type, got.Type)
	assert.Equal(t, published.AmountCents, got.AmountCents)
	assert.Equal(t, published.Timestamp, got.Timestamp)
}
