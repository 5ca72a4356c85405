package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	var got []Event
	cancel := hub.Subscribe(TopicRunStarted, func(_ context.Context, ev Event) {
		got = append(got, ev)
	})

	hub.Publish(context.Background(), TopicRunStarted, "run-1", map[string]string{"k": "v"})
	hub.Publish(context.Background(), TopicRunFinished, "ignored", nil)
	require.Len(t, got, 1)
	require.Equal(t, "run-1", got[0].Payload)
	require.Equal(t, "v", got[0].Metadata["k"])
	require.False(t, got[0].Timestamp.IsZero())

	cancel()
	hub.Publish(context.Background(), TopicRunStarted, "run-2", nil)
	require.Len(t, got, 1)
}

func TestHubSubscribeMany(t *testing.T) {
	hub := NewHub()
	topics := map[string]int{}
	cancel := hub.SubscribeMany(RunTopics, func(_ context.Context, ev Event) {
		topics[ev.Topic]++
	})
	for _, topic := range RunTopics {
		hub.Publish(context.Background(), topic, nil, nil)
	}
	require.Equal(t, map[string]int{TopicRunStarted: 1, TopicStepFinished: 1, TopicRunFinished: 1}, topics)

	cancel()
	hub.Publish(context.Background(), TopicStepFinished, nil, nil)
	require.Equal(t, 1, topics[TopicStepFinished])
}
