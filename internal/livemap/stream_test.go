package livemap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDeliversLatestOnSubscribe(t *testing.T) {
	broker := NewMarkerBroker()
	broker.Publish([]Marker{{DeviceID: 1, ScreenX: 200, ScreenY: 80}})

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	select {
	case payload := <-ch:
		var markers []Marker
		require.NoError(t, json.Unmarshal(payload, &markers))
		require.Len(t, markers, 1)
		assert.Equal(t, uint(1), markers[0].DeviceID)
	default:
		t.Fatal("a fresh subscriber must receive the latest marker set")
	}
}

func TestBrokerConcurrentPublishAndUnsubscribe(t *testing.T) {
	// A publish racing a client disconnect must never send on the closed
	// channel.
	broker := NewMarkerBroker()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			broker.Publish([]Marker{{DeviceID: uint(i)}})
		}
	}()
	for i := 0; i < 500; i++ {
		ch := broker.Subscribe()
		broker.Unsubscribe(ch)
	}
	<-done
}

func TestBrokerFanOut(t *testing.T) {
	broker := NewMarkerBroker()
	first := broker.Subscribe()
	second := broker.Subscribe()
	defer broker.Unsubscribe(second)

	broker.Publish([]Marker{{DeviceID: 7}})
	assert.Len(t, <-first, len(<-second))

	broker.Unsubscribe(first)
	broker.Publish([]Marker{{DeviceID: 8}})
	select {
	case payload := <-second:
		var markers []Marker
		require.NoError(t, json.Unmarshal(payload, &markers))
		assert.Equal(t, uint(8), markers[0].DeviceID)
	default:
		t.Fatal("remaining subscriber must keep receiving")
	}
}
