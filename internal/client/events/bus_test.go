package events

import (
	"testing"

	"github.com/dmitrijs2005/drivesync/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FiltersByKind(t *testing.T) {
	b := NewBus()

	var all, stops []models.Event
	b.Subscribe(func(e models.Event) { all = append(all, e) })
	b.Subscribe(func(e models.Event) { stops = append(stops, e) }, models.EventStopTransfer)

	b.Publish(models.Event{Kind: models.EventPauseTransfer, FileID: "f1"})
	b.Publish(models.Event{Kind: models.EventStopTransfer, FileID: "f1"})

	assert.Len(t, all, 2)
	require.Len(t, stops, 1)
	assert.Equal(t, "f1", stops[0].FileID)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()

	n := 0
	unsub := b.Subscribe(func(models.Event) { n++ })
	b.Publish(models.Event{Kind: models.EventDownloadDone})
	require.Equal(t, 1, b.Len())

	unsub()
	unsub()
	b.Publish(models.Event{Kind: models.EventDownloadDone})

	assert.Equal(t, 1, n)
	assert.Equal(t, 0, b.Len())
}

func TestBus_UnsubscribeFromHandler(t *testing.T) {
	b := NewBus()

	var unsub func()
	n := 0
	unsub = b.Subscribe(func(models.Event) {
		n++
		unsub()
	})

	b.Publish(models.Event{Kind: models.EventDownloadStart})
	b.Publish(models.Event{Kind: models.EventDownloadStart})
	assert.Equal(t, 1, n)
}

func TestBus_ChannelDropsWhenFull(t *testing.T) {
	b := NewBus()

	ch, unsub := b.Channel(1, models.EventDownloadDone)
	defer unsub()

	b.Publish(models.Event{Kind: models.EventDownloadDone, FileID: "a"})
	b.Publish(models.Event{Kind: models.EventDownloadDone, FileID: "b"})
	b.Publish(models.Event{Kind: models.EventDownloadErr, FileID: "c"})

	require.Len(t, ch, 1)
	assert.Equal(t, "a", (<-ch).FileID)
	assert.Equal(t, uint64(1), b.Dropped(), "filtered kinds are not counted")
}
