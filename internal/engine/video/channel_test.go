package video

import (
	"context"
	"testing"

	"github.com/anatolykoptev/go_ytdigest/internal/engine"
	"github.com/anatolykoptev/go_ytdigest/internal/engine/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelEnricher(t *testing.T) {
	api := &fakeDataAPI{
		channelID: "UC123",
		channel:   &sources.ChannelInfo{ID: "UC123", Title: "Chan", SubscriberCount: "4200000", PublishedAt: "2010-05-06T07:08:09Z"},
	}
	got := (&ChannelEnricher{API: api}).Fetch(context.Background(), testID)
	require.NotNil(t, got)
	assert.Equal(t, engine.ChannelEnrichment{ChannelID: "UC123", Subscribers: 4200000, CreatedAt: "2010-05-06T07:08:09Z"}, *got)
}

func TestChannelEnricherAllOrNothing(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeDataAPI
	}{
		{"video lookup fails", &fakeDataAPI{videoErr: errUpstream}},
		{"video not found", &fakeDataAPI{}},
		{"channel lookup fails", &fakeDataAPI{channelID: "UC1", channelErr: errUpstream}},
		{"channel not found", &fakeDataAPI{channelID: "UC1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, (&ChannelEnricher{API: tt.api}).Fetch(context.Background(), testID))
		})
	}
}

func TestChannelEnricherDisabled(t *testing.T) {
	var nilEnricher *ChannelEnricher
	assert.Nil(t, nilEnricher.Fetch(context.Background(), testID))
	assert.Nil(t, (&ChannelEnricher{}).Fetch(context.Background(), testID))
}
