package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/scoring-service/internal/models"
	"github.com/SAP-F-2025/scoring-service/internal/utils"
)

func TestEventPublisher_PublishScoringEvent(t *testing.T) {
	logger := utils.NewDiscardLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 10}, watermill.NewSlogLogger(logger))
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "scoring-events")
	require.NoError(t, err)

	publisher := NewEventPublisher(pubSub, "scoring-events", logger)

	event := NewScoringCompletedEvent("phq-9", "user-1",
		&models.FormatDetectionResult{DetectedFormat: models.FormatNumeric, Confidence: 1},
		&models.ResultSummary{TotalParticipants: 3, ValidResults: 2, ErrorCount: 1},
	)
	require.NoError(t, publisher.PublishScoringEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()

		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, "scoring.completed", msg.Metadata.Get("event_type"))
		assert.Equal(t, "scoring-service", msg.Metadata.Get("source"))
		assert.Equal(t, "1.0", msg.Metadata.Get("version"))

		var decoded struct {
			Type string                `json:"type"`
			Data ScoringCompletedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, "scoring.completed", decoded.Type)
		assert.Equal(t, "phq-9", decoded.Data.ScaleID)
		assert.Equal(t, models.FormatNumeric, decoded.Data.DetectedFormat)
		assert.Equal(t, 1, decoded.Data.ParticipantsWithErrs)
		assert.Equal(t, 3, decoded.Data.Summary.TotalParticipants)
	case <-ctx.Done():
		t.Fatal("timed out waiting for the published message")
	}
}

func TestEventPublisher_PublishAfterClose(t *testing.T) {
	logger := utils.NewDiscardLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger))

	publisher := NewEventPublisher(pubSub, "scoring-events", logger)
	require.NoError(t, publisher.Close())

	err := publisher.PublishScoringEvent(context.Background(), NewSessionSavedEvent(&models.UploadSession{ID: "s1"}))
	assert.Error(t, err)
}

func TestNewSessionSavedEvent(t *testing.T) {
	uploadedAt := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	event := NewSessionSavedEvent(&models.UploadSession{
		ID:              "s1",
		UserID:          "user-1",
		FileName:        "upload.csv",
		SelectedScaleID: "gad-7",
		Status:          models.SessionCompleted,
		TotalResponses:  12,
		UploadedAt:      uploadedAt,
	})

	assert.Equal(t, EventSessionSaved, event.Type)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "scoring-service", event.Source)

	data, ok := event.Data.(SessionSavedEvent)
	require.True(t, ok)
	assert.Equal(t, "s1", data.SessionID)
	assert.Equal(t, "gad-7", data.ScaleID)
	assert.Equal(t, 12, data.TotalResponses)
	assert.Equal(t, uploadedAt, data.UploadedAt)
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(utils.NewDiscardLogger())

	require.NoError(t, publisher.PublishScoringEvent(context.Background(), NewScoringCompletedEvent("phq-9", "", nil, nil)))
	events := publisher.GetPublishedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventScoringCompleted, events[0].Type)

	// The returned slice is a copy.
	events[0].Type = "changed"
	assert.Equal(t, EventScoringCompleted, publisher.GetPublishedEvents()[0].Type)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
}
