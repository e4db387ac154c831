package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/sardis-lake-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func testConditions() domain.Conditions {
	return domain.Conditions{
		ID:          "3f1c1a52-8a51-4c39-9d64-1b8f0f0c0a11",
		GeneratedAt: time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC),
		Lake:        "Sardis Lake",
		Elevation:   domain.Resolve(domain.ElevationReading{Value: 601.5}, nil, domain.ElevationReading{}),
		Weather:     domain.Resolve(domain.Forecast{}, errors.New("timeout"), domain.Forecast{Current: domain.DefaultWeather()}),
		FloodImpact: domain.EstimateFloodImpact(601.5, 599),
	}
}

func TestSerializeToMessage(t *testing.T) {
	c := testConditions()

	msg, err := serializeToMessage(c)
	require.NoError(t, err)

	assert.Equal(t, []byte(c.ID), msg.Key)
	assert.Contains(t, string(msg.Value), `"flood_impact":{"difference_ft":2.5,"additional_acres":450`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "lake", msg.Headers[0].Key)
	assert.Equal(t, []byte("Sardis Lake"), msg.Headers[0].Value)
	assert.Equal(t, []byte("2024-06-01T14:00:00Z"), msg.Headers[1].Value)
	assert.Equal(t, []byte("true"), msg.Headers[2].Value)

	var back domain.Conditions
	require.NoError(t, json.Unmarshal(msg.Value, &back))
	assert.Equal(t, c.ID, back.ID)
	assert.Equal(t, "timeout", back.Weather.ErrorMessage())
}

func TestWriter_Publish(t *testing.T) {
	rec := &recordingWriter{}
	w := &Writer{writer: rec, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, w.Publish(context.Background(), testConditions()))
	require.Len(t, rec.msgs, 1)

	require.NoError(t, w.Close())
	assert.True(t, rec.closed)
}

func TestWriter_PublishError(t *testing.T) {
	rec := &recordingWriter{err: errors.New("broker down")}
	w := &Writer{writer: rec, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.Publish(context.Background(), testConditions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Contains(t, err.Error(), testConditions().ID)
}
