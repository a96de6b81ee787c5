package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-13f-indexer/internal/adapter"
	"github.com/feral-file/ff-13f-indexer/internal/domain"
	"github.com/feral-file/ff-13f-indexer/internal/messaging"
	"github.com/feral-file/ff-13f-indexer/internal/mocks"
	js "github.com/feral-file/ff-13f-indexer/internal/providers/jetstream"
)

func newTestPublisher(t *testing.T, ctrl *gomock.Controller) (messaging.Publisher, *mocks.MockNatsConn, *mocks.MockJetStream) {
	conn := mocks.NewMockNatsConn(ctrl)
	stream := mocks.NewMockJetStream(ctrl)
	natsJS := mocks.NewMockNatsJetStream(ctrl)

	natsJS.EXPECT().
		Connect("nats://localhost:4222", gomock.Any()).
		Return(conn, stream, nil)

	p, err := js.NewPublisher(js.Config{
		URL:            "nats://localhost:4222",
		MaxReconnects:  3,
		ReconnectWait:  time.Second,
		ConnectionName: "ff-13f-ingester",
	}, natsJS, adapter.NewJSON())
	require.NoError(t, err)

	return p, conn, stream
}

func TestNewPublisher_ConnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, errors.New("connection refused"))

	p, err := js.NewPublisher(js.Config{URL: "nats://nowhere:4222"}, natsJS, adapter.NewJSON())
	assert.Nil(t, p)
	assert.ErrorContains(t, err, "connection refused")
}

func TestPublisher_PublishRunCompleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, _, stream := newTestPublisher(t, ctrl)

	summary := domain.NewRunSummary("01JABCDEF0123456789ABCDEFG", time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	summary.FilingsDiscovered = 137
	summary.FilingsIngested = 134
	summary.FilingsSkipped[domain.SkipReasonFetchFailed] = 3

	stream.EXPECT().
		Publish(gomock.Any(), messaging.SubjectIngestCompleted, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
			var got domain.RunSummary
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, summary.RunID, got.RunID)
			assert.Equal(t, 137, got.FilingsDiscovered)
			assert.Equal(t, 3, got.FilingsSkipped[domain.SkipReasonFetchFailed])
			return &jetstream.PubAck{Stream: "INGEST", Sequence: 1}, nil
		})

	require.NoError(t, p.PublishRunCompleted(context.Background(), summary))
}

func TestPublisher_PublishRunCompleted_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, _, stream := newTestPublisher(t, ctrl)

	stream.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("no responders"))

	err := p.PublishRunCompleted(context.Background(), domain.NewRunSummary("run", time.Now()))
	assert.ErrorContains(t, err, "failed to publish run summary")
}

func TestPublisher_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, conn, _ := newTestPublisher(t, ctrl)

	conn.EXPECT().Drain().Return(errors.New("already closed"))
	conn.EXPECT().Close()

	p.Close()
}
