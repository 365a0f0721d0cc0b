package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nguyentranbao-ct/swipe-preview/internal/config"
	"github.com/nguyentranbao-ct/swipe-preview/internal/deck"
	"github.com/nguyentranbao-ct/swipe-preview/internal/generation"
	"github.com/nguyentranbao-ct/swipe-preview/internal/models"
	"github.com/nguyentranbao-ct/swipe-preview/internal/usecase"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type recordingHandler struct {
	snapshots []models.Snapshot
	err       error
}

func (h *recordingHandler) HandleSnapshot(_ context.Context, s models.Snapshot) error {
	h.snapshots = append(h.snapshots, s)
	return h.err
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantErr  codes.Code
		wantSeen int
	}{
		{
			name:     "snapshot event",
			value:    `{"pattern":"product.snapshot","data":{"feed":"saved","products":[{"id":"A","title":"Lamp"}]}}`,
			wantErr:  codes.OK,
			wantSeen: 1,
		},
		{
			name:    "other pattern",
			value:   `{"pattern":"product.updated","data":{}}`,
			wantErr: codes.OK,
		},
		{
			name:    "malformed",
			value:   `{"pattern":`,
			wantErr: codes.InvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			c := &kafkaConsumer{handler: h, consumeTimeout: time.Second}
			err := c.handle(context.Background(), kafka.Message{Value: []byte(tt.value)})
			assert.Equal(t, tt.wantErr, getCode(err))
			assert.Len(t, h.snapshots, tt.wantSeen)
		})
	}
}

func TestHandleDecodesProducts(t *testing.T) {
	h := &recordingHandler{}
	c := &kafkaConsumer{handler: h, consumeTimeout: time.Second}
	value := `{"pattern":"product.snapshot","data":{"feed":"popular","products":[
		{"id":"A","title":"Lamp","featuredImage":{"url":"https://img.test/a.png","altText":"lamp"}},
		{"id":"B","title":"Chair"}]}}`

	require.NoError(t, c.handle(context.Background(), kafka.Message{Value: []byte(value)}))
	require.Len(t, h.snapshots, 1)
	snap := h.snapshots[0]
	assert.Equal(t, models.FeedPopular, snap.Feed)
	assert.Equal(t, []string{"A", "B"}, models.ProductIDs(snap.Products))
	assert.Equal(t, "https://img.test/a.png", snap.Products[0].ImageURL())
	assert.Empty(t, snap.Products[1].ImageURL())
}

func TestHandleRecoversPanic(t *testing.T) {
	c := &kafkaConsumer{handler: panicHandler{}, consumeTimeout: time.Second}
	err := c.handle(context.Background(), kafka.Message{Value: []byte(`{"pattern":"product.snapshot"}`)})
	assert.Equal(t, codes.Internal, getCode(err))
}

type panicHandler struct{}

func (panicHandler) HandleSnapshot(context.Context, models.Snapshot) error { panic("boom") }

func TestGetCode(t *testing.T) {
	assert.Equal(t, codes.OK, getCode(nil))
	assert.Equal(t, codes.DeadlineExceeded, getCode(context.DeadlineExceeded))
	assert.Equal(t, codes.Canceled, getCode(context.Canceled))
	assert.Equal(t, codes.NotFound, getCode(status.Error(codes.NotFound, "x")))
	assert.Equal(t, codes.Unknown, getCode(errors.New("x")))

	assert.Equal(t, zapcore.InfoLevel, getLogLevel(codes.OK))
	assert.Equal(t, zapcore.WarnLevel, getLogLevel(codes.InvalidArgument))
	assert.Equal(t, zapcore.ErrorLevel, getLogLevel(codes.Internal))
}

func TestNoopConsumerWhenDisabled(t *testing.T) {
	c, err := NewConsumer(&config.Config{}, &recordingHandler{})
	require.NoError(t, err)
	assert.IsType(t, &noopConsumer{}, c)
	assert.NoError(t, c.Start(context.Background()))
	assert.NoError(t, c.Stop(context.Background()))
}

func TestSnapshotHandler(t *testing.T) {
	cfg := &config.Config{
		Catalog:    config.CatalogConfig{Feed: "popular"},
		Generation: config.GenerationConfig{Workers: 1, PreloadLimit: 1},
	}
	synth, err := generation.NewSimulated(0, "https://v.test/{{.ID}}.mp4")
	require.NoError(t, err)
	ctrl, err := generation.NewController(cfg, synth)
	require.NoError(t, err)
	uc := usecase.NewDeckUsecase(cfg, deck.New(), ctrl, nil)
	t.Cleanup(func() {
		uc.Stop()
		ctrl.Close()
	})

	h := NewSnapshotHandler(uc)
	ctx := context.Background()

	require.NoError(t, h.HandleSnapshot(ctx, models.Snapshot{
		Feed:     models.FeedPopular,
		Products: []models.Product{{ID: "A"}, {ID: "B"}},
	}))
	assert.Equal(t, []string{"A", "B"}, models.ProductIDs(uc.View(ctx).Stack))

	require.NoError(t, h.HandleSnapshot(ctx, models.Snapshot{
		Feed:     models.FeedSaved,
		Products: []models.Product{{ID: "Z"}},
	}))
	assert.Equal(t, []string{"A", "B"}, models.ProductIDs(uc.View(ctx).Stack), "other feed ignored")

	err = h.HandleSnapshot(ctx, models.Snapshot{Feed: "trending"})
	assert.Equal(t, codes.InvalidArgument, getCode(err))

	require.NoError(t, h.HandleSnapshot(ctx, models.Snapshot{Products: []models.Product{{ID: "C"}}}))
	assert.Equal(t, []string{"C"}, models.ProductIDs(uc.View(ctx).Stack))

	require.NoError(t, h.HandleSnapshot(ctx, models.Snapshot{
		Feed:     models.FeedPopular,
		Products: []models.Product{{ID: ""}, {ID: "D", Title: "Desk"}, {ID: "  "}, {ID: "E"}},
	}))
	assert.Equal(t, []string{"D", "E"}, models.ProductIDs(uc.View(ctx).Stack), "products without id dropped")
}
