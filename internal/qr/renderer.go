package qr

import (
	"context"

	"github.com/rs/zerolog/log"

	"qrattend/internal/metrics"
	"qrattend/internal/queue"
)

// RenderJob is the queue message type for artifact rebuilds. The body is
// the roll number.
const RenderJob = "qr.render"

// RunRenderer consumes render jobs until ctx is done or the queue closes.
// It returns the number of artifacts written.
func RunRenderer(ctx context.Context, q queue.Queue, store *ArtifactStore) (int, error) {
	messages, err := q.Consume(ctx)
	if err != nil {
		return 0, err
	}
	written := 0
	for msg := range messages {
		if msg.Type != RenderJob {
			continue
		}
		rollNo := string(msg.Body)
		png, err := Encode(rollNo)
		if err != nil {
			log.Error().Err(err).Str("roll_no", rollNo).Msg("render qr failed")
			continue
		}
		if err := store.Write(rollNo, png); err != nil {
			log.Error().Err(err).Str("roll_no", rollNo).Msg("write qr artifact failed")
			continue
		}
		metrics.ArtifactsWritten.WithLabelValues("renderer").Inc()
		written++
		log.Debug().Str("roll_no", rollNo).Str("path", store.Path(rollNo)).Msg("qr artifact rebuilt")
	}
	return written, nil
}
