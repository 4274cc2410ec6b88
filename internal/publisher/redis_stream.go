package publisher

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/goaliestats/internal/ingest"
)

// ImportStream is the stream finished imports are appended to.
const ImportStream = "imports.completed"

// DefaultMaxLen caps the stream length (approximate trimming).
const DefaultMaxLen = 1000

// RedisStreamPublisher publishes import events to a Redis stream
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	now    func() time.Time
}

var _ ingest.Notifier = (*RedisStreamPublisher)(nil)

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: ImportStream,
		maxLen: DefaultMaxLen,
		now:    time.Now,
	}
}

// PublishImport appends an import summary to the stream.
func (p *RedisStreamPublisher) PublishImport(ctx context.Context, summary ingest.Summary) error {
	values, err := p.values(summary)
	if err != nil {
		return err
	}
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	return errors.Wrapf(err, "xadd %s", p.stream)
}

func (p *RedisStreamPublisher) values(summary ingest.Summary) (map[string]interface{}, error) {
	data, err := sonic.Marshal(summary)
	if err != nil {
		return nil, errors.Wrap(err, "encode import summary")
	}
	return map[string]interface{}{
		"import_id": summary.ImportID,
		"season":    summary.Season,
		"data":      string(data),
		"timestamp": p.now().Unix(),
	}, nil
}
