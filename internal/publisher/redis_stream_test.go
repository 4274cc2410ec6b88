package publisher

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/goaliestats/internal/ingest"
)

func TestRedisStreamPublisher_Values(t *testing.T) {
	p := NewRedisStreamPublisher(nil)
	p.now = func() time.Time { return time.Unix(1769947200, 0) }

	summary := ingest.Summary{ImportID: "abc", Season: "2025-2026", TotalCount: 4, CompletedCount: 1, UpcomingCount: 3}
	values, err := p.values(summary)
	require.NoError(t, err)

	assert.Equal(t, "abc", values["import_id"])
	assert.Equal(t, "2025-2026", values["season"])
	assert.Equal(t, int64(1769947200), values["timestamp"])

	var decoded ingest.Summary
	require.NoError(t, sonic.UnmarshalString(values["data"].(string), &decoded))
	assert.Equal(t, summary.TotalCount, decoded.TotalCount)
	assert.Equal(t, summary.UpcomingCount, decoded.UpcomingCount)
	assert.Equal(t, ImportStream, p.stream)
}
