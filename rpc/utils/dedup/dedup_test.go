package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeenInsertsOnMiss(t *testing.T) {
	d := NewDeDuplicator(time.Minute, 0)

	assert.False(t, d.Seen("svc@node", 1))
	assert.True(t, d.Seen("svc@node", 1))
	assert.False(t, d.Seen("svc@node", 2))
	// 不同服务相同reqId互不影响
	assert.False(t, d.Seen("other@node", 1))
}

func TestSeenExpires(t *testing.T) {
	d := NewDeDuplicator(30*time.Millisecond, 10*time.Millisecond)

	assert.False(t, d.Seen("svc@node", 7))
	time.Sleep(60 * time.Millisecond)
	assert.False(t, d.Seen("svc@node", 7))
}
