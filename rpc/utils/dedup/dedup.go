// Package dedup
// @Title  重复请求识别
// @Description  远程重试可能带来重复的reqId,用ttl缓存识别
// @Author  yr  2025/4/2
// @Update  yr  2025/6/20
package dedup

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/njtc406/emberrpc/rpc/def"
)

// DeDuplicator 用于识别重复 ReqId,防止重复处理
type DeDuplicator struct {
	reqCache *cache.Cache
}

func NewDeDuplicator(ttl, cleanTTL time.Duration) *DeDuplicator {
	if ttl <= 0 {
		ttl = def.DefaultDedupTTL
	}
	if cleanTTL <= 0 {
		cleanTTL = ttl * 3
	}
	return &DeDuplicator{reqCache: cache.New(ttl, cleanTTL)}
}

func reqIdKey(serviceUid string, id uint64) string {
	return fmt.Sprintf("rpc_%s_reqid_%d", serviceUid, id)
}

// Seen 判断是否已经见过该请求,没见过时立即插入标记
func (d *DeDuplicator) Seen(serviceUid string, id uint64) bool {
	key := reqIdKey(serviceUid, id)
	if _, found := d.reqCache.Get(key); found {
		return true
	}
	d.reqCache.SetDefault(key, struct{}{})
	return false
}
