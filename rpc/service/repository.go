// Package service
// @Title  端点目录
// @Description  本节点端点与发现同步来的远程端点的查询表
// @Author  yr  2025/3/22
// @Update  yr  2025/6/20
package service

import (
	"sync"

	"github.com/njtc406/emberrpc/rpc/actor"
	"github.com/njtc406/emberrpc/rpc/def"
	inf "github.com/njtc406/emberrpc/rpc/interfaces"
)

type entry struct {
	pid        *actor.PID
	endpoint   inf.IEndpoint // 远程端点为nil
	dispatcher inf.IRpcDispatcher
}

func (e *entry) isLocal() bool {
	return e.endpoint != nil
}

type repository struct {
	mu     sync.RWMutex
	byUid  map[string]*entry            // serviceUid -> entry
	byName map[string]map[string]*entry // name -> serviceUid -> entry
}

func newRepository() *repository {
	return &repository{
		byUid:  make(map[string]*entry),
		byName: make(map[string]map[string]*entry),
	}
}

// add 登记端点, 本地端点名在存活期内独占
func (r *repository) add(e *entry) error {
	name := e.pid.GetName()
	uid := e.pid.GetServiceUid()

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byUid[uid]; ok {
		if e.isLocal() && old.isLocal() && !old.endpoint.IsTerminated() {
			return def.ErrNameDuplicated
		}
		// 旧持有者已经终止,顶替
		r.removeLocked(old.pid)
	}
	if e.isLocal() {
		for _, old := range r.byName[name] {
			if old.isLocal() && !old.endpoint.IsTerminated() {
				return def.ErrNameDuplicated
			}
		}
	}

	r.byUid[uid] = e
	if r.byName[name] == nil {
		r.byName[name] = make(map[string]*entry)
	}
	r.byName[name][uid] = e
	return nil
}

func (r *repository) remove(pid *actor.PID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(pid)
}

func (r *repository) removeLocked(pid *actor.PID) {
	uid := pid.GetServiceUid()
	e, ok := r.byUid[uid]
	if !ok {
		return
	}
	delete(r.byUid, uid)
	name := e.pid.GetName()
	if m, ok := r.byName[name]; ok {
		delete(m, uid)
		if len(m) == 0 {
			delete(r.byName, name)
		}
	}
}

func (r *repository) findByUid(uid string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byUid[uid]
}

// findByName 名称解析, 支持'*'后缀通配,要求唯一命中
func (r *repository) findByName(name string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !actor.IsWildcard(name) {
		for _, e := range r.byName[name] {
			return e, nil
		}
		return nil, def.ErrServiceNotFound
	}

	var found *entry
	for n, m := range r.byName {
		if !actor.MatchName(name, n) {
			continue
		}
		for _, e := range m {
			if found != nil {
				return nil, def.ErrNameAmbiguous
			}
			found = e
		}
	}
	if found == nil {
		return nil, def.ErrServiceNotFound
	}
	return found, nil
}

// locals 当前登记的本地端点快照
func (r *repository) locals() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entry
	for _, e := range r.byUid {
		if e.isLocal() {
			out = append(out, e)
		}
	}
	return out
}
