package store

import (
	"context"
	"sync"

	"github.com/tharushika0418/Vescueye-Deploy/internal/domain"
)

// LatestStore 最新遥测数据缓存（单槽，无条件覆盖）
// Get 在首条数据到达前返回 (nil, nil)
type LatestStore interface {
	Set(ctx context.Context, data *domain.FlapData) error
	Get(ctx context.Context) (*domain.FlapData, error)
}

// MemoryLatest 进程内单槽缓存
// 无条件覆盖（last-write-wins），即使 broker 乱序投递也不做时间戳比较
type MemoryLatest struct {
	mu     sync.RWMutex
	latest *domain.FlapData
}

// NewMemoryLatest 创建内存缓存
func NewMemoryLatest() *MemoryLatest {
	return &MemoryLatest{}
}

var _ LatestStore = (*MemoryLatest)(nil)

func (m *MemoryLatest) Set(ctx context.Context, data *domain.FlapData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = data
	return nil
}

func (m *MemoryLatest) Get(ctx context.Context) (*domain.FlapData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest, nil
}
