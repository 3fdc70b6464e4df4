package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/go-redsync/redsync/v4"
	goredisadapter "github.com/go-redsync/redsync/v4/redis/goredis/v8"
	"go.uber.org/zap"
)

// RedisClient 全局Redis客户端（导出，供外部包直接使用）
var RedisClient *goredis.Client

// Redisync 全局RedSync实例（用于RedLock分布式锁）
var Redisync *redsync.Redsync

// InitRedis 初始化Redis客户端与RedSync（需在程序启动时调用）
// 参数：addr(Redis地址)、password(Redis密码)、db(Redis数据库编号)
func InitRedis(addr, password string, db int) error {
	// 1. 初始化全局Redis客户端
	RedisClient = goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	// 校验Redis连接可用性
	if err := RedisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	// 2. 初始化RedSync（支持RedLock分布式锁）
	adapterPool := goredisadapter.NewPool(RedisClient)
	Redisync = redsync.New(adapterPool)

	return nil
}

// GetRedisLock 获取RedSync分布式锁
// 参数：ctx(上下文)、key(锁键)、expire(锁过期时间)
func GetRedisLock(ctx context.Context, key string, expire time.Duration) (*redsync.Mutex, error) {
	if Redisync == nil {
		return nil, errors.New("redsync not initialized")
	}

	mutex := Redisync.NewMutex(key, redsync.WithExpiry(expire))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("redsync lock failed: %w", err)
	}

	return mutex, nil
}

// ReleaseRedisLock 释放RedSync分布式锁
func ReleaseRedisLock(mutex *redsync.Mutex) error {
	if mutex == nil {
		return errors.New("mutex is nil")
	}

	ok, err := mutex.Unlock()
	if err != nil {
		return fmt.Errorf("redsync unlock failed: %w", err)
	}
	if !ok {
		return errors.New("mutex has expired or not held")
	}

	return nil
}

// -------------------------- 按域名互斥器 --------------------------

// DomainLocker 按域名ID串行化写操作的互斥器
// 同一域名的状态变更互相排队，不同域名互不影响
type DomainLocker interface {
	LockDomain(ctx context.Context, domainID uint64) (release func(), err error)
}

// RedisDomainLocker 基于RedSync的分布式域名锁（生产环境）
type RedisDomainLocker struct {
	Expiry time.Duration // 锁过期时间，零值默认10秒
}

// LockDomain 获取域名锁，返回释放函数
func (l *RedisDomainLocker) LockDomain(ctx context.Context, domainID uint64) (func(), error) {
	expiry := l.Expiry
	if expiry <= 0 {
		expiry = 10 * time.Second
	}

	lockKey := fmt.Sprintf("domain_lock_%d", domainID)
	mutex, err := GetRedisLock(ctx, lockKey, expiry)
	if err != nil {
		return nil, err
	}

	return func() {
		// 释放失败时锁会随过期时间自动解除，这里只记录
		if err := ReleaseRedisLock(mutex); err != nil {
			Logger.Error("释放域名锁失败", zap.Uint64("domain_id", domainID), zap.Error(err))
		}
	}, nil
}

// LocalDomainLocker 进程内域名锁（单机部署与测试用，无需Redis）
type LocalDomainLocker struct {
	mu      sync.Mutex
	mutexes map[uint64]*sync.Mutex
}

// NewLocalDomainLocker 创建进程内域名锁
func NewLocalDomainLocker() *LocalDomainLocker {
	return &LocalDomainLocker{
		mutexes: make(map[uint64]*sync.Mutex),
	}
}

// LockDomain 获取域名锁，返回释放函数
func (l *LocalDomainLocker) LockDomain(ctx context.Context, domainID uint64) (func(), error) {
	l.mu.Lock()
	m, ok := l.mutexes[domainID]
	if !ok {
		m = &sync.Mutex{}
		l.mutexes[domainID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
