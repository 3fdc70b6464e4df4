package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"domain_market/model"
	"domain_market/payment"
	"domain_market/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 测试身份（合法十六进制地址）
const (
	testMinter  = "0x1111111111111111111111111111111111111111"
	testCustody = "0x000000000000000000000000000000000000dead"
	alice       = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob         = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	carol       = "0xcccccccccccccccccccccccccccccccccccccccc"
	dave        = "0xdddddddddddddddddddddddddddddddddddddddd"
	eve         = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
)

// testClock 可拨动的逻辑时钟（过期全部惰性求值，推进时钟即可制造过期）
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// testEnv 服务测试环境：内存SQLite + 内存支付轨道 + 进程内域名锁 + 假时钟
type testEnv struct {
	db       *gorm.DB
	rail     *payment.MemoryRail
	clock    *testClock
	registry *registryService
	listing  *listingService
	offer    *offerService
	fraction *fractionService
	pool     *poolService
	message  *messageService
	stats    *statsService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// 每个测试独立的共享内存库（gorm连接池下多个连接必须看到同一份数据）
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Domain{},
		&model.Listing{},
		&model.Offer{},
		&model.TradeRecord{},
		&model.Fraction{},
		&model.BuyPool{},
		&model.PoolContribution{},
		&model.DomainMessage{},
	))

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	clock := &testClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rail := payment.NewMemoryRail()
	locker := utils.NewLocalDomainLocker()

	return &testEnv{
		db:       db,
		rail:     rail,
		clock:    clock,
		registry: &registryService{db: db, locker: locker, minterAddr: testMinter},
		listing:  &listingService{db: db, rail: rail, locker: locker, now: clock.Now},
		offer:    &offerService{db: db, rail: rail, locker: locker, now: clock.Now},
		fraction: &fractionService{db: db, rail: rail, locker: locker, custodyAddr: testCustody},
		pool:     &poolService{db: db, rail: rail, locker: locker, custodyAddr: testCustody, now: clock.Now},
		message:  &messageService{db: db},
		stats:    &statsService{db: db, now: clock.Now},
	}
}

// mintDomain 铸造一个属于owner的域名
func (e *testEnv) mintDomain(t *testing.T, owner string) uint64 {
	t.Helper()

	id, err := e.registry.Mint(context.Background(), MintReq{
		MinterAddr:  testMinter,
		OwnerAddr:   owner,
		MetadataURI: "ipfs://QmTestDomainMeta",
	})
	require.NoError(t, err)
	return id
}

// ownerOf 断言辅助：查当前持有者
func (e *testEnv) ownerOf(t *testing.T, domainID uint64) string {
	t.Helper()

	owner, err := e.registry.OwnerOf(context.Background(), domainID)
	require.NoError(t, err)
	return owner
}

// tradeCount 查成交次数
func (e *testEnv) tradeCount(t *testing.T, domainID uint64) int64 {
	t.Helper()

	count, err := e.stats.TradeCount(context.Background(), domainID)
	require.NoError(t, err)
	return count
}
