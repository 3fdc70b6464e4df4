package main

import (
	"os"
	"os/signal"
	"syscall"

	"domain_market/config"
	"domain_market/handler"
	"domain_market/model"
	"domain_market/payment"
	"domain_market/service"
	"domain_market/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化配置
	if err := config.InitConfig(); err != nil {
		zap.L().Fatal("初始化配置失败", zap.Error(err))
	}

	// 2. 初始化日志
	if err := utils.InitLogger(); err != nil {
		zap.L().Fatal("初始化日志失败", zap.Error(err))
	}

	// 3. 初始化MySQL
	db, err := gorm.Open(mysql.Open(config.GlobalConfig.MySQLDSN), &gorm.Config{})
	if err != nil {
		utils.Logger.Fatal("连接MySQL失败", zap.Error(err))
	}

	// 自动迁移表结构（开发环境）
	err = db.AutoMigrate(
		&model.Domain{},
		&model.Listing{},
		&model.Offer{},
		&model.TradeRecord{},
		&model.Fraction{},
		&model.BuyPool{},
		&model.PoolContribution{},
		&model.DomainMessage{},
	)
	if err != nil {
		utils.Logger.Fatal("迁移表结构失败", zap.Error(err))
	}

	// 4. 初始化Redis（不可用时退化为进程内锁，仅限单实例部署）
	var locker utils.DomainLocker
	if err := utils.InitRedis(config.GlobalConfig.RedisAddr, config.GlobalConfig.RedisPassword, config.GlobalConfig.RedisDB); err != nil {
		utils.Logger.Warn("Redis不可用，退化为进程内域名锁", zap.Error(err))
		locker = utils.NewLocalDomainLocker()
	} else {
		locker = &utils.RedisDomainLocker{}
	}

	// 5. 初始化RabbitMQ（不可用时成交事件不外发，账本不受影响）
	if err := utils.InitRabbitMQ(config.GlobalConfig.RabbitMQURL); err != nil {
		utils.Logger.Warn("RabbitMQ不可用，成交事件不外发", zap.Error(err))
	}
	defer utils.CloseRabbitMQ()

	// 6. 支付轨道（外部协作方；默认内存实现，生产替换为真实轨道客户端）
	rail := payment.NewMemoryRail()

	// 7. 初始化服务和处理器
	registryService := service.NewRegistryService(db, locker, config.GlobalConfig.MinterAddr)
	listingService := service.NewListingService(db, rail, locker)
	offerService := service.NewOfferService(db, rail, locker)
	fractionService := service.NewFractionService(db, rail, locker, config.GlobalConfig.CustodyAddr)
	poolService := service.NewPoolService(db, rail, locker, config.GlobalConfig.CustodyAddr)
	messageService := service.NewMessageService(db)
	statsService := service.NewStatsService(db)

	domainHandler := handler.NewDomainHandler(registryService)
	tradeHandler := handler.NewTradeHandler(listingService, offerService)
	fractionHandler := handler.NewFractionHandler(fractionService, poolService)
	messageHandler := handler.NewMessageHandler(messageService, statsService)

	// 8. 初始化Gin引擎
	r := gin.Default()

	// 路由
	v1 := r.Group("/api/v1")
	{
		// 域名注册处
		v1.POST("/domain/mint", domainHandler.Mint)          // 铸造域名
		v1.POST("/domain/transfer", domainHandler.Transfer)  // 直接转让
		v1.GET("/domain/:id", domainHandler.GetDomain)       // 查询域名

		// 挂牌
		v1.POST("/listing", tradeHandler.CreateListing)        // 挂牌出售
		v1.POST("/listing/cancel", tradeHandler.CancelListing) // 取消挂牌
		v1.POST("/listing/buy", tradeHandler.BuyListing)       // 按挂牌价购买
		v1.GET("/listing/:id", tradeHandler.GetListing)        // 查询挂牌
		v1.GET("/listings/active", messageHandler.GetActiveListings)

		// 报价
		v1.POST("/offer", tradeHandler.MakeOffer)          // 发起报价
		v1.POST("/offer/accept", tradeHandler.AcceptOffer) // 接受报价
		v1.POST("/offer/cancel", tradeHandler.CancelOffer) // 撤销报价
		v1.GET("/offers/:id", tradeHandler.GetOffers)      // 查询报价列表

		// 份额
		v1.POST("/fraction/split", fractionHandler.Fractionalize) // 碎片化
		v1.POST("/fraction/buy", fractionHandler.BuyFraction)     // 购买份额
		v1.GET("/fractions/:id", fractionHandler.GetFractions)    // 查询持仓

		// 拼单
		v1.POST("/pool", fractionHandler.CreatePool)    // 发起拼单
		v1.POST("/pool/join", fractionHandler.JoinPool) // 参与拼单
		v1.GET("/pool/:id", fractionHandler.GetPool)    // 查询拼单
		v1.GET("/pools/open", messageHandler.GetOpenPools)

		// 留言与统计
		v1.POST("/message", messageHandler.AppendMessage)          // 追加留言
		v1.GET("/messages/:id", messageHandler.GetMessages)        // 查询留言
		v1.GET("/stats/trades/:id", messageHandler.GetTradeCount)  // 成交次数
	}

	// 9. 启动服务（优雅关闭）
	go func() {
		if err := r.Run(config.GlobalConfig.ServerPort); err != nil {
			utils.Logger.Fatal("启动服务失败", zap.Error(err))
		}
	}()

	// 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Logger.Info("服务正在关闭...")
}
