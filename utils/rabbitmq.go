package utils

import (
	"context"
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var RabbitMQConn *amqp.Connection
var RabbitMQChannel *amqp.Channel

// TradeEvent 成交事件（事务提交后发布，供通知/索引等下游消费）
type TradeEvent struct {
	TradeNo    string `json:"trade_no"`
	DomainID   uint64 `json:"domain_id"`
	SellerAddr string `json:"seller_addr"`
	BuyerAddr  string `json:"buyer_addr"`
	Price      int64  `json:"price"`
	Source     string `json:"source"` // listing/offer/pool
}

// InitRabbitMQ 初始化RabbitMQ
func InitRabbitMQ(url string) error {
	// 建立连接
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	RabbitMQConn = conn

	// 建立通道
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	RabbitMQChannel = ch

	// 声明交换机和队列
	return declareExchangeAndQueue()
}

// 声明交换机和队列（成交事件队列）
func declareExchangeAndQueue() error {
	// 声明交换机
	err := RabbitMQChannel.ExchangeDeclare(
		"domain_market_exchange", // 交换机名
		"direct",                 // 类型
		true,                     // 持久化
		false,                    // 自动删除
		false,                    // 内部
		false,                    // 等待
		nil,                      // 参数
	)
	if err != nil {
		return err
	}

	// 声明队列
	_, err = RabbitMQChannel.QueueDeclare(
		"domain_trade_queue", // 队列名
		true,                 // 持久化
		false,                // 自动删除
		false,                // 排他
		false,                // 等待
		nil,                  // 参数
	)
	if err != nil {
		return err
	}

	// 绑定队列到交换机
	return RabbitMQChannel.QueueBind(
		"domain_trade_queue",     // 队列名
		"trade.executed",         // 路由键
		"domain_market_exchange", // 交换机名
		false,
		nil,
	)
}

// PublishTradeEvent 发布成交事件（账本事务已提交，发布失败只记录不回滚）
func PublishTradeEvent(ctx context.Context, event TradeEvent) {
	if RabbitMQChannel == nil {
		return // 未接入MQ（本地开发/测试）
	}

	msg, err := json.Marshal(event)
	if err != nil {
		Logger.Error("成交事件序列化失败", zap.String("trade_no", event.TradeNo), zap.Error(err))
		return
	}

	err = RabbitMQChannel.Publish(
		"domain_market_exchange", // 交换机名
		"trade.executed",         // 路由键
		false,                    // 强制
		false,                    // 立即
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         msg,
			DeliveryMode: amqp.Persistent, // 持久化
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		Logger.Error("发布成交事件失败", zap.String("trade_no", event.TradeNo), zap.Error(err))
	}
}

// CloseRabbitMQ 关闭RabbitMQ连接
func CloseRabbitMQ() {
	if RabbitMQChannel != nil {
		RabbitMQChannel.Close()
	}
	if RabbitMQConn != nil {
		RabbitMQConn.Close()
	}
}
