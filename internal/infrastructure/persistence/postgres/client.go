// Package postgres 提供 PostgreSQL 数据库访问层实现
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"linkedin-post-ai-api/internal/config"
)

var tracer = otel.Tracer("postgres")

const connectTimeout = 5 * time.Second

// Client PostgreSQL 客户端（GORM）
type Client struct {
	db *gorm.DB
}

// NewClient 创建 PostgreSQL 客户端并校验连通性
func NewClient(cfg *config.PostgresConfig) (*Client, error) {
	db, err := gorm.Open(postgres.Open(dsn(cfg)), newGormConfig(newSlogGormLogger(cfg.SlowThreshold)))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &Client{db: db}, nil
}

// dsn 生成 postgres URL，密码中的特殊字符由 url.UserPassword 转义
func dsn(cfg *config.PostgresConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:   "/" + cfg.Database,
	}
	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	q.Set("application_name", "linkedin-post-ai")
	u.RawQuery = q.Encode()
	return u.String()
}

// NewClientFromConn 基于已有连接创建客户端（测试用）
func NewClientFromConn(conn *sql.DB) (*Client, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), newGormConfig(logger.Discard))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Client{db: db}, nil
}

// 单条写入不需要 GORM 的隐式事务，多语句写入通过 TxManager 显式开启
func newGormConfig(l logger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:                 l,
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
}

// DB 获取 GORM DB 实例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 关闭数据库连接
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck 执行 SELECT 1
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.HealthCheck")
	defer span.End()

	var result int
	if err := c.db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
