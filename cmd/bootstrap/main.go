package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"linkedin-post-ai-api/internal/config"
	"linkedin-post-ai-api/internal/domain/entity"
	"linkedin-post-ai-api/internal/interfaces/http/middleware"
	"linkedin-post-ai-api/internal/wire"
	"linkedin-post-ai-api/pkg/utils"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层（仅 PostgreSQL）
	dataLayer, cleanup, err := wire.InitializePostgresOnly(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	if err := dataLayer.PgClient.HealthCheck(ctx); err != nil {
		log.Fatalf("database not ready: %v", err)
	}

	// 3. 创建开发用户并签发访问令牌
	subject := os.Getenv("BOOTSTRAP_USER_SUBJECT")
	if subject == "" {
		subject = "dev-user"
	}
	externalID := middleware.AuthSourceJWT + ":" + subject

	user, err := dataLayer.UserRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		log.Fatalf("failed to check user existence: %v", err)
	}
	if user == nil {
		fmt.Printf("Creating user: %s...\n", externalID)
		user = entity.NewUser(externalID, middleware.AuthSourceJWT)
		user.DisplayName = "Dev User"
		if err := dataLayer.UserRepo.Create(ctx, user); err != nil {
			log.Fatalf("failed to create user: %v", err)
		}
	} else {
		fmt.Printf("User %s already exists.\n", externalID)
	}

	token, err := utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer).
		GenerateAccessToken(subject, "", cfg.Security.JWT.Expiration)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Printf("User ID: %s\nAccess token: %s\n", user.ID, token)

	fmt.Println("Bootstrap completed successfully.")
}
