package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StoryFM/cache"
	"StoryFM/config"
	"StoryFM/core/album"
	"StoryFM/core/auth"
	"StoryFM/core/story"
	"StoryFM/db"
	"StoryFM/logger"
	"StoryFM/model"
	"StoryFM/repository"
	"StoryFM/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
	})

	// 设置服务器超时
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 按配置选择内容寻址存储后端
	var uploader storage.Uploader
	switch cfg.StorageBackend {
	case "minio":
		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO store: %v", err)
		}
		uploader = store
	default:
		uploader = storage.NewPinataClient(cfg.PinataAPIURL, cfg.PinataJWT)
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 新模块使用GORM管理表结构
	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect GORM: %v", err)
	}
	defer db.CloseGormDB()
	if err := db.AutoMigrateModels(&model.PublishedAlbum{}); err != nil {
		log.Fatalf("Failed to migrate models: %v", err)
	}

	// Connect to Redis
	if err := cache.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.CloseRedis()
	log.Println("Successfully connected to Redis")

	auth.SetSecret(cfg.JWTSecret)

	storyClient := story.NewClient(cfg)
	drafts := album.NewManager()
	publisher := album.NewPublisher(uploader, storyClient)
	userRepo := repository.NewMySQLUserRepository(db.DB)
	albumRepo := repository.NewGormPublishedAlbumRepository(db.GormDB)

	// 初始化处理器
	apiHandler := NewAPIHandler(drafts, publisher, storyClient, uploader, userRepo, albumRepo, cfg)

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 用户认证相关的API端点
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/wallet", apiHandler.AuthMiddleware(apiHandler.BindWalletHandler)).Methods(http.MethodPut)

	// 专辑草稿相关的API端点
	router.HandleFunc("/api/drafts", apiHandler.AuthMiddleware(apiHandler.CreateDraftHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/drafts/{id}", apiHandler.AuthMiddleware(apiHandler.GetDraftHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/drafts/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateDraftHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/drafts/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteDraftHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/drafts/{id}/cover", apiHandler.AuthMiddleware(apiHandler.UploadDraftCoverHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/drafts/{id}/tracks", apiHandler.AuthMiddleware(apiHandler.AddTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/drafts/{id}/tracks/{track_id}", apiHandler.AuthMiddleware(apiHandler.UpdateTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/drafts/{id}/tracks/{track_id}", apiHandler.AuthMiddleware(apiHandler.RemoveTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/drafts/{id}/publish", apiHandler.AuthMiddleware(apiHandler.PublishDraftHandler)).Methods(http.MethodPost)

	// 录音采集相关的端点（WebSocket走query token认证）
	router.HandleFunc("/api/drafts/{id}/tracks/{track_id}/capture", apiHandler.AuthMiddleware(apiHandler.CaptureHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/drafts/{id}/tracks/{track_id}/audio", apiHandler.AuthMiddleware(apiHandler.TrackAudioHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/drafts/{id}/tracks/{track_id}/preview", apiHandler.AuthMiddleware(apiHandler.TrackPreviewHandler)).Methods(http.MethodPost)

	// IPFS上传中转
	router.HandleFunc("/api/ipfs/upload", apiHandler.AuthMiddleware(apiHandler.UploadHandler)).Methods(http.MethodPost)

	// 链上资产相关的API端点
	router.HandleFunc("/api/gallery", apiHandler.GalleryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/inventory", apiHandler.AuthMiddleware(apiHandler.InventoryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/nft/{token_id}", apiHandler.NFTHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/nft/{token_id}/license", apiHandler.AuthMiddleware(apiHandler.RegisterLicenseHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/nft/{token_id}/license/mint", apiHandler.AuthMiddleware(apiHandler.MintLicenseTokenHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/wip/swap", apiHandler.AuthMiddleware(apiHandler.SwapHandler)).Methods(http.MethodPost)

	// 已发布专辑记录
	router.HandleFunc("/api/albums/mine", apiHandler.AuthMiddleware(apiHandler.GetMyAlbumsHandler)).Methods(http.MethodGet)

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		log.Printf("Server starting on %s...", cfg.ServerAddr)
		log.Println("Manage drafts via /api/drafts endpoints")
		log.Println("Capture audio via WS at /api/drafts/{id}/tracks/{track_id}/capture")
		log.Println("Publish via POST to /api/drafts/{id}/publish")
		log.Println("Browse the collection via GET /api/gallery")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待中断信号
	<-stop
	log.Println("Shutting down server...")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
