package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"autohaus/adapters/media"
	"autohaus/models"
)

// maxOpenConns 是資料庫連線池的上限，超過的請求會排隊等待連線
const maxOpenConns = 10

type ServerImpl struct {
	db          *gorm.DB
	mediaStore  media.Store
	htmlChecker *bluemonday.Policy

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化媒體儲存
	var mediaStore media.Store
	if config.Media.S3.Endpoint != "" {
		s3Cfg, err := awsCfg.LoadDefaultConfig(
			context.Background(),
			awsCfg.WithBaseEndpoint(config.Media.S3.Endpoint),
			awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.Media.S3.AccessKeyID, config.Media.S3.SecretAccessKey, "")),
			awsCfg.WithRegion("auto"),
		)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
		}
		mediaStore, err = media.NewS3Store(s3.NewFromConfig(s3Cfg), config.Media.S3.Bucket, config.Media.S3.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create S3 media store, err=%w", op, err)
		}
	} else {
		diskStore, err := media.NewDiskStore(config.Media.Dir, config.Media.PublicBasePath)
		if err != nil {
			return nil, fmt.Errorf("[%s] Fail to create disk media store, err=%w", op, err)
		}
		mediaStore = diskStore
	}

	// 初始化資料庫連線
	gormConfig := &gorm.Config{TranslateError: true}
	if config.DB.Schema != "" {
		gormConfig.NamingStrategy = schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		}
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to access connection pool, err=%w", op, err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err)
	}

	return NewServerWithDB(db, mediaStore, config), nil
}

// NewServerWithDB 以外部建立好的資料庫連線與媒體儲存組出伺服器，
// 測試透過這個入口注入記憶體資料庫
func NewServerWithDB(db *gorm.DB, mediaStore media.Store, config ServerConfig) *ServerImpl {
	return &ServerImpl{
		db:          db,
		mediaStore:  mediaStore,
		htmlChecker: bluemonday.UGCPolicy(),
		config:      config,
	}
}

// Migrate 建立或更新所有資料表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Vehicle{},
		&models.VehicleFeature{},
		&models.VehicleImage{},
		&models.Inquiry{},
		&models.CustomerForm{},
		&models.CustomerFormImage{},
	)
}

// RegisterRoutes 將所有路由掛上router，包含上傳檔案的靜態服務
func (impl *ServerImpl) RegisterRoutes(router *gin.Engine) {
	if len(impl.config.HTTP.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     impl.config.HTTP.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
		}))
	}
	// 本機儲存時由伺服器自己提供上傳的圖片
	if _, ok := impl.mediaStore.(*media.DiskStore); ok {
		router.Static(impl.config.Media.PublicBasePath, impl.config.Media.Dir)
	}

	apiGroup := router.Group("/api")
	apiGroup.GET("/health", impl.GetHealth)

	apiGroup.GET("/vehicles", impl.ListVehicles)
	apiGroup.GET("/vehicles/:id", impl.GetVehicle)
	apiGroup.POST("/vehicles", impl.CreateVehicle)
	apiGroup.PUT("/vehicles/:id", impl.UpdateVehicle)
	apiGroup.DELETE("/vehicles/:id", impl.DeleteVehicle)

	apiGroup.GET("/inquiries", impl.ListInquiries)
	apiGroup.POST("/inquiries", impl.CreateInquiry)
	apiGroup.PATCH("/inquiries/:id/status", impl.UpdateInquiryStatus)

	apiGroup.GET("/customer-forms", impl.ListCustomerForms)
	apiGroup.POST("/customer-forms", impl.CreateCustomerForm)
	apiGroup.PATCH("/customer-forms/:id/status", impl.UpdateCustomerFormStatus)
}

func (impl *ServerImpl) Close() error {
	sqlDB, err := impl.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// serverError 記錄完整錯誤後回傳通用訊息，內部細節不外流
func serverError(c *gin.Context, op string, err error) {
	slog.Error("Request failed", slog.String("op", op), slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
