// Пакет redacteur - HTTP сервис редактора документов с пользовательскими блоками.
//
// Сервис хранит документы в TipTap JSON, исполняет блоки на сервере (загрузка
// данных, графики, формулы, подписи, ссылки), ведет комментарии к фрагментам
// текста и рассылает изменения открытым клиентам по вебсокету.
//
// Основные возможности:
//   - CRUD документов и выгрузка в HTML, Markdown, PDF и JSON.
//   - Команды редактора для вставки, настройки и обновления блоков.
//   - Комментарии с ветками ответов и закрытием обсуждений.
//   - Рисованная и загруженная подпись с хранением изображения.
package redacteur

// @title Rédacteur API
// @version 1.0
// @description Documents riches avec blocs personnalisés.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @BasePath /
import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/apierrors"
	blockruntime "github.com/aisa-it/redacteur/internal/redacteur/block-runtime"
	"github.com/aisa-it/redacteur/internal/redacteur/comments"
	"github.com/aisa-it/redacteur/internal/redacteur/config"
	"github.com/aisa-it/redacteur/internal/redacteur/cronmanager"
	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	datafetch "github.com/aisa-it/redacteur/internal/redacteur/data-fetch"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
	filestorage "github.com/aisa-it/redacteur/internal/redacteur/file-storage"
	"github.com/aisa-it/redacteur/internal/redacteur/notifications"
	"github.com/aisa-it/redacteur/internal/redacteur/reference"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	echoSwagger "github.com/swaggo/echo-swagger"
	_ "github.com/aisa-it/redacteur/internal/redacteur/docs"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@latest init -ot go,json --generalInfo /http.go --parseInternal --propertyStrategy snakecase --dir ./ --output docs --parseDependency 1
//go:generate echo "Generate docs"
//go:generate go run ../../cmd/docsgen/main.go -src apierrors/apierrors.go -out ../../docs/api_errors.md -blocks ../../docs/blocks.md

const apiPrefix = "/api/v1/redacteur/"

type Services struct {
	db       *gorm.DB
	storage  filestorage.FileStorage
	fetcher  *datafetch.Fetcher
	runtimes *blockruntime.Manager
	comments *comments.Store
	stream   *notifications.DocStreamService
	cron     *cronmanager.CronManager

	reg prometheus.Registerer
}

var cfg *config.Config
var appVersion string

// NewServices собирает сервисы редактора. Метрики блоков регистрируются в reg.
func NewServices(db *gorm.DB, c *config.Config, reg prometheus.Registerer) (*Services, error) {
	cfg = c

	var storage filestorage.FileStorage
	var err error
	if c.MinioEnabled() {
		storage, err = filestorage.NewMinioStorage(c.AWSEndpoint, c.AWSAccessKey, c.AWSSecretKey, false, c.AWSBucketName)
	} else {
		storage, err = filestorage.NewLocalStorage(c.FilesPath)
	}
	if err != nil {
		return nil, fmt.Errorf("init file storage: %w", err)
	}

	fetcher, err := datafetch.NewFetcher(c.BackendURL.String(), datafetch.Options{
		RetryMax: c.FetchRetries,
		Timeout:  c.FetchTimeout(),
		Token:    c.BackendToken,
	})
	if err != nil {
		return nil, err
	}

	s := &Services{
		db:       db,
		storage:  storage,
		fetcher:  fetcher,
		comments: comments.NewStore(db),
		stream:   notifications.NewDocStreamService(),
		reg:      reg,
	}

	s.cron = cronmanager.NewCronManager(cronmanager.JobRegistry{
		"orphan_comments_gc": cronmanager.Job{
			Func:     s.collectOrphanComments,
			Schedule: c.OrphanCommentsGC,
		},
	})
	if err := s.cron.LoadJobs(); err != nil {
		return nil, fmt.Errorf("load cron jobs: %w", err)
	}

	s.runtimes = blockruntime.NewManager(blockruntime.Options{
		Fetcher:      fetcher,
		Resolver:     reference.NewResolver(fetcher.Client(), fetcher.Backend(), c.BackendToken, c.FetchTimeout()),
		Scheduler:    s.cron,
		Metrics:      blockruntime.NewMetrics(reg),
		FetchTimeout: c.FetchTimeout(),
		OnChange:     s.onChange,
	}, s.loadContent)

	return s, nil
}

// Close останавливает runtime документов и планировщик.
func (s *Services) Close() {
	s.runtimes.Close()
	s.cron.Stop()
}

func (s *Services) loadContent(ctx context.Context, docId uuid.UUID) (*edtypes.Document, error) {
	var doc dao.Doc
	if err := s.db.WithContext(ctx).Select("id", "content").Where("id = ?", docId).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc.Content, nil
}

// onChange сохраняет содержимое документа и рассылает изменение клиентам.
func (s *Services) onChange(ev blockruntime.Event) {
	if len(ev.Content) > 0 {
		doc, err := tiptap.ParseJSON(bytes.NewReader(ev.Content))
		if err != nil {
			slog.Error("Parse runtime content", "docId", ev.DocId, "err", err)
		} else if err := s.db.Model(&dao.Doc{}).Where("id = ?", ev.DocId).Updates(map[string]any{
			"content":    doc,
			"excerpt":    excerpt(doc),
			"updated_at": time.Now(),
		}).Error; err != nil {
			slog.Error("Save document content", "docId", ev.DocId, "err", err)
		}
	}

	msg := notifications.Message{
		Type:      string(ev.Kind),
		DocId:     ev.DocId.String(),
		BlockId:   ev.BlockId,
		BlockType: string(ev.BlockType),
		Attrs:     ev.Attrs,
		CreatedAt: time.Now(),
	}
	if ev.Kind == blockruntime.EventDocument {
		msg.Content = ev.Content
	}
	s.stream.Send(msg)
}

func (s *Services) collectOrphanComments() {
	n, err := s.comments.CollectOrphans(context.Background(), time.Now().Add(-comments.OrphanGrace))
	if err != nil {
		slog.Error("Collect orphan comments", "err", err)
		return
	}
	if n > 0 {
		slog.Info("Orphan comments removed", "threads", n)
	}
}

// NewEcho создает echo с обработчиком ошибок и валидатором сервиса.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		if code == http.StatusRequestEntityTooLarge {
			EErrorDefined(c, apierrors.ErrEntityToLarge)
			return
		}
		slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
		EErrorMsgStatus(c, nil, code)
	}
	e.Validator = NewRequestValidator()
	return e
}

// Routes подключает middleware и обработчики сервиса.
func (s *Services) Routes(e *echo.Echo, version string) {
	appVersion = version

	e.Use(ServerHeader)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowedOrigins(),
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "10M",
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Path(), "/ws/") ||
				strings.Contains(c.Request().URL.Path, "swagger")
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "redacteur",
		Registerer: s.reg,
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Path(), "/ws/")
		},
	}))
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "swagger")
		},
	}))

	apiGroup := e.Group(apiPrefix)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": appVersion,
			"locale":  cfg.Locale,
			"minio":   cfg.MinioEnabled(),
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if cfg.SwaggerEnable {
		apiGroup.GET("swagger/*", echoSwagger.WrapHandler)
	}

	authGroup := apiGroup.Group("", AuthMiddleware(AuthConfig{
		Secret: []byte(cfg.SecretKey),
		Skipper: func(c echo.Context) bool {
			return c.Path() == apiPrefix+"version/" || c.Path() == apiPrefix+"_health/" ||
				strings.HasPrefix(c.Path(), apiPrefix+"swagger/")
		},
	}))

	s.AddDocServices(authGroup)
	s.AddBlockServices(authGroup)
	s.AddCommentServices(authGroup)
	s.AddFormulaServices(authGroup)
}

func allowedOrigins() []string {
	if cfg.WebURL == nil || cfg.WebURL.Host == "" {
		return []string{"*"}
	}
	return []string{cfg.WebURL.Scheme + "://" + cfg.WebURL.Host}
}

// Server запускает HTTP сервер и сервер метрик, останавливается по SIGINT/SIGTERM.
func Server(db *gorm.DB, c *config.Config, version string) error {
	s, err := NewServices(db, c, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	e := NewEcho()
	s.Routes(e, version)

	s.cron.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Prometheus metrics
	metrics := echo.New()
	metrics.HideBanner = true
	metrics.HidePort = true
	go func() {
		bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "redacteur",
			Name:      "boot_time",
			Help:      "Server startup time",
		})
		bootTimeGauge.Set(float64(time.Now().UnixMilli()))

		if err := prometheus.Register(bootTimeGauge); err != nil {
			slog.Error("Register boot time gauge", "err", err)
		}

		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	go func() {
		slog.Info("Start server", "addr", cfg.ListenAddr, "version", version)
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server fail", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown", "err", err)
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		slog.Error("Metrics server shutdown", "err", err)
	}
	s.Close()
	return nil
}
