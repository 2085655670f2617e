package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/scan"
)

// Scanner はスキャン判定を実行します。
type Scanner interface {
	ProcessScan(ctx context.Context, req scan.Request) (*scan.Outcome, error)
}

// DefaultMaxBodyBytes はスキャン要求本文の既定の上限です。
const DefaultMaxBodyBytes = 8 << 20

// RouterConfig はルーター構築時の設定です。MaxBodyBytes が 0 以下なら DefaultMaxBodyBytes を用います。
type RouterConfig struct {
	AllowOrigins []string
	Location     *time.Location
	MaxBodyBytes int64
}

// Handler は端末向け HTTP API のハンドラです。
type Handler struct {
	scanner      Scanner
	svc          attendance.UseCase
	loc          *time.Location
	maxBodyBytes int64
}

// NewRouter はルーティングとミドルウェアを設定した gin エンジンを返します。
func NewRouter(cfg RouterConfig, scanner Scanner, svc attendance.UseCase) *gin.Engine {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if len(cfg.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.AllowOrigins,
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"Content-Length"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	h := &Handler{scanner: scanner, svc: svc, loc: loc, maxBodyBytes: maxBody}
	api := r.Group("/api/v1")
	RegisterRoutes(api, h)
	return r
}

// RegisterRoutes は API ルートを登録します。
func RegisterRoutes(r gin.IRoutes, h *Handler) {
	r.POST("/attendance/scan", h.Scan)
	r.GET("/attendances", h.ListAttendances)
	r.GET("/attendances/summary", h.GetAttendanceSummary)
}
