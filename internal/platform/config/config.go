package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Matcher    MatcherConfig    `yaml:"matcher"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Attendance AttendanceConfig `yaml:"attendance"`
	Roster     RosterConfig     `yaml:"roster"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// HTTPConfig はモバイル端末向け HTTP API の設定です。ListenAddr が空の場合は起動しません。
type HTTPConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	AllowOrigins       []string      `yaml:"allow_origins"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
	// MaxBodyBytes はスキャン要求本文の上限です。画像は base64 で本文に含まれます。
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// MatcherConfig は顔照合の設定です。
type MatcherConfig struct {
	Threshold             float64 `yaml:"threshold"`
	ParallelMinCandidates int     `yaml:"parallel_min_candidates"`
	Workers               int     `yaml:"workers"`
}

// ExtractorConfig は顔記述子抽出サービスの設定です。
type ExtractorConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
	Warmup     bool          `yaml:"warmup"`
}

// AttendanceConfig は遅刻判定の設定です。
type AttendanceConfig struct {
	Timezone       string         `yaml:"timezone"`
	WorkStart      string         `yaml:"work_start"`
	GracePeriod    time.Duration  `yaml:"-"`
	GracePeriodRaw string         `yaml:"grace_period"`
	Location       *time.Location `yaml:"-"`
}

// RosterConfig は照合候補キャッシュの設定です。
type RosterConfig struct {
	CacheTTL       time.Duration `yaml:"-"`
	CacheTTLRaw    string        `yaml:"cache_ttl"`
	LoadTimeout    time.Duration `yaml:"-"`
	LoadTimeoutRaw string        `yaml:"load_timeout"`
}

const (
	defaultThreshold       = 0.55
	defaultExtractTimeout  = 10 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultGracePeriod     = 15 * time.Minute
	defaultWorkStart       = "09:00"
	defaultCacheTTL        = 30 * time.Second
	defaultLoadTimeout     = 10 * time.Second
	defaultMaxBodyBytes    = 8 << 20
)

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.HTTP.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Matcher.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Extractor.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Attendance.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Roster.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (h *HTTPConfig) validateAndNormalize() error {
	timeout, err := parseDurationAllowEmpty(h.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: http.shutdown_timeout: %w", err)
	}
	if timeout == 0 {
		timeout = defaultShutdownTimeout
	}
	h.ShutdownTimeout = timeout

	if h.MaxBodyBytes < 0 {
		return fmt.Errorf("config: http.max_body_bytes must not be negative")
	}
	if h.MaxBodyBytes == 0 {
		h.MaxBodyBytes = defaultMaxBodyBytes
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (m *MatcherConfig) validateAndNormalize() error {
	if m.Threshold == 0 {
		m.Threshold = defaultThreshold
	}
	if m.Threshold < 0 {
		return fmt.Errorf("config: matcher.threshold must be positive")
	}
	if m.ParallelMinCandidates < 0 || m.Workers < 0 {
		return fmt.Errorf("config: matcher.parallel_min_candidates and matcher.workers must not be negative")
	}
	return nil
}

func (e *ExtractorConfig) validateAndNormalize() error {
	if e.Endpoint == "" {
		return fmt.Errorf("config: extractor.endpoint must be set")
	}
	if _, err := url.ParseRequestURI(e.Endpoint); err != nil {
		return fmt.Errorf("config: extractor.endpoint: %w", err)
	}

	timeout, err := parseDurationAllowEmpty(e.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: extractor.timeout: %w", err)
	}
	if timeout == 0 {
		timeout = defaultExtractTimeout
	}
	e.Timeout = timeout
	return nil
}

func (a *AttendanceConfig) validateAndNormalize() error {
	if a.Timezone == "" {
		a.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return fmt.Errorf("config: attendance.timezone: %w", err)
	}
	a.Location = loc

	if a.WorkStart == "" {
		a.WorkStart = defaultWorkStart
	}
	if _, err := time.Parse("15:04", a.WorkStart); err != nil {
		return fmt.Errorf("config: attendance.work_start must be HH:MM: %w", err)
	}

	if a.GracePeriodRaw == "" {
		a.GracePeriod = defaultGracePeriod
		return nil
	}
	grace, err := time.ParseDuration(a.GracePeriodRaw)
	if err != nil {
		return fmt.Errorf("config: attendance.grace_period: %w", err)
	}
	if grace < 0 {
		return fmt.Errorf("config: attendance.grace_period must not be negative")
	}
	a.GracePeriod = grace
	return nil
}

func (r *RosterConfig) validateAndNormalize() error {
	ttl, err := parseDurationAllowEmpty(r.CacheTTLRaw)
	if err != nil {
		return fmt.Errorf("config: roster.cache_ttl: %w", err)
	}
	if ttl == 0 {
		ttl = defaultCacheTTL
	}
	r.CacheTTL = ttl

	loadTimeout, err := parseDurationAllowEmpty(r.LoadTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: roster.load_timeout: %w", err)
	}
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	r.LoadTimeout = loadTimeout
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
