package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-face-attendance/assets"
	"github.com/ogurasousui/codex-face-attendance/internal/platform/config"
)

const (
	vectorExtension  = "vector"
	preflightTimeout = 10 * time.Second
)

var errVectorUnavailable = errors.New("pgvector extension is not available on the database server; install pgvector (for example the pgvector/pgvector image) before migrating")

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "", "directory containing migration files (defaults to the migrations built into the binary)")
	)
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}
	if err := validateAction(action); err != nil {
		log.Fatal(err)
	}

	cfgPath := effectiveConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	dsn := cfg.Database.DSN()

	if action == "up" {
		if err := preflight(dsn); err != nil {
			log.Fatalf("migration %s aborted: %v", action, err)
		}
	}

	src, name, err := openSource(*migrationsDir)
	if err != nil {
		log.Fatalf("failed to open migrations: %v", err)
	}

	if err := runMigration(action, src, name, dsn); err != nil {
		log.Fatalf("migration %s failed: %v", action, err)
	}

	log.Printf("migration %s completed (source=%s)", action, name)
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

// openSource は dir が空なら埋め込みのマイグレーションを、指定があればそのディレクトリを開きます。
func openSource(dir string) (source.Driver, string, error) {
	if dir == "" {
		drv, err := iofs.New(assets.Migrations, assets.MigrationsRoot)
		if err != nil {
			return nil, "", fmt.Errorf("open embedded migrations: %w", err)
		}
		return drv, "embedded", nil
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	url := "file://" + filepath.ToSlash(absDir)
	drv, err := (&file.File{}).Open(url)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", url, err)
	}
	return drv, url, nil
}

type rowQueryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func preflight(dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), preflightTimeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	return checkVectorExtension(ctx, conn)
}

// checkVectorExtension は employees.face_descriptor に必要な pgvector が導入可能かを確認します。
func checkVectorExtension(ctx context.Context, q rowQueryer) error {
	var installed sql.NullString
	err := q.QueryRow(ctx, `SELECT installed_version FROM pg_available_extensions WHERE name = $1`, vectorExtension).Scan(&installed)
	if errors.Is(err, pgx.ErrNoRows) {
		return errVectorUnavailable
	}
	if err != nil {
		return fmt.Errorf("check %s extension: %w", vectorExtension, err)
	}
	if installed.Valid {
		log.Printf("%s extension installed (version %s)", vectorExtension, installed.String)
	}
	return nil
}

func validateAction(action string) error {
	switch action {
	case "up", "down", "drop", "version":
		return nil
	default:
		return fmt.Errorf("unsupported action %q (want up, down, drop or version)", action)
	}
}

func runMigration(action string, src source.Driver, name, dsn string) error {
	m, err := migrate.NewWithSourceInstance(name, src, dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Printf("no migration applied")
				return nil
			}
			return err
		}
		log.Printf("version=%d dirty=%t", version, dirty)
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
