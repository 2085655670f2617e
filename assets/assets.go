// Package assets はバイナリに埋め込むスキーマ定義を提供します。
package assets

import "embed"

// Migrations は golang-migrate 形式のマイグレーションです。ルートは "migrations" です。
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsRoot は Migrations 内のマイグレーションのディレクトリです。
const MigrationsRoot = "migrations"
