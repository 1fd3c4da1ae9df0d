package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/DanieleGelsomino/djscovery-sub000/internal/pkg/logger"
)

// RunMigrations は未適用のマイグレーションを実行する
func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("マイグレーションドライバー作成に失敗しました: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("マイグレーションインスタンス作成に失敗しました: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("適用すべきマイグレーションなし")
			return nil
		}
		return fmt.Errorf("マイグレーション実行に失敗しました: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("マイグレーションバージョン取得に失敗しました: %w", err)
	}
	logger.Info("マイグレーション適用完了",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
