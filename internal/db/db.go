package db

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"schoolhub/internal/config"
	"schoolhub/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed roster.json
var rosterFS embed.FS

// Roster lists the people allowed to sign up.
type Roster struct {
	Students []models.RosterStudent `json:"students"`
	Teachers []string               `json:"teachers"`
}

// Open connects to the configured database, migrates the schema and seeds the roster.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DBDriver == "sqlite" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// SQLite allows one writer; one connection also keeps PRAGMA state and :memory: databases alive.
		sqlDB.SetMaxOpenConns(1)
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	log.Info("Database connection established", zap.String("driver", cfg.DBDriver))

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database migration completed")

	roster, err := LoadRoster(cfg.RosterFile)
	if err != nil {
		return nil, err
	}
	if err := SeedRoster(conn, roster); err != nil {
		return nil, fmt.Errorf("failed to seed roster: %w", err)
	}
	log.Info("Roster seeded",
		zap.Int("students", len(roster.Students)),
		zap.Int("teachers", len(roster.Teachers)))

	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Student{},
		&models.Teacher{},
		&models.RosterStudent{},
		&models.RosterTeacher{},
		&models.Post{},
		&models.Comment{},
		&models.CommentAlias{},
		&models.Like{},
		&models.ChatRoom{},
		&models.ChatParticipant{},
		&models.ChatMessage{},
		&models.Meal{},
		&models.PlannerItem{},
		&models.TimetableCell{},
	)
}

// LoadRoster reads the roster from path, or the embedded default when path is empty.
func LoadRoster(path string) (*Roster, error) {
	var (
		raw []byte
		err error
	)
	if path == "" {
		raw, err = rosterFS.ReadFile("roster.json")
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	var roster Roster
	if err := json.Unmarshal(raw, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	return &roster, nil
}

// SeedRoster inserts roster entries that are not present yet.
func SeedRoster(conn *gorm.DB, roster *Roster) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		for _, s := range roster.Students {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error; err != nil {
				return err
			}
		}
		for _, name := range roster.Teachers {
			t := models.RosterTeacher{Name: name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&t).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// IsDuplicateKey reports whether err is a unique constraint violation on either dialect.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign key violation on either dialect.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
