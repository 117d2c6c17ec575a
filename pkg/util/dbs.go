package util

import (
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func createDatabaseInstance(cfg *gorm.Config, driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "mysql":
		return gorm.Open(mysql.Open(dsn), cfg)
	case "pg":
		return gorm.Open(postgres.Open(dsn), cfg)
	}
	if dsn == "" {
		dsn = "file::memory:"
	}
	return gorm.Open(sqlite.Open(dsn), cfg)
}

// ConnectDatabase opens the configured database. TranslateError is on so
// unique-constraint violations surface as gorm.ErrDuplicatedKey across
// drivers.
func ConnectDatabase(driver, dsn string) (*gorm.DB, error) {
	return createDatabaseInstance(&gorm.Config{TranslateError: true}, driver, dsn)
}

// CloseDatabase releases the underlying sql.DB connection pool.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
