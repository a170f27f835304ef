package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Connect opens the database and returns the handle. Callers pass the
// handle explicitly to every handler constructor; there is no package
// global to leak connection state between requests.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
