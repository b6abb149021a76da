package baking

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/spaghettifunk/lume/engine/core"
)

// BakeRecord is one finished capture as stored in the catalog.
type BakeRecord struct {
	ID        uint   `gorm:"primaryKey"`
	NodeID    uint32 `gorm:"index"`
	NodeName  string
	File      string
	Width     uint32
	Height    uint32
	Technique string
	Duration  time.Duration
	CreatedAt time.Time
}

// Catalog persists finished bakes in a SQLite database so editors and
// tooling can find previously baked images without rescanning the
// output directory.
type Catalog struct {
	db *gorm.DB
}

// OpenCatalog opens or creates the catalog database at path and runs
// the schema migration.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("could not open bake catalog %s: %w", path, err)
	}
	if err := db.AutoMigrate(&BakeRecord{}); err != nil {
		return nil, fmt.Errorf("bake catalog migration failed: %w", err)
	}
	core.LogDebug("bake catalog opened at %s", path)
	return &Catalog{db: db}, nil
}

// Record stores one finished bake.
func (c *Catalog) Record(record *BakeRecord) error {
	return c.db.Create(record).Error
}

// ByNode returns all recorded bakes of a node, newest first.
func (c *Catalog) ByNode(nodeID uint32) ([]BakeRecord, error) {
	var records []BakeRecord
	err := c.db.Where("node_id = ?", nodeID).Order("created_at desc").Find(&records).Error
	return records, err
}

// Recent returns the n most recent bakes across all nodes.
func (c *Catalog) Recent(n int) ([]BakeRecord, error) {
	var records []BakeRecord
	err := c.db.Order("created_at desc").Limit(n).Find(&records).Error
	return records, err
}

func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
