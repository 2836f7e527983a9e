package database

import (
	"fmt"
	"testing"
)

type row struct {
	ID   int64  `gorm:"primaryKey"`
	Name string
}

func TestConnectSQLiteFallback(t *testing.T) {
	dsn := fmt.Sprintf("file:db_test_%s?mode=memory&cache=shared", t.Name())
	db, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	if err := db.AutoMigrate(&row{}); err != nil {
		t.Fatalf("AutoMigrate returned error: %v", err)
	}

	if err := db.Create(&row{Name: "ok"}).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	var got row
	if err := db.First(&got).Error; err != nil {
		t.Fatalf("First returned error: %v", err)
	}
	if got.Name != "ok" {
		t.Fatalf("expected stored row, got %+v", got)
	}
}
