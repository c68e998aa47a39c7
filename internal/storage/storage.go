package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound 查询的记录不存在
var ErrNotFound = errors.New("记录不存在")

// DB SQLite 存储，承载报告与目标两张表
type DB struct {
	db *sql.DB
}

// Open 打开（或创建）数据库并初始化表结构
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		session_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		manager_json TEXT NOT NULL,
		member_json TEXT NOT NULL,
		performed_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS goals (
		member_id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_performed_at ON reports(performed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
