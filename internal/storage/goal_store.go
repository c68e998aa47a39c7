package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GoalStore 成员目标存储
type GoalStore struct {
	db *sql.DB
}

func NewGoalStore(d *DB) *GoalStore {
	return &GoalStore{db: d.db}
}

// Upsert 写入或更新成员的目标文本
func (s *GoalStore) Upsert(ctx context.Context, memberID, content string) error {
	query := `
	INSERT INTO goals (member_id, content, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(member_id) DO UPDATE SET
		content = excluded.content,
		updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, memberID, content, time.Now())
	if err != nil {
		return fmt.Errorf("保存目标失败: %w", err)
	}
	return nil
}

// GetByMember 查询成员的目标文本，不存在时返回 ErrNotFound
func (s *GoalStore) GetByMember(ctx context.Context, memberID string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM goals WHERE member_id = ?`, memberID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("查询目标失败: %w", err)
	}
	return content, nil
}
