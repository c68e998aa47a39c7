package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ReportRecord 持久化的会谈报告，manager/member 两个视图以 JSON 原文存储
type ReportRecord struct {
	SessionID   string
	RunID       string
	ManagerJSON string
	MemberJSON  string
	PerformedAt time.Time
}

// ReportStore 报告存储：按会谈标识保存，重复分析整体覆盖（last-write-wins）
type ReportStore struct {
	db *sql.DB
}

func NewReportStore(d *DB) *ReportStore {
	return &ReportStore{db: d.db}
}

// Save 保存报告，同一 session_id 的旧报告被完整覆盖
func (s *ReportStore) Save(ctx context.Context, rec *ReportRecord) error {
	query := `
	INSERT INTO reports (session_id, run_id, manager_json, member_json, performed_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		run_id = excluded.run_id,
		manager_json = excluded.manager_json,
		member_json = excluded.member_json,
		performed_at = excluded.performed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.SessionID, rec.RunID, rec.ManagerJSON, rec.MemberJSON, rec.PerformedAt)
	if err != nil {
		return fmt.Errorf("保存报告失败: %w", err)
	}
	return nil
}

// Get 按会谈标识查询报告，从未分析过的会谈返回 ErrNotFound
func (s *ReportStore) Get(ctx context.Context, sessionID string) (*ReportRecord, error) {
	query := `
	SELECT session_id, run_id, manager_json, member_json, performed_at
	FROM reports WHERE session_id = ?
	`
	var rec ReportRecord
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&rec.SessionID, &rec.RunID, &rec.ManagerJSON, &rec.MemberJSON, &rec.PerformedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询报告失败: %w", err)
	}
	return &rec, nil
}

// PruneBefore 删除指定时间之前的报告，返回删除条数
func (s *ReportStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE performed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("清理过期报告失败: %w", err)
	}
	return res.RowsAffected()
}
