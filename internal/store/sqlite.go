package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"crest/internal/analysis/pattern"
)

// ErrAnalysisNotFound 按 id 查询未命中。
var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisRecord 一条已入库的检测结果。
type AnalysisRecord struct {
	ID         string           `json:"id"`
	Symbol     string           `json:"symbol"`
	Interval   string           `json:"interval"`
	Kind       string           `json:"kind"`
	Confidence float64          `json:"confidence"`
	DetectedAt int64            `json:"detected_at"`
	Analysis   pattern.Analysis `json:"analysis"`
}

// AnalysisStore 以 SQLite 持久化检测结果。结果体整体按 JSON 存 payload 列，
// 常用过滤字段（symbol/kind/confidence）单独建列。
type AnalysisStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenAnalysisStore 打开（必要时创建）数据库并执行建表。
func OpenAnalysisStore(path string) (*AnalysisStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败: %w", err)
	}
	s := &AnalysisStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *AnalysisStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			kind TEXT NOT NULL,
			confidence REAL NOT NULL,
			detected_at INTEGER NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol, detected_at)`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(context.Background(), q); err != nil {
			return fmt.Errorf("建表失败: %w", err)
		}
	}
	return nil
}

// SaveBatch 将一次检测的全部命中入库，返回带 id 的记录。
func (s *AnalysisStore) SaveBatch(ctx context.Context, symbol, interval string, analyses []pattern.Analysis) ([]AnalysisRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("analysis store 未初始化")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol 不能为空")
	}
	now := time.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out := make([]AnalysisRecord, 0, len(analyses))
	for _, a := range analyses {
		payload, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("序列化检测结果失败: %w", err)
		}
		rec := AnalysisRecord{
			ID:         uuid.NewString(),
			Symbol:     symbol,
			Interval:   interval,
			Kind:       string(a.Kind),
			Confidence: a.Confidence,
			DetectedAt: now,
			Analysis:   a,
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO analyses (id, symbol, interval, kind, confidence, detected_at, payload)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Symbol, rec.Interval, rec.Kind, rec.Confidence, rec.DetectedAt, string(payload))
		if err != nil {
			return nil, fmt.Errorf("写入检测结果失败: %w", err)
		}
		out = append(out, rec)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get 按 id 取单条记录。
func (s *AnalysisStore) Get(ctx context.Context, id string) (AnalysisRecord, error) {
	if s == nil || s.db == nil {
		return AnalysisRecord{}, fmt.Errorf("analysis store 未初始化")
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, interval, kind, confidence, detected_at, payload FROM analyses WHERE id = ?`, id)
	return scanRecord(row)
}

// List 按可选 symbol 过滤，按入库时间倒序取最近 limit 条。
func (s *AnalysisStore) List(ctx context.Context, symbol string, limit int) ([]AnalysisRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("analysis store 未初始化")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	query := `SELECT id, symbol, interval, kind, confidence, detected_at, payload FROM analyses`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY detected_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close 关闭底层数据库。
func (s *AnalysisStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (AnalysisRecord, error) {
	var rec AnalysisRecord
	var payload string
	err := row.Scan(&rec.ID, &rec.Symbol, &rec.Interval, &rec.Kind, &rec.Confidence, &rec.DetectedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return AnalysisRecord{}, ErrAnalysisNotFound
	}
	if err != nil {
		return AnalysisRecord{}, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Analysis); err != nil {
		return AnalysisRecord{}, fmt.Errorf("解析 payload 失败: %w", err)
	}
	return rec, nil
}
