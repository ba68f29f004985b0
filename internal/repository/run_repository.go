package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cloud-ru/mcp-realty-go/internal/logger"
)

// PlanRun - запись о выполненном расчете плана
type PlanRun struct {
	ID           int64     `json:"id"`
	ScenarioName string    `json:"scenario_name"`
	ScenarioKey  string    `json:"scenario_key"`
	Years        int       `json:"years"`
	SummaryJSON  string    `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunRepository сохраняет историю расчетов
type RunRepository interface {
	Save(ctx context.Context, run PlanRun) (int64, error)
	Recent(ctx context.Context, limit int) ([]PlanRun, error)
}

// SQLiteRunRepository хранит историю в SQLite
type SQLiteRunRepository struct {
	db *sql.DB
}

// NewSQLiteRunRepository открывает базу по пути databasePath и создает таблицу plan_runs
func NewSQLiteRunRepository(databasePath string) (*SQLiteRunRepository, error) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("открытие базы %s: %w", databasePath, err)
	}
	logger.L.Info("Проверка миграций базы", "databasePath", databasePath)

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS plan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario_name TEXT NOT NULL,
		scenario_key TEXT NOT NULL,
		years INTEGER NOT NULL,
		summary TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_plan_runs_key ON plan_runs (scenario_key);`
	if _, err := db.Exec(createTableStatement); err != nil {
		db.Close()
		return nil, fmt.Errorf("создание таблицы plan_runs: %w", err)
	}
	return &SQLiteRunRepository{db: db}, nil
}

func (r *SQLiteRunRepository) Save(ctx context.Context, run PlanRun) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO plan_runs (scenario_name, scenario_key, years, summary, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ScenarioName, run.ScenarioKey, run.Years, run.SummaryJSON, run.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("сохранение расчета: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRunRepository) Recent(ctx context.Context, limit int) ([]PlanRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, scenario_name, scenario_key, years, summary, created_at FROM plan_runs ORDER BY id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("чтение истории: %w", err)
	}
	defer rows.Close()

	var runs []PlanRun
	for rows.Next() {
		var run PlanRun
		if err := rows.Scan(&run.ID, &run.ScenarioName, &run.ScenarioKey, &run.Years, &run.SummaryJSON, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("чтение истории: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close закрывает базу
func (r *SQLiteRunRepository) Close() error {
	return r.db.Close()
}

// MemoryRunRepository хранит историю в памяти
type MemoryRunRepository struct {
	mu   sync.Mutex
	runs []PlanRun
}

// NewMemoryRunRepository создает пустую историю в памяти
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{}
}

func (r *MemoryRunRepository) Save(_ context.Context, run PlanRun) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run.ID = int64(len(r.runs) + 1)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	r.runs = append(r.runs, run)
	return run.ID, nil
}

func (r *MemoryRunRepository) Recent(_ context.Context, limit int) ([]PlanRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PlanRun
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}
