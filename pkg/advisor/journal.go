package advisor

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Fixed-width so created_at sorts lexically.
const journalTimeLayout = "2006-01-02T15:04:05.000000000Z"

func initJournal(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			strategy TEXT NOT NULL,
			symbol TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL,
			params_json TEXT NOT NULL DEFAULT '{}',
			recommendation TEXT,
			justification TEXT,
			error TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		return err
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)"); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Core) recordAnalysis(ctx context.Context, req AnalysisRequest, provider string, resp AnalysisResponse, duration time.Duration) {
	if c.db == nil {
		return
	}
	id, err := c.insertAnalysis(ctx, req, provider, resp, duration)
	if err != nil {
		c.logger.WarnContext(ctx, "journal write failed", "err", err)
		return
	}
	c.logger.DebugContext(ctx, "analysis journaled", "id", id)
}

func (c *Core) insertAnalysis(ctx context.Context, req AnalysisRequest, provider string, resp AnalysisResponse, duration time.Duration) (string, error) {
	params, err := json.Marshal(req.Params)
	if err != nil {
		return "", err
	}
	symbol, _ := SymbolFrom(req.Params)

	var recommendation, justification, errorText sql.NullString
	if resp.Failed() {
		errorText = sql.NullString{String: resp.Error, Valid: true}
	} else {
		recommendation = sql.NullString{String: string(resp.Recommendation), Valid: true}
		justification = sql.NullString{String: resp.Justification, Valid: true}
	}

	id := uuid.NewString()
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO analyses (id, strategy, symbol, provider, params_json, recommendation, justification, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, req.Strategy, symbol, provider, string(params), recommendation, justification, errorText,
		duration.Milliseconds(), time.Now().UTC().Format(journalTimeLayout))
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListAnalyses returns journaled analyses, newest first.
func (c *Core) ListAnalyses(ctx context.Context, limit, offset int) ([]AnalysisRecord, error) {
	if c.db == nil {
		return nil, NewError(ErrCodeJournalDisabled, "analysis journal is disabled")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := c.db.QueryContext(ctx,
		"SELECT id, strategy, symbol, provider, params_json, recommendation, justification, error, duration_ms, created_at FROM analyses ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query analyses", err)
	}
	defer rows.Close()

	records := []AnalysisRecord{}
	for rows.Next() {
		var record AnalysisRecord
		var params string
		var recommendation, justification, errorText, createdAt sql.NullString
		if err := rows.Scan(&record.ID, &record.Strategy, &record.Symbol, &record.Provider, &params,
			&recommendation, &justification, &errorText, &record.DurationMS, &createdAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan analysis", err)
		}
		if err := json.Unmarshal([]byte(params), &record.Parameters); err != nil {
			return nil, WrapError(ErrCodeDatabase, "decode analysis parameters", err)
		}
		if recommendation.Valid {
			record.Recommendation = &recommendation.String
		}
		if justification.Valid {
			record.Justification = &justification.String
		}
		if errorText.Valid {
			record.Error = &errorText.String
		}
		if createdAt.Valid {
			record.CreatedAt = createdAt.String
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "iterate analyses", err)
	}
	return records, nil
}
