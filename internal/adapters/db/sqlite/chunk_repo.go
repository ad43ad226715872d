package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
)

type ChunkRepo struct{ *Repo }

func NewChunkRepo(db *sql.DB) *ChunkRepo { return &ChunkRepo{NewRepo(db)} }

const chunkCols = "id, project_id, seq, target_lang, source_text, translated_text, outcome, attempts, last_error, created_at, updated_at"

func (r *ChunkRepo) CreateBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, c := range chunks {
			if c.Outcome == "" {
				c.Outcome = domain.OutcomePending
			}
			q := r.SQ.Insert("chunks").
				Columns("project_id", "seq", "target_lang", "source_text", "translated_text", "outcome", "attempts", "last_error", "created_at", "updated_at").
				Values(c.ProjectID, c.Seq, c.TargetLang, c.SourceText, c.TranslatedText, string(c.Outcome), c.Attempts, c.LastError, now.Format(time.RFC3339), now.Format(time.RFC3339))
			sqlStr, args, _ := q.ToSql()
			res, err := tx.ExecContext(ctx, sqlStr, args...)
			if err != nil {
				return err
			}
			id, _ := res.LastInsertId()
			c.ID = id
			c.CreatedAt = now
			c.UpdatedAt = now
		}
		return nil
	})
}

func (r *ChunkRepo) Get(ctx context.Context, id int64) (*domain.Chunk, error) {
	q := r.SQ.Select(chunkCols).From("chunks").Where(sq.Eq{"id": id}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	c, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ChunkRepo) ListByProject(ctx context.Context, projectID int64) ([]*domain.Chunk, error) {
	q := r.SQ.Select(chunkCols).From("chunks").Where(sq.Eq{"project_id": projectID}).OrderBy("target_lang", "seq")
	return r.queryChunks(ctx, q)
}

func (r *ChunkRepo) ListByProjectLang(ctx context.Context, projectID int64, lang string) ([]*domain.Chunk, error) {
	q := r.SQ.Select(chunkCols).From("chunks").Where(sq.Eq{"project_id": projectID, "target_lang": lang}).OrderBy("seq")
	return r.queryChunks(ctx, q)
}

func (r *ChunkRepo) UpdateOutcome(ctx context.Context, id int64, outcome domain.Outcome, translated string, attempts int, lastError string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Update("chunks").
		Set("outcome", string(outcome)).
		Set("translated_text", translated).
		Set("attempts", attempts).
		Set("last_error", lastError).
		Set("updated_at", now).
		Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ChunkRepo) ResetFailed(ctx context.Context, projectID int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	// last_error is kept so the previous failure stays visible until the
	// retried attempt overwrites it.
	q := r.SQ.Update("chunks").
		Set("outcome", string(domain.OutcomePending)).
		Set("attempts", 0).
		Set("updated_at", now).
		Where(sq.Eq{"project_id": projectID, "outcome": string(domain.OutcomeFailed)})
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *ChunkRepo) CountByProject(ctx context.Context, projectID int64) (int, error) {
	q := r.SQ.Select("COUNT(*)").From("chunks").Where(sq.Eq{"project_id": projectID})
	sqlStr, args, _ := q.ToSql()
	var n int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ChunkRepo) queryChunks(ctx context.Context, q sq.SelectBuilder) ([]*domain.Chunk, error) {
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var c domain.Chunk
	var outcome, created, updated string
	if err := row.Scan(&c.ID, &c.ProjectID, &c.Seq, &c.TargetLang, &c.SourceText, &c.TranslatedText, &outcome, &c.Attempts, &c.LastError, &created, &updated); err != nil {
		return nil, err
	}
	c.Outcome = domain.Outcome(outcome)
	c.CreatedAt, _ = time.Parse(time.RFC3339, created)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &c, nil
}
