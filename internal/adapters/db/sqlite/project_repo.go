package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

type ProjectRepo struct{ *Repo }

func NewProjectRepo(db *sql.DB) *ProjectRepo { return &ProjectRepo{NewRepo(db)} }

const projectCols = "id, name, source_lang, file_type, status, total_chunks, completed_chunks, created_at, updated_at"

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	if p.Status == "" {
		p.Status = domain.StatusDraft
	}
	q := r.SQ.Insert("projects").Columns("name", "source_lang", "file_type", "status", "total_chunks", "completed_chunks", "created_at", "updated_at").
		Values(p.Name, p.SourceLang, p.FileType, string(p.Status), p.TotalChunks, p.CompletedChunks, now.Format(time.RFC3339), now.Format(time.RFC3339))
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *ProjectRepo) Get(ctx context.Context, id int64) (*domain.Project, error) {
	q := r.SQ.Select(projectCols).From("projects").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, ports.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	langs, err := r.ListTargetLangs(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.TargetLangs = langs
	return p, nil
}

func (r *ProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	q := r.SQ.Select(projectCols).From("projects").OrderBy("id DESC")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		langs, err := r.ListTargetLangs(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.TargetLangs = langs
	}
	return out, nil
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	q := r.SQ.Update("projects").
		Set("name", p.Name).
		Set("source_lang", p.SourceLang).
		Set("file_type", p.FileType).
		Set("status", string(p.Status)).
		Set("total_chunks", p.TotalChunks).
		Set("completed_chunks", p.CompletedChunks).
		Set("updated_at", now.Format(time.RFC3339)).
		Where(sq.Eq{"id": p.ID})
	sqlStr, args, _ := q.ToSql()
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func (r *ProjectRepo) UpdateProgress(ctx context.Context, id int64, status domain.Status, completed, total int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Update("projects").
		Set("status", string(status)).
		Set("completed_chunks", completed).
		Set("total_chunks", total).
		Set("updated_at", now).
		Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("projects").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ProjectRepo) AddTargetLang(ctx context.Context, projectID int64, lang string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	q := r.SQ.Insert("project_languages").Columns("project_id", "lang", "created_at").
		Values(projectID, lang, now).
		Suffix("ON CONFLICT(project_id, lang) DO NOTHING")
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ProjectRepo) ListTargetLangs(ctx context.Context, projectID int64) ([]string, error) {
	q := r.SQ.Select("lang").From("project_languages").Where(sq.Eq{"project_id": projectID}).OrderBy("lang")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, err
		}
		out = append(out, lang)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) AddFile(ctx context.Context, f *domain.ProjectFile) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("project_files").Columns("project_id", "name", "size", "content", "detected_type", "uploaded_at").
		Values(f.ProjectID, f.Name, f.Size, f.Content, f.DetectedType, now.Format(time.RFC3339))
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	f.ID = id
	f.UploadedAt = now
	return nil
}

func (r *ProjectRepo) ListFiles(ctx context.Context, projectID int64) ([]*domain.ProjectFile, error) {
	q := r.SQ.Select("id", "project_id", "name", "size", "content", "detected_type", "uploaded_at").
		From("project_files").Where(sq.Eq{"project_id": projectID}).OrderBy("id")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectFile
	for rows.Next() {
		var f domain.ProjectFile
		var uploaded string
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Size, &f.Content, &f.DetectedType, &uploaded); err != nil {
			return nil, err
		}
		f.UploadedAt, _ = time.Parse(time.RFC3339, uploaded)
		out = append(out, &f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var status, created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.SourceLang, &p.FileType, &status, &p.TotalChunks, &p.CompletedChunks, &created, &updated); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	if p.TotalChunks > 0 {
		p.Progress = float64(p.CompletedChunks) / float64(p.TotalChunks)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &p, nil
}
