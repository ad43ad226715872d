package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
)

type TemplateRepo struct{ *Repo }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{NewRepo(db)} }

// GetEffective resolves the template for (scope, refID, type, role), falling
// back from the requested scope to global when no scoped row exists.
func (r *TemplateRepo) GetEffective(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	if scope != "global" && refID != nil {
		t, err := r.find(ctx, scope, refID, typ, role)
		if err != nil {
			return nil, err
		}
		if t != nil {
			return t, nil
		}
	}
	return r.find(ctx, "global", nil, typ, role)
}

func (r *TemplateRepo) find(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	where := sq.Eq{"scope": scope, "type": typ, "role": role}
	if refID != nil {
		where["ref_id"] = *refID
	} else {
		where["ref_id"] = nil
	}
	q := r.SQ.Select("id", "scope", "ref_id", "type", "role", "body", "is_default", "updated_at").
		From("templates").Where(where).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var t domain.Template
	var ref sql.NullInt64
	var updated string
	if err := row.Scan(&t.ID, &t.Scope, &ref, &t.Type, &t.Role, &t.Body, &t.IsDefault, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if ref.Valid {
		v := ref.Int64
		t.RefID = &v
	}
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &t, nil
}

func (r *TemplateRepo) Upsert(ctx context.Context, t *domain.Template) error {
	now := time.Now().UTC()
	existing, err := r.find(ctx, t.Scope, t.RefID, t.Type, t.Role)
	if err != nil {
		return err
	}
	if existing != nil {
		q := r.SQ.Update("templates").Set("body", t.Body).Set("is_default", t.IsDefault).
			Set("updated_at", now.Format(time.RFC3339)).Where(sq.Eq{"id": existing.ID})
		sqlStr, args, _ := q.ToSql()
		if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
		t.ID = existing.ID
		t.UpdatedAt = now
		return nil
	}
	q := r.SQ.Insert("templates").Columns("scope", "ref_id", "type", "role", "body", "is_default", "updated_at").
		Values(t.Scope, t.RefID, t.Type, t.Role, t.Body, t.IsDefault, now.Format(time.RFC3339))
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	t.ID = id
	t.UpdatedAt = now
	return nil
}
