package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository reads the practitioner catalog from the relational database.
type PostgresRepository struct {
	db dbQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting mocks for tests.
func NewPostgresRepositoryWithDB(db dbQuerier) *PostgresRepository {
	if db == nil {
		panic("catalog: db required")
	}
	return &PostgresRepository{db: db}
}

const practitionerColumns = `id, display_name, specialty, bio, image_url, languages,
		years_experience, price_video, price_chat, rating_avg, rating_count, available, created_at`

// List returns one page of practitioners plus the total match count.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Practitioner, int, error) {
	where, args := buildListWhere(filter)

	var total int
	countQuery := "SELECT count(*) FROM practitioners" + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: count failed: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM practitioners%s ORDER BY %s LIMIT $%d OFFSET $%d",
		practitionerColumns, where, orderClause(filter.Sort), len(args)+1, len(args)+2,
	)
	args = append(args, filter.PerPage, filter.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Practitioner
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("catalog: list rows: %w", err)
	}
	return out, total, nil
}

// GetByID fetches a single practitioner.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Practitioner, error) {
	query := fmt.Sprintf("SELECT %s FROM practitioners WHERE id = $1", practitionerColumns)
	p, err := scanPractitioner(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPractitionerNotFound
		}
		return nil, err
	}
	return p, nil
}

func buildListWhere(filter ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(display_name ILIKE $%d OR specialty ILIKE $%d)", n, n))
	}
	if filter.Specialty != "" && filter.Specialty != "all" {
		args = append(args, filter.Specialty)
		clauses = append(clauses, fmt.Sprintf("specialty = $%d", len(args)))
	}
	if filter.MinRating > 0 {
		args = append(args, filter.MinRating)
		clauses = append(clauses, fmt.Sprintf("rating_avg >= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func orderClause(sort SortOption) string {
	switch sort {
	case SortNameAsc:
		return "display_name ASC"
	case SortNameDesc:
		return "display_name DESC"
	case SortExperienceDesc:
		return "years_experience DESC, display_name ASC"
	case SortPriceAsc:
		return "price_video ASC, display_name ASC"
	default:
		return "rating_avg DESC, rating_count DESC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPractitioner(row rowScanner) (*Practitioner, error) {
	var p Practitioner
	if err := row.Scan(
		&p.ID,
		&p.DisplayName,
		&p.Specialty,
		&p.Bio,
		&p.ImageURL,
		&p.Languages,
		&p.YearsExperience,
		&p.PriceVideo,
		&p.PriceChat,
		&p.RatingAvg,
		&p.RatingCount,
		&p.Available,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("catalog: scan failed: %w", err)
	}
	return &p, nil
}
