package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinescore/cinescore/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    image,
    score,
    count,
    created_at,
    updated_at
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title string
	Image string
	Score float64
	Count int64
}

// MovieListFilters encapsulates search and pagination options. Page is
// zero-based; Size is clamped by the caller-supplied bounds in List.
type MovieListFilters struct {
	Title string
	Page  int
	Size  int
}

// MoviePage is one page of the catalog plus the totals needed to render
// page metadata.
type MoviePage struct {
	Items         []domain.Movie
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (title, image, score, count)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, params.Title, params.Image, params.Score, params.Count)
	return scanMovie(row)
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	row := r.pool.QueryRow(ctx, query, id)
	movie, err := scanMovie(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns one page of movies ordered by id ascending. The title filter
// is a case-insensitive substring match. Pages past the end come back with
// empty Items, never an error.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) (MoviePage, error) {
	if filters.Page < 0 {
		filters.Page = 0
	}
	if filters.Size <= 0 {
		filters.Size = 12
	}

	where := ""
	args := make([]interface{}, 0, 3)
	if title := strings.TrimSpace(filters.Title); title != "" {
		args = append(args, "%"+title+"%")
		where = fmt.Sprintf(" WHERE title ILIKE $%d", len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM movies" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return MoviePage{}, fmt.Errorf("count movies: %w", err)
	}

	args = append(args, filters.Size)
	limitParam := len(args)
	args = append(args, filters.Page*filters.Size)
	offsetParam := len(args)

	query := fmt.Sprintf(`SELECT %s FROM movies%s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		movieColumns, where, limitParam, offsetParam)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return MoviePage{}, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Movie, 0, filters.Size)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return MoviePage{}, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MoviePage{}, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(filters.Size) - 1) / int64(filters.Size))
	}

	return MoviePage{
		Items:         items,
		Page:          filters.Page,
		Size:          filters.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// CompareAndSwapScore applies a new (score, count) aggregate to a movie, but
// only if its count still matches expectedCount. Count increments with every
// accepted submission, so it doubles as the row version: a stale expectation
// means a concurrent writer got there first and the swap reports false with
// no change applied.
func (r *MoviesRepository) CompareAndSwapScore(ctx context.Context, id, expectedCount int64, score float64, count int64) (domain.Movie, bool, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET score = $3,
            count = $4,
            updated_at = now()
        WHERE id = $1 AND count = $2
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, id, expectedCount, score, count)
	movie, err := scanMovie(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, false, nil
		}
		return domain.Movie{}, false, fmt.Errorf("swap score: %w", err)
	}
	return movie, true, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Image,
		&movie.Score,
		&movie.Count,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
