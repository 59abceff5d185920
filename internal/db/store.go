package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Imohh/portfolio-backend/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Admin persistence

func (s *Store) CreateAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO admins (email, password_hash)
		VALUES ($1, $2)
		RETURNING id::text, email, password_hash, created_at, updated_at
	`

	var created models.Admin
	err := s.pool.QueryRow(ctx, query, email, passwordHash).Scan(
		&created.ID,
		&created.Email,
		&created.PasswordHash,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return &created, nil
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id::text, email, password_hash, created_at, updated_at
		FROM admins
		WHERE email = $1
	`
	var admin models.Admin
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &admin, nil
}

func (s *Store) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT id::text, email, password_hash, created_at, updated_at
		FROM admins
		WHERE id = $1
	`
	var admin models.Admin
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin by id: %w", err)
	}
	return &admin, nil
}

// Post persistence

const postColumns = `
	id,
	name,
	author,
	date,
	slug,
	COALESCE(summary, ''),
	COALESCE(cover_image, ''),
	content,
	COALESCE(content_type, ''),
	created_at,
	updated_at
`

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	var content []byte
	err := row.Scan(
		&post.ID,
		&post.Name,
		&post.Author,
		&post.Date,
		&post.Slug,
		&post.Summary,
		&post.CoverImage,
		&content,
		&post.ContentType,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(content, &post.Content); err != nil {
		return nil, fmt.Errorf("decode content blocks: %w", err)
	}
	return &post, nil
}

func (s *Store) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	content, err := json.Marshal(post.Content)
	if err != nil {
		return nil, fmt.Errorf("encode content blocks: %w", err)
	}

	query := `
		INSERT INTO posts (id, name, author, date, slug, summary, cover_image, content, content_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + postColumns

	created, err := scanPost(s.pool.QueryRow(
		ctx,
		query,
		post.ID,
		post.Name,
		post.Author,
		post.Date,
		post.Slug,
		post.Summary,
		post.CoverImage,
		content,
		post.ContentType,
	))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`
	post, err := scanPost(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return post, nil
}

// UpdatePost writes the already-merged mutable fields of a post. Callers
// resolve the merge; the store does a plain last-write-wins row update.
func (s *Store) UpdatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	content, err := json.Marshal(post.Content)
	if err != nil {
		return nil, fmt.Errorf("encode content blocks: %w", err)
	}

	query := `
		UPDATE posts
		SET name = $2,
			summary = $3,
			cover_image = $4,
			content = $5,
			content_type = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + postColumns

	updated, err := scanPost(s.pool.QueryRow(
		ctx,
		query,
		post.ID,
		post.Name,
		post.Summary,
		post.CoverImage,
		content,
		post.ContentType,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) (bool, error) {
	if s.pool == nil {
		return false, errors.New("db not initialized")
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Comment persistence

func (s *Store) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO comments (slug, name, email, text, website)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, slug, name, email, text, COALESCE(website, ''), created_at, updated_at
	`

	var created models.Comment
	err := s.pool.QueryRow(
		ctx,
		query,
		comment.Slug,
		comment.Name,
		comment.Email,
		comment.Text,
		comment.Website,
	).Scan(
		&created.ID,
		&created.Slug,
		&created.Name,
		&created.Email,
		&created.Text,
		&created.Website,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &created, nil
}

func (s *Store) ListCommentsBySlug(ctx context.Context, slug string) ([]models.Comment, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		SELECT id::text, slug, name, email, text, COALESCE(website, ''), created_at, updated_at
		FROM comments
		WHERE slug = $1
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query, slug)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.Slug,
			&comment.Name,
			&comment.Email,
			&comment.Text,
			&comment.Website,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return comments, nil
}
