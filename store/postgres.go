package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore implements Store on top of a pgxpool.Pool. Constraint
// violations are translated into the portable error types defined in this
// package so services never see driver errors.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore around an existing pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

// mapPgError converts pgconn constraint errors into portable store errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &UniqueViolationError{Constraint: pgErr.ConstraintName}
		case pgForeignKeyViolation:
			return &ForeignKeyViolationError{Constraint: pgErr.ConstraintName}
		}
	}
	return err
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, u *User) (*User, error) {
	query := `INSERT INTO users (name, email, password_hash)
              VALUES ($1, $2, $3)
              RETURNING id, created_at`
	err := s.db.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`
	var u User
	err := s.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`
	var u User
	err := s.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM users ORDER BY id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Follow edges are plain associations and go with the user; owned
	// content (posts, tags, photos) blocks the delete via FK RESTRICT.
	if _, err := tx.Exec(ctx, `DELETE FROM followers WHERE follower_id = $1 OR followed_id = $1`, id); err != nil {
		return mapPgError(err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// --- Follow edges ---

func (s *PostgresStore) Follow(ctx context.Context, followerID, followedID int64) error {
	query := `INSERT INTO followers (follower_id, followed_id)
              VALUES ($1, $2)
              ON CONFLICT DO NOTHING`
	if _, err := s.db.Exec(ctx, query, followerID, followedID); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (s *PostgresStore) Unfollow(ctx context.Context, followerID, followedID int64) error {
	query := `DELETE FROM followers WHERE follower_id = $1 AND followed_id = $2`
	if _, err := s.db.Exec(ctx, query, followerID, followedID); err != nil {
		return err
	}
	return nil
}

func (s *PostgresStore) Followers(ctx context.Context, userID int64) ([]User, error) {
	query := `SELECT u.id, u.name, u.email, u.password_hash, u.created_at
              FROM users u
              JOIN followers f ON f.follower_id = u.id
              WHERE f.followed_id = $1
              ORDER BY u.id`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *PostgresStore) Following(ctx context.Context, userID int64) ([]User, error) {
	query := `SELECT u.id, u.name, u.email, u.password_hash, u.created_at
              FROM users u
              JOIN followers f ON f.followed_id = u.id
              WHERE f.follower_id = $1
              ORDER BY u.id`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// --- Posts ---

func (s *PostgresStore) CreatePost(ctx context.Context, p *Post) (*Post, error) {
	query := `INSERT INTO posts (user_id, title, content)
              VALUES ($1, $2, $3)
              RETURNING id, upvotes, downvotes, created_at`
	err := s.db.QueryRow(ctx, query, p.UserID, p.Title, p.Content).Scan(&p.ID, &p.Upvotes, &p.Downvotes, &p.CreatedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return p, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id int64) (*Post, error) {
	query := `SELECT id, user_id, title, content, upvotes, downvotes, created_at FROM posts WHERE id = $1`
	var p Post
	err := s.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Upvotes, &p.Downvotes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]Post, error) {
	query := `SELECT id, user_id, title, content, upvotes, downvotes, created_at FROM posts ORDER BY id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (s *PostgresStore) ListPostViews(ctx context.Context) ([]PostView, error) {
	// The author join is LEFT so a dangling user_id degrades the row instead
	// of dropping it from the listing.
	query := `SELECT p.id, p.user_id, p.title, p.content, p.upvotes, p.downvotes, p.created_at,
                     u.name, u.email, ph.id
              FROM posts p
              LEFT JOIN users u ON u.id = p.user_id
              LEFT JOIN LATERAL (
                  SELECT id FROM photos WHERE post_id = p.id ORDER BY id LIMIT 1
              ) ph ON true
              ORDER BY p.id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []PostView
	for rows.Next() {
		var v PostView
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.Title, &v.Content, &v.Upvotes, &v.Downvotes, &v.CreatedAt,
			&v.AuthorName, &v.AuthorEmail, &v.PhotoID,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *PostgresStore) UpdatePost(ctx context.Context, id int64, title, content *string) (*Post, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *title)
		argID++
	}
	if content != nil {
		setClauses = append(setClauses, fmt.Sprintf("content = $%d", argID))
		args = append(args, *content)
		argID++
	}
	if len(setClauses) == 0 {
		return s.GetPost(ctx, id)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d
              RETURNING id, user_id, title, content, upvotes, downvotes, created_at`,
		strings.Join(setClauses, ", "), argID)

	var p Post
	err := s.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Upvotes, &p.Downvotes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id int64) ([]string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, id); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `DELETE FROM photos WHERE post_id = $1 RETURNING location`, id)
	if err != nil {
		return nil, err
	}
	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			rows.Close()
			return nil, err
		}
		locations = append(locations, loc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return nil, mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return locations, nil
}

func (s *PostgresStore) UpvotePost(ctx context.Context, id int64) (int, error) {
	return s.incrementVote(ctx, id, "upvotes")
}

func (s *PostgresStore) DownvotePost(ctx context.Context, id int64) (int, error) {
	return s.incrementVote(ctx, id, "downvotes")
}

// incrementVote bumps a counter in a single statement so concurrent votes
// never lose updates.
func (s *PostgresStore) incrementVote(ctx context.Context, id int64, column string) (int, error) {
	query := fmt.Sprintf(`UPDATE posts SET %s = %s + 1 WHERE id = $1 RETURNING %s`, column, column, column)
	var count int
	err := s.db.QueryRow(ctx, query, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return count, nil
}

// --- Tags ---

func (s *PostgresStore) CreateTag(ctx context.Context, t *Tag) (*Tag, error) {
	query := `INSERT INTO tags (user_id, name) VALUES ($1, $2) RETURNING id`
	err := s.db.QueryRow(ctx, query, t.UserID, t.Name).Scan(&t.ID)
	if err != nil {
		return nil, mapPgError(err)
	}
	return t, nil
}

func (s *PostgresStore) GetTag(ctx context.Context, id int64) (*Tag, error) {
	query := `SELECT id, user_id, name FROM tags WHERE id = $1`
	var t Tag
	err := s.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) ListTags(ctx context.Context) ([]Tag, error) {
	query := `SELECT id, user_id, name FROM tags ORDER BY id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func (s *PostgresStore) DeleteTag(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE tag_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) AssociateTag(ctx context.Context, tagID, postID int64) error {
	// The composite primary key makes duplicate edges impossible; re-linking
	// an existing pair is a no-op.
	query := `INSERT INTO post_tags (post_id, tag_id)
              VALUES ($1, $2)
              ON CONFLICT DO NOTHING`
	if _, err := s.db.Exec(ctx, query, postID, tagID); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (s *PostgresStore) TagsForPost(ctx context.Context, postID int64) ([]Tag, error) {
	query := `SELECT t.id, t.user_id, t.name
              FROM tags t
              JOIN post_tags pt ON pt.tag_id = t.id
              WHERE pt.post_id = $1
              ORDER BY t.id`
	rows, err := s.db.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func (s *PostgresStore) PostsForTag(ctx context.Context, tagID int64) ([]Post, error) {
	query := `SELECT p.id, p.user_id, p.title, p.content, p.upvotes, p.downvotes, p.created_at
              FROM posts p
              JOIN post_tags pt ON pt.post_id = p.id
              WHERE pt.tag_id = $1
              ORDER BY p.id`
	rows, err := s.db.Query(ctx, query, tagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// --- Photos ---

func (s *PostgresStore) CreatePhoto(ctx context.Context, p *Photo) (*Photo, error) {
	query := `INSERT INTO photos (user_id, post_id, location)
              VALUES ($1, $2, $3)
              RETURNING id, uploaded_at`
	err := s.db.QueryRow(ctx, query, p.UserID, p.PostID, p.Location).Scan(&p.ID, &p.UploadedAt)
	if err != nil {
		return nil, mapPgError(err)
	}
	return p, nil
}

func (s *PostgresStore) GetPhoto(ctx context.Context, id int64) (*Photo, error) {
	query := `SELECT id, user_id, post_id, location, uploaded_at FROM photos WHERE id = $1`
	var p Photo
	err := s.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.UserID, &p.PostID, &p.Location, &p.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) ListPhotos(ctx context.Context) ([]Photo, error) {
	query := `SELECT id, user_id, post_id, location, uploaded_at FROM photos ORDER BY id`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.UserID, &p.PostID, &p.Location, &p.UploadedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *PostgresStore) DeletePhoto(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Row scanning helpers ---

func scanUsers(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanPosts(rows pgx.Rows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Upvotes, &p.Downvotes, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanTags(rows pgx.Rows) ([]Tag, error) {
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
