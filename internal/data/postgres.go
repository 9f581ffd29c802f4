package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

const userColumns = `id, username, password_hash, email, birthday, favorite_movies, version`

const movieColumns = `id, title, description, genre_name, genre_description,
	director_name, director_bio, director_birth_year, director_death_year, image_path, featured`

type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func scanUser(row scanner) (*User, error) {
	var (
		user      User
		birthday  sql.NullTime
		favorites pq.StringArray
	)

	err := row.Scan(&user.ID, &user.Username, &user.Password.hash, &user.Email, &birthday, &favorites, &user.Version)
	if err != nil {
		return nil, err
	}

	if birthday.Valid {
		t := birthday.Time.UTC()
		user.Birthday = &t
	}
	user.FavoriteMovies = []string(favorites)
	if user.FavoriteMovies == nil {
		user.FavoriteMovies = []string{}
	}
	return &user, nil
}

func scanMovie(row scanner) (*Movie, error) {
	var movie Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Genre.Name,
		&movie.Genre.Description,
		&movie.Director.Name,
		&movie.Director.Bio,
		&movie.Director.BirthYear,
		&movie.Director.DeathYear,
		&movie.ImagePath,
		&movie.Featured,
	)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

type UserModel struct {
	DB *sql.DB
}

func (m *UserModel) Insert(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, username, password_hash, email, birthday, favorite_movies)
	VALUES ($1, $2, $3, $4, $5, '{}')
	RETURNING version`

	id := uuid.NewString()
	args := []any{id, user.Username, user.Password.hash, user.Email, user.Birthday}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&user.Version)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	user.ID = id
	user.FavoriteMovies = []string{}
	return nil
}

func (m *UserModel) GetAll(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *UserModel) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.queryUser(ctx, query, username)
}

func (m *UserModel) Update(ctx context.Context, user *User) error {
	query := `UPDATE users SET username = $1, password_hash = $2, email = $3, birthday = $4, version = version + 1
	WHERE id = $5 AND version = $6
	RETURNING version`

	args := []any{
		user.Username,
		user.Password.hash,
		user.Email,
		user.Birthday,
		user.ID,
		user.Version,
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := m.DB.QueryRowContext(ctx, query, args...).Scan(&user.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		case isUniqueViolation(err):
			return ErrDuplicateUsername
		default:
			return err
		}
	}
	return nil
}

func (m *UserModel) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM users WHERE username = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := m.DB.ExecContext(ctx, query, username)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNoRecordFound
	}
	return nil
}

func (m *UserModel) AddFavorite(ctx context.Context, username, movieID string) (*User, error) {
	query := `UPDATE users SET favorite_movies = CASE
		WHEN $1::text = ANY(favorite_movies) THEN favorite_movies
		ELSE array_append(favorite_movies, $1::text)
	END, version = version + 1
	WHERE username = $2
	RETURNING ` + userColumns

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.queryUser(ctx, query, movieID, username)
}

func (m *UserModel) RemoveFavorite(ctx context.Context, username, movieID string) (*User, error) {
	query := `UPDATE users SET favorite_movies = array_remove(favorite_movies, $1::text), version = version + 1
	WHERE username = $2
	RETURNING ` + userColumns

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.queryUser(ctx, query, movieID, username)
}

func (m *UserModel) queryUser(ctx context.Context, query string, args ...any) (*User, error) {
	user, err := scanUser(m.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return user, nil
}

type MovieModel struct {
	DB *sql.DB
}

func (m *MovieModel) GetAll(ctx context.Context) ([]*Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY title`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := []*Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

func (m *MovieModel) Get(ctx context.Context, id string) (*Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.queryMovie(ctx, query, id)
}

func (m *MovieModel) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE title = $1 LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.queryMovie(ctx, query, title)
}

func (m *MovieModel) GetGenre(ctx context.Context, name string) (*Genre, error) {
	query := `SELECT genre_name, genre_description FROM movies WHERE lower(genre_name) = lower($1) LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var genre Genre
	err := m.DB.QueryRowContext(ctx, query, name).Scan(&genre.Name, &genre.Description)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &genre, nil
}

func (m *MovieModel) GetDirector(ctx context.Context, name string) (*Director, error) {
	query := `SELECT director_name, director_bio, director_birth_year, director_death_year
	FROM movies WHERE director_name = $1 LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var director Director
	err := m.DB.QueryRowContext(ctx, query, name).Scan(&director.Name, &director.Bio, &director.BirthYear, &director.DeathYear)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return &director, nil
}

func (m *MovieModel) queryMovie(ctx context.Context, query string, args ...any) (*Movie, error) {
	movie, err := scanMovie(m.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return movie, nil
}
