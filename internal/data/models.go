package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNoRecordFound     = errors.New("record not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// queryTimeout bounds every single store round trip.
const queryTimeout = 3 * time.Second

type UserStore interface {
	Insert(ctx context.Context, user *User) error
	GetAll(ctx context.Context) ([]*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, username string) error
	AddFavorite(ctx context.Context, username, movieID string) (*User, error)
	RemoveFavorite(ctx context.Context, username, movieID string) (*User, error)
}

type MovieStore interface {
	GetAll(ctx context.Context) ([]*Movie, error)
	Get(ctx context.Context, id string) (*Movie, error)
	GetByTitle(ctx context.Context, title string) (*Movie, error)
	GetGenre(ctx context.Context, name string) (*Genre, error)
	GetDirector(ctx context.Context, name string) (*Director, error)
}

type Models struct {
	Users  UserStore
	Movies MovieStore
}

func NewMongoModels(db *mongo.Database) Models {
	return Models{
		Users:  &UserMongoModel{Coll: db.Collection(usersCollection)},
		Movies: &MovieMongoModel{Coll: db.Collection(moviesCollection)},
	}
}

func NewPostgresModels(db *sql.DB) Models {
	return Models{
		Users:  &UserModel{DB: db},
		Movies: &MovieModel{DB: db},
	}
}
