package data

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection  = "users"
	moviesCollection = "movies"
)

type userDocument struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Username       string               `bson:"Username"`
	Password       string               `bson:"Password"`
	Email          string               `bson:"Email"`
	Birthday       *time.Time           `bson:"Birthday,omitempty"`
	FavoriteMovies []primitive.ObjectID `bson:"FavoriteMovies"`
	Version        int                  `bson:"Version"`
}

type movieDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"Title"`
	Description string             `bson:"Description"`
	Genre       struct {
		Name        string `bson:"Name"`
		Description string `bson:"Description"`
	} `bson:"Genre"`
	Director struct {
		Name      string `bson:"Name"`
		Bio       string `bson:"Bio"`
		BirthYear string `bson:"birthYear,omitempty"`
		DeathYear string `bson:"deathYear,omitempty"`
	} `bson:"Director"`
	ImagePath string `bson:"ImagePath,omitempty"`
	Featured  bool   `bson:"Featured"`
}

func (d *userDocument) toUser() *User {
	user := &User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Password:       password{hash: []byte(d.Password)},
		Email:          d.Email,
		Birthday:       d.Birthday,
		FavoriteMovies: make([]string, 0, len(d.FavoriteMovies)),
		Version:        d.Version,
	}
	for _, id := range d.FavoriteMovies {
		user.FavoriteMovies = append(user.FavoriteMovies, id.Hex())
	}
	return user
}

func (d *movieDocument) toMovie() *Movie {
	return &Movie{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Genre:       Genre{Name: d.Genre.Name, Description: d.Genre.Description},
		Director: Director{
			Name:      d.Director.Name,
			Bio:       d.Director.Bio,
			BirthYear: d.Director.BirthYear,
			DeathYear: d.Director.DeathYear,
		},
		ImagePath: d.ImagePath,
		Featured:  d.Featured,
	}
}

// versionFilter matches documents written before the Version field existed
// when the caller still holds the zero version.
func versionFilter(version int) interface{} {
	if version == 0 {
		return bson.M{"$exists": false}
	}
	return version
}

// EnsureMongoIndexes creates the unique username index the user store relies on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

type UserMongoModel struct {
	Coll *mongo.Collection
}

func (m *UserMongoModel) Insert(ctx context.Context, user *User) error {
	doc := userDocument{
		Username:       user.Username,
		Password:       string(user.Password.hash),
		Email:          user.Email,
		Birthday:       user.Birthday,
		FavoriteMovies: []primitive.ObjectID{},
		Version:        1,
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := m.Coll.InsertOne(ctx, doc)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	user.FavoriteMovies = []string{}
	user.Version = doc.Version
	return nil
}

func (m *UserMongoModel) GetAll(ctx context.Context) ([]*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := m.Coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toUser())
	}
	return users, nil
}

func (m *UserMongoModel) GetByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.findOne(ctx, bson.M{"Username": username})
}

func (m *UserMongoModel) Update(ctx context.Context, user *User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return ErrNoRecordFound
	}

	filter := bson.M{"_id": oid, "Version": versionFilter(user.Version)}
	update := bson.M{
		"$set": bson.M{
			"Username": user.Username,
			"Password": string(user.Password.hash),
			"Email":    user.Email,
			"Birthday": user.Birthday,
		},
		"$inc": bson.M{"Version": 1},
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc userDocument
	err = m.Coll.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return ErrEditConflict
		case mongo.IsDuplicateKeyError(err):
			return ErrDuplicateUsername
		default:
			return err
		}
	}

	*user = *doc.toUser()
	return nil
}

func (m *UserMongoModel) Delete(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := m.Coll.DeleteOne(ctx, bson.M{"Username": username})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoRecordFound
	}
	return nil
}

func (m *UserMongoModel) AddFavorite(ctx context.Context, username, movieID string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(movieID)
	if err != nil {
		return nil, ErrNoRecordFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.findOneAndUpdate(ctx, bson.M{"Username": username}, bson.M{
		"$addToSet": bson.M{"FavoriteMovies": oid},
		"$inc":      bson.M{"Version": 1},
	})
}

func (m *UserMongoModel) RemoveFavorite(ctx context.Context, username, movieID string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(movieID)
	if err != nil {
		// Not an ObjectID, so it cannot be in the set.
		return m.findOne(ctx, bson.M{"Username": username})
	}

	return m.findOneAndUpdate(ctx, bson.M{"Username": username}, bson.M{
		"$pull": bson.M{"FavoriteMovies": oid},
		"$inc":  bson.M{"Version": 1},
	})
}

func (m *UserMongoModel) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDocument
	err := m.Coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return doc.toUser(), nil
}

func (m *UserMongoModel) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*User, error) {
	var doc userDocument
	err := m.Coll.FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return doc.toUser(), nil
}

type MovieMongoModel struct {
	Coll *mongo.Collection
}

func (m *MovieMongoModel) GetAll(ctx context.Context) ([]*Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := m.Coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var docs []movieDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	movies := make([]*Movie, 0, len(docs))
	for i := range docs {
		movies = append(movies, docs[i].toMovie())
	}
	return movies, nil
}

func (m *MovieMongoModel) Get(ctx context.Context, id string) (*Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNoRecordFound
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.findOne(ctx, bson.M{"_id": oid})
}

func (m *MovieMongoModel) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return m.findOne(ctx, bson.M{"Title": title})
}

func (m *MovieMongoModel) GetGenre(ctx context.Context, name string) (*Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pattern := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
	movie, err := m.findOne(ctx, bson.M{"Genre.Name": pattern})
	if err != nil {
		return nil, err
	}
	return &movie.Genre, nil
}

func (m *MovieMongoModel) GetDirector(ctx context.Context, name string) (*Director, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	movie, err := m.findOne(ctx, bson.M{"Director.Name": name})
	if err != nil {
		return nil, err
	}
	return &movie.Director, nil
}

func (m *MovieMongoModel) findOne(ctx context.Context, filter bson.M) (*Movie, error) {
	var doc movieDocument
	err := m.Coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNoRecordFound
		default:
			return nil, err
		}
	}
	return doc.toMovie(), nil
}
