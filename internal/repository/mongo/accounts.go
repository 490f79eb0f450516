package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/jobboard/pkg/repository"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AccountsCollection holds email/password identities, separate from profiles.
const AccountsCollection = "accounts"

type accountDocument struct {
	UID          string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	DisplayName  string    `bson:"displayName,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d accountDocument) authUser() *repository.AuthUser {
	return &repository.AuthUser{UID: d.UID, Email: d.Email, DisplayName: d.DisplayName}
}

// Accounts is the remote identity service.
type Accounts struct {
	coll *mongo.Collection
}

func NewAccounts(db *mongo.Database) *Accounts {
	return &Accounts{coll: db.Collection(AccountsCollection)}
}

// EnsureIndexes creates the unique email index.
func (a *Accounts) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure accounts index: %w", err)
	}
	return nil
}

func (a *Accounts) Create(ctx context.Context, email, password string) (*repository.AuthUser, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	doc := accountDocument{
		UID:          uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := a.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return doc.authUser(), nil
}

func (a *Accounts) Verify(ctx context.Context, email, password string) (*repository.AuthUser, error) {
	var doc accountDocument
	if err := a.coll.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	if !checkPassword(doc.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return doc.authUser(), nil
}

// Get returns the account with uid, or nil when it does not exist.
func (a *Accounts) Get(ctx context.Context, uid string) (*repository.AuthUser, error) {
	var doc accountDocument
	if err := a.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return doc.authUser(), nil
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
