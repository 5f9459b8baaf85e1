package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/Threads_Backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	// Store empty arrays, not null, so $addToSet works on fresh accounts.
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %w", translate(err))
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := r.findOne(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return user, nil
}

// FindByEmailOrUsername returns every user owning either identifier.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) ([]models.User, error) {
	filter := bson.M{"$or": []bson.M{{"email": email}, {"username": username}}}
	return r.find(ctx, filter)
}

// DeleteUnverified removes the given accounts if they are still unverified.
func (r *UserRepository) DeleteUnverified(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.deleteUnverified(ctx, bson.M{"_id": bson.M{"$in": ids}, "is_verified": false})
}

// DeleteStaleUnverified removes unverified accounts created before cutoff.
func (r *UserRepository) DeleteStaleUnverified(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteUnverified(ctx, bson.M{
		"is_verified": false,
		"created_at":  bson.M{"$lt": cutoff},
	})
}

// deleteUnverified deletes the accounts matching filter and removes their ids
// from every followers/following array.
func (r *UserRepository) deleteUnverified(ctx context.Context, filter bson.M) (int64, error) {
	ids, err := r.ids(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{"$and": []bson.M{filter, {"_id": bson.M{"$in": ids}}}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete unverified users: %w", err)
	}

	// Accounts verified between the lookup and the delete survive; keep their edges.
	kept, err := r.ids(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return res.DeletedCount, err
	}
	gone := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !containsID(kept, id) {
			gone = append(gone, id)
		}
	}
	if len(gone) == 0 {
		return res.DeletedCount, nil
	}

	if _, err := r.collection.UpdateMany(ctx,
		bson.M{"$or": []bson.M{
			{"followers": bson.M{"$in": gone}},
			{"following": bson.M{"$in": gone}},
		}},
		bson.M{"$pull": bson.M{
			"followers": bson.M{"$in": gone},
			"following": bson.M{"$in": gone},
		}},
	); err != nil {
		return res.DeletedCount, fmt.Errorf("failed to drop follow edges of deleted users: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *UserRepository) ids(ctx context.Context, filter bson.M) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode user ids: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// ConsumeVerificationToken verifies the account owning email and tokenHash in
// one update, so a token can only ever be used once.
func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, email, tokenHash string) (*models.User, error) {
	filter := bson.M{
		"email":                   email,
		"verification_token_hash": tokenHash,
		"is_verified":             false,
	}
	update := bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": time.Now()},
		"$unset": bson.M{"verification_token_hash": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// SetVerificationToken replaces the pending verification token of an unverified user.
func (r *UserRepository) SetVerificationToken(ctx context.Context, id primitive.ObjectID, tokenHash string) error {
	return r.updateOne(ctx, bson.M{"_id": id, "is_verified": false}, bson.M{
		"$set": bson.M{"verification_token_hash": tokenHash, "updated_at": time.Now()},
	})
}

// SetFrozen sets or clears the frozen flag.
func (r *UserRepository) SetFrozen(ctx context.Context, id primitive.ObjectID, frozen bool) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_frozen": frozen, "updated_at": time.Now()},
	})
}

// SetResetToken stores a reset token digest together with its expiry.
func (r *UserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"reset_token_hash": tokenHash,
			"reset_expires_at": expiresAt,
			"updated_at":       time.Now(),
		},
	})
}

// ConsumeResetToken swaps in passwordHash for the user whose unexpired reset
// token matches tokenHash and clears the token in the same update.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	filter := bson.M{
		"reset_token_hash": tokenHash,
		"reset_expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": time.Now()},
		"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// UpdateProfile applies the non-nil fields of upd.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.ProfilePic != nil {
		set["profile_pic"] = *upd.ProfilePic
	}

	user, err := r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return nil, err
	}

	logrus.WithField("userID", id.Hex()).Info("User updated successfully")
	return user, nil
}

// GetAllUsers returns every user.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

// SampleUsers returns up to size random users other than exclude.
func (r *UserRepository) SampleUsers(ctx context.Context, exclude primitive.ObjectID, size int) ([]models.User, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$ne": exclude}}}},
		{{Key: "$sample", Value: bson.M{"size": size}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sample users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// GetFollowers returns the users following id.
func (r *UserRepository) GetFollowers(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	return r.find(ctx, bson.M{"following": id})
}

// GetFollowing returns the users id follows.
func (r *UserRepository) GetFollowing(ctx context.Context, id primitive.ObjectID) ([]models.User, error) {
	return r.find(ctx, bson.M{"followers": id})
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translate(err))
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
