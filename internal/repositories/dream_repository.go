package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/somnia-app/somnia/backend/internal/models"
	"github.com/somnia-app/somnia/backend/internal/reaction"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// reactionRetryBudget bounds the optimistic-concurrency loop in SetReaction.
const reactionRetryBudget = 5

// DreamRepository defines the interface for dream data operations
type DreamRepository interface {
	CreateDream(ctx context.Context, dream *models.Dream) error
	GetDreamByID(ctx context.Context, id string) (*models.Dream, error)
	GetDreamsByUserID(ctx context.Context, userUID string, skip, limit int64) ([]models.Dream, error)
	GetSharedDreamsByOwners(ctx context.Context, ownerUIDs []string, limit int64) ([]models.Dream, error)
	UpdateDream(ctx context.Context, id string, dream *models.Dream) error
	DeleteDream(ctx context.Context, id string) error
	SetReaction(ctx context.Context, dreamID, viewerUID, symbol string) (reaction.Change, error)
}

// MongoDreamRepository implements DreamRepository for MongoDB
type MongoDreamRepository struct {
	collection *mongo.Collection
}

// NewMongoDreamRepository creates a new MongoDreamRepository
func NewMongoDreamRepository(db *mongo.Database) *MongoDreamRepository {
	return &MongoDreamRepository{collection: db.Collection("dreams")}
}

// CreateDream records a new dream in MongoDB
func (r *MongoDreamRepository) CreateDream(ctx context.Context, dream *models.Dream) error {
	dream.ID = primitive.NewObjectID()
	dream.CreatedAt = time.Now()
	dream.UpdatedAt = dream.CreatedAt
	dream.Rev = 0
	if dream.Reactions == nil {
		dream.Reactions = map[string]string{}
	}
	if dream.ReactionCounts == nil {
		dream.ReactionCounts = map[string]int{}
	}
	_, err := r.collection.InsertOne(ctx, dream)
	return err
}

// GetDreamByID retrieves a dream by ID from MongoDB
func (r *MongoDreamRepository) GetDreamByID(ctx context.Context, id string) (*models.Dream, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid dream ID format: %w", ErrInvalidInput)
	}

	var dream models.Dream
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&dream)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dream, nil
}

// GetDreamsByUserID retrieves dreams authored by a specific user
func (r *MongoDreamRepository) GetDreamsByUserID(ctx context.Context, userUID string, skip, limit int64) ([]models.Dream, error) {
	var dreams []models.Dream
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userUID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &dreams); err != nil {
		return nil, err
	}
	return dreams, nil
}

// GetSharedDreamsByOwners runs one bounded feed batch: the most recent
// shareable dreams (never private) authored by any of ownerUIDs. The caller
// keeps len(ownerUIDs) within the store's IN-clause batch size.
func (r *MongoDreamRepository) GetSharedDreamsByOwners(ctx context.Context, ownerUIDs []string, limit int64) ([]models.Dream, error) {
	if len(ownerUIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"user_id": bson.M{"$in": ownerUIDs},
		"visibility": bson.M{"$in": []models.Visibility{
			models.VisibilityAnonymous,
			models.VisibilityPublic,
			models.VisibilityFollowing,
			models.VisibilityFollowers,
		}},
	}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var dreams []models.Dream
	if err = cursor.All(ctx, &dreams); err != nil {
		return nil, err
	}
	return dreams, nil
}

// UpdateDream updates the content fields of an existing dream
func (r *MongoDreamRepository) UpdateDream(ctx context.Context, id string, dream *models.Dream) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid dream ID format: %w", ErrInvalidInput)
	}

	dream.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":               dream.Title,
			"content":             dream.Content,
			"visibility":          dream.Visibility,
			"excluded_viewer_ids": dream.ExcludedViewerIDs,
			"tagged_user_ids":     dream.TaggedUserIDs,
			"updated_at":          dream.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDream deletes a dream by ID from MongoDB
func (r *MongoDreamRepository) DeleteDream(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid dream ID format: %w", ErrInvalidInput)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetReaction atomically moves viewerUID's reaction on a dream to symbol
// (empty symbol clears it). The read-modify-write is guarded by the
// document's rev counter: a concurrent writer bumps rev, the guarded update
// matches nothing and the loop re-reads. After reactionRetryBudget lost
// races it gives up with ErrConflict; the document is then untouched by this
// call.
func (r *MongoDreamRepository) SetReaction(ctx context.Context, dreamID, viewerUID, symbol string) (reaction.Change, error) {
	if dreamID == "" || viewerUID == "" {
		return reaction.Change{}, ErrInvalidInput
	}
	objID, err := primitive.ObjectIDFromHex(dreamID)
	if err != nil {
		return reaction.Change{}, fmt.Errorf("invalid dream ID format: %w", ErrInvalidInput)
	}

	for attempt := 0; attempt < reactionRetryBudget; attempt++ {
		var dream models.Dream
		if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&dream); err != nil {
			if err == mongo.ErrNoDocuments {
				return reaction.Change{}, ErrNotFound
			}
			return reaction.Change{}, err
		}

		state := reaction.State{Reactions: dream.Reactions, Counts: dream.ReactionCounts}
		if state.Reactions == nil {
			state.Reactions = map[string]string{}
		}
		if state.Counts == nil {
			state.Counts = map[string]int{}
		}

		next, change := reaction.Apply(state, viewerUID, symbol)
		if !change.Changed {
			return change, nil
		}

		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": objID, "rev": dream.Rev},
			bson.M{
				"$set": bson.M{
					"reactions":       next.Reactions,
					"reaction_counts": next.Counts,
					"updated_at":      time.Now(),
				},
				"$inc": bson.M{"rev": 1},
			})
		if err != nil {
			return reaction.Change{}, err
		}
		if res.ModifiedCount == 1 {
			return change, nil
		}
		// Lost the race; re-read and try again.
	}

	return reaction.Change{}, ErrConflict
}
