package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/event-locator/internal/domain"
)

// RatingRepo provides typed DynamoDB operations for the ratings table.
type RatingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRatingRepo(client *dynamodb.Client, tableName string) *RatingRepo {
	return &RatingRepo{client: client, tableName: tableName}
}

// Put inserts a rating. An item with the same rating_id already present is
// domain.ErrConflict.
func (r *RatingRepo) Put(ctx context.Context, rt *domain.Rating) error {
	item, err := attributevalue.MarshalMap(rt)
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(rating_id)"),
	})
	return conditionErr(err, domain.ErrConflict)
}

func (r *RatingRepo) Get(ctx context.Context, ratingID string) (*domain.Rating, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("rating_id", ratingID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("rating %s: %w", ratingID, domain.ErrNotFound)
	}
	var rt domain.Rating
	if err := attributevalue.UnmarshalMap(out.Item, &rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListByEvent returns every rating of an event via the event_id-index GSI.
func (r *RatingRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.Rating, error) {
	items, err := queryEq(ctx, r.client, r.tableName, "event_id-index", "event_id", eventID)
	if err != nil {
		return nil, err
	}
	ratings := []domain.Rating{}
	if err := attributevalue.UnmarshalListOfMaps(items, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *RatingRepo) Update(ctx context.Context, ratingID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	return updateItem(ctx, r.client, r.tableName, strKey("rating_id", ratingID), "rating_id", updates)
}

func (r *RatingRepo) Delete(ctx context.Context, ratingID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("rating_id", ratingID),
		ConditionExpression: aws.String("attribute_exists(rating_id)"),
	})
	return conditionErr(err, domain.ErrNotFound)
}
