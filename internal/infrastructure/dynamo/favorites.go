package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/event-locator/internal/domain"
)

// FavoriteRepo stores (user_id, event_id) pairs. The table is keyed by
// user_id + event_id; the event_id-index GSI answers "who favorited this event".
type FavoriteRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFavoriteRepo(client *dynamodb.Client, tableName string) *FavoriteRepo {
	return &FavoriteRepo{client: client, tableName: tableName}
}

// Put inserts a favorite. A pair that already exists is domain.ErrConflict.
func (r *FavoriteRepo) Put(ctx context.Context, f *domain.Favorite) error {
	item, err := attributevalue.MarshalMap(f)
	if err != nil {
		return fmt.Errorf("marshal favorite: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(event_id)"),
	})
	return conditionErr(err, domain.ErrConflict)
}

func (r *FavoriteRepo) Delete(ctx context.Context, userID, eventID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey("user_id", userID, "event_id", eventID),
		ConditionExpression: aws.String("attribute_exists(event_id)"),
	})
	return conditionErr(err, domain.ErrNotFound)
}

func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	return r.list(ctx, "", "user_id", userID)
}

func (r *FavoriteRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.Favorite, error) {
	return r.list(ctx, "event_id-index", "event_id", eventID)
}

func (r *FavoriteRepo) list(ctx context.Context, index, attr, value string) ([]domain.Favorite, error) {
	items, err := queryEq(ctx, r.client, r.tableName, index, attr, value)
	if err != nil {
		return nil, err
	}
	favorites := []domain.Favorite{}
	if err := attributevalue.UnmarshalListOfMaps(items, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}
