package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
	ErrSaleExists   = errors.New("sale already exists")
)

// SaleRepository is the append-only sales ledger. Sales are never deleted;
// status is the only field updated after creation.
type SaleRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewSaleRepository(client *dynamodb.Client, tableName string) *SaleRepository {
	return &SaleRepository{
		client:    client,
		tableName: tableName,
	}
}

// Create inserts the sale, refusing to overwrite an existing id. The guard
// is what makes checkout retries with an idempotency key single-shot.
func (r *SaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	av, err := attributevalue.MarshalMap(sale)
	if err != nil {
		return fmt.Errorf("failed to marshal sale: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(sale_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrSaleExists
		}
		return fmt.Errorf("failed to put sale: %w", err)
	}

	return nil
}

func (r *SaleRepository) Get(ctx context.Context, saleID string) (*domain.Sale, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"sale_id": &types.AttributeValueMemberS{Value: saleID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	if result.Item == nil {
		return nil, ErrSaleNotFound
	}

	var sale domain.Sale
	if err := attributevalue.UnmarshalMap(result.Item, &sale); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sale: %w", err)
	}

	return &sale, nil
}

func (r *SaleRepository) List(ctx context.Context) ([]domain.Sale, error) {
	var sales []domain.Sale
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales: %w", err)
		}

		var page []domain.Sale
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sales: %w", err)
		}
		sales = append(sales, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return sales, nil
}

// UpdateStatus sets the fulfillment status. Last-write-wins is acceptable:
// the field is admin-only and rarely contended.
func (r *SaleRepository) UpdateStatus(ctx context.Context, saleID string, status domain.SaleStatus) error {
	update := expression.Set(
		expression.Name("status"),
		expression.Value(status),
	)
	condition := expression.AttributeExists(expression.Name("sale_id"))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return err
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"sale_id": &types.AttributeValueMemberS{Value: saleID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrSaleNotFound
		}
		return fmt.Errorf("failed to update sale status: %w", err)
	}

	return nil
}
