package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductRepository(client *dynamodb.Client, tableName string) *ProductRepository {
	return &ProductRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *ProductRepository) Get(ctx context.Context, productID string) (*domain.Product, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

// List scans the whole catalog. The table is small-business sized; a scan
// reflects the latest committed state, which the storefront requires right
// after its own mutations.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
			ConsistentRead:    aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}

		var page []domain.Product
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal products: %w", err)
		}
		products = append(products, page...)

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return products, nil
}

// UpdateDetails applies a partial update of the descriptive fields. It never
// touches variants.
func (r *ProductRepository) UpdateDetails(ctx context.Context, productID string, fields domain.ProductUpdate) error {
	update := expression.Set(
		expression.Name("updated_at"),
		expression.Value(time.Now()),
	)
	if fields.Name != nil {
		update = update.Set(expression.Name("name"), expression.Value(*fields.Name))
	}
	if fields.Price != nil {
		update = update.Set(expression.Name("price"), expression.Value(*fields.Price))
	}
	if fields.Image != nil {
		update = update.Set(expression.Name("image"), expression.Value(*fields.Image))
	}
	if fields.Category != nil {
		update = update.Set(expression.Name("category"), expression.Value(*fields.Category))
	}

	condition := expression.AttributeExists(expression.Name("product_id"))

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
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// SetVariants replaces the whole variants map. This is the admin manual
// correction path: a blind overwrite, not a delta.
func (r *ProductRepository) SetVariants(ctx context.Context, productID string, variants domain.Variants) error {
	update := expression.Set(
		expression.Name("variants"),
		expression.Value(variants),
	).Set(
		expression.Name("updated_at"),
		expression.Value(time.Now()),
	)
	condition := expression.AttributeExists(expression.Name("product_id"))

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
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to set variants: %w", err)
	}

	return nil
}

// DeductVariants decrements the requested sizes in a single conditional
// update: every size must still hold at least the requested quantity or the
// whole update fails, so concurrent checkouts can never drive a counter
// negative. Returns the product as stored after the deduction.
func (r *ProductRepository) DeductVariants(ctx context.Context, productID string, quantities map[domain.Size]int) (*domain.Product, error) {
	update := expression.Set(
		expression.Name("updated_at"),
		expression.Value(time.Now()),
	)
	condition := expression.AttributeExists(expression.Name("product_id"))

	for size, qty := range quantities {
		name := expression.Name("variants." + string(size))
		update = update.Set(name, expression.Minus(name, expression.Value(qty)))
		condition = condition.And(expression.GreaterThanEqual(name, expression.Value(qty)))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return nil, err
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("failed to deduct stock: %w", err)
	}

	var updated domain.Product
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated product: %w", err)
	}

	return &updated, nil
}

// RestoreVariants adds quantities back, compensating a deduction that was
// part of a checkout which later failed. Restoring onto a product deleted
// in the meantime is treated as already-absent.
func (r *ProductRepository) RestoreVariants(ctx context.Context, productID string, quantities map[domain.Size]int) error {
	update := expression.Set(
		expression.Name("updated_at"),
		expression.Value(time.Now()),
	)
	for size, qty := range quantities {
		name := expression.Name("variants." + string(size))
		update = update.Set(name, expression.Plus(name, expression.Value(qty)))
	}
	condition := expression.AttributeExists(expression.Name("product_id"))

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
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil
		}
		return fmt.Errorf("failed to restore stock: %w", err)
	}

	return nil
}

// Delete hard-deletes the product. Deleting an absent id is not an error.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
