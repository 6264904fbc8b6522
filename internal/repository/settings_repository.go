package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/nespinosaoimpa-wq/Olmoind/internal/domain"
)

var ErrSettingNotFound = errors.New("setting not found")

// settingRow stores one configuration blob as raw JSON text under its key.
type settingRow struct {
	Key       string    `dynamodbav:"key"`
	Value     string    `dynamodbav:"value"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

type SettingsRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewSettingsRepository(client *dynamodb.Client, tableName string) *SettingsRepository {
	return &SettingsRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *SettingsRepository) Put(ctx context.Context, key domain.SettingKey, value json.RawMessage) error {
	av, err := attributevalue.MarshalMap(settingRow{
		Key:       string(key),
		Value:     string(value),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal setting: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put setting: %w", err)
	}

	return nil
}

func (r *SettingsRepository) Get(ctx context.Context, key domain.SettingKey) (json.RawMessage, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"key": &types.AttributeValueMemberS{Value: string(key)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}

	if result.Item == nil {
		return nil, ErrSettingNotFound
	}

	var row settingRow
	if err := attributevalue.UnmarshalMap(result.Item, &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal setting: %w", err)
	}

	return json.RawMessage(row.Value), nil
}

// List returns all stored settings rows. Keys no longer in the known set
// are returned as-is; the service layer decides what to do with them.
func (r *SettingsRepository) List(ctx context.Context) (map[domain.SettingKey]json.RawMessage, error) {
	out := make(map[domain.SettingKey]json.RawMessage)
	var startKey map[string]types.AttributeValue

	for {
		result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan settings: %w", err)
		}

		var rows []settingRow
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
		for _, row := range rows {
			out[domain.SettingKey(row.Key)] = json.RawMessage(row.Value)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return out, nil
}
