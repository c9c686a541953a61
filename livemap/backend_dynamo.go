// Copyright 2025 The Remote Hack Authors
// SPDX-License-Identifier: Apache-2.0

package livemap

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoBackend.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// dynamoItem is the stored shape. expires_at is epoch seconds so it can be
// configured as the table's TTL attribute.
type dynamoItem struct {
	Key       string `dynamodbav:"key"`
	Value     string `dynamodbav:"value"`
	ExpiresAt int64  `dynamodbav:"expires_at"`
}

// DynamoBackend stores entries in a DynamoDB table keyed by "key". DynamoDB
// evicts expired items lazily, so every read filters on expires_at too.
type DynamoBackend struct {
	client DynamoAPI
	table  string
	limit  int
}

// NewDynamoBackend creates a backend over client. limit <= 0 means DefaultListLimit.
func NewDynamoBackend(client DynamoAPI, table string, limit int) *DynamoBackend {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	return &DynamoBackend{client: client, table: table, limit: limit}
}

// NewDynamoBackendFromEnv builds the DynamoDB client from the default AWS
// configuration chain (environment, shared config, instance role).
func NewDynamoBackendFromEnv(ctx context.Context, table string, limit int) (*DynamoBackend, error) {
	if table == "" {
		return nil, errors.New("dynamodb table name is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return NewDynamoBackend(dynamodb.NewFromConfig(cfg), table, limit), nil
}

func (b *DynamoBackend) Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	item, err := attributevalue.MarshalMap(dynamoItem{
		Key:       key,
		Value:     string(value),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshaling item: %w", err)
	}

	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(b.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{"#k": "key"},
	})

	var conditionErr *dynamodbtypes.ConditionalCheckFailedException
	if errors.As(err, &conditionErr) {
		return ErrKeyExists
	}

	return err
}

func (b *DynamoBackend) Get(ctx context.Context, key string, asOf time.Time) (*Entry, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(b.table),
		Key: map[string]dynamodbtypes.AttributeValue{
			"key": &dynamodbtypes.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}

	if out.Item == nil {
		return nil, nil
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling item: %w", err)
	}

	if item.ExpiresAt <= asOf.Unix() {
		return nil, nil
	}

	return item.entry(), nil
}

func (b *DynamoBackend) List(ctx context.Context, asOf time.Time) (*Page, error) {
	page := &Page{}

	var lastEvaluatedKey map[string]dynamodbtypes.AttributeValue

	for {
		out, err := b.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                aws.String(b.table),
			FilterExpression:         aws.String("#e > :now"),
			ExpressionAttributeNames: map[string]string{"#e": "expires_at"},
			ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
				":now": &dynamodbtypes.AttributeValueMemberN{Value: strconv.FormatInt(asOf.Unix(), 10)},
			},
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			return nil, err
		}

		for _, raw := range out.Items {
			var item dynamoItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("unmarshaling item: %w", err)
			}

			if len(page.Entries) == b.limit {
				page.Truncated = true

				return page, nil
			}

			page.Entries = append(page.Entries, *item.entry())
		}

		lastEvaluatedKey = out.LastEvaluatedKey
		if lastEvaluatedKey == nil {
			return page, nil
		}
	}
}

func (i dynamoItem) entry() *Entry {
	return &Entry{
		Key:       i.Key,
		Value:     []byte(i.Value),
		ExpiresAt: time.Unix(i.ExpiresAt, 0).UTC(),
	}
}
