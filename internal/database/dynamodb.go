package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoDBStore implements the Store interface on a single DynamoDB table.
//
// Table layout:
//   - pk (S): the kind, or "sequence#<kind>" for id counters
//   - sk (N): the document id (0 for counters)
//   - data (S): the JSON body
type DynamoDBStore struct {
	client DynamoAPI
	table  string
}

type dynamoItem struct {
	PK   string `dynamodbav:"pk"`
	SK   int64  `dynamodbav:"sk"`
	Data string `dynamodbav:"data"`
}

// OpenDynamoDB builds a client from the default AWS credential chain.
func OpenDynamoDB(ctx context.Context, cfg Config) (*DynamoDBStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.DynamoRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.DynamoRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})
	return NewDynamoDBStore(client, cfg.DynamoTable), nil
}

// NewDynamoDBStore wraps an existing client
func NewDynamoDBStore(client DynamoAPI, table string) *DynamoDBStore {
	return &DynamoDBStore{client: client, table: table}
}

// Close is a no-op; the SDK client holds no persistent connection
func (d *DynamoDBStore) Close() error {
	return nil
}

// Ping describes the table
func (d *DynamoDBStore) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.table),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Get fetches a single document
func (d *DynamoDBStore) Get(ctx context.Context, kind Kind, id int64) (*Record, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            dynamoKey(string(kind), id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return &Record{ID: item.SK, Data: []byte(item.Data)}, nil
}

// Put upserts a document, allocating an id when rec.ID is zero
func (d *DynamoDBStore) Put(ctx context.Context, kind Kind, rec *Record) (int64, error) {
	if !kind.Valid() {
		return 0, ErrInvalidKind
	}
	id := rec.ID
	if id == 0 {
		next, err := d.nextID(ctx, kind)
		if err != nil {
			return 0, err
		}
		id = next
	}

	av, err := attributevalue.MarshalMap(dynamoItem{PK: string(kind), SK: id, Data: string(rec.Data)})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return id, nil
}

// Delete removes a document, failing with ErrNotFound if it is absent
func (d *DynamoDBStore) Delete(ctx context.Context, kind Kind, id int64) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(d.table),
		Key:                 dynamoKey(string(kind), id),
		ConditionExpression: aws.String("attribute_exists(pk)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return nil
}

// Scan queries the kind's partition in sort-key order and windows the result
func (d *DynamoDBStore) Scan(ctx context.Context, kind Kind, limit, offset int) (*Page, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "pk",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: string(kind)},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var records []Record
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		for _, raw := range page.Items {
			var item dynamoItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrQuery, err)
			}
			records = append(records, Record{ID: item.SK, Data: []byte(item.Data)})
		}
		if limit > 0 && offset < len(records) && len(records)-offset > limit {
			break
		}
	}
	return window(records, limit, offset), nil
}

func (d *DynamoDBStore) nextID(ctx context.Context, kind Kind) (int64, error) {
	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(d.table),
		Key:              dynamoKey("sequence#"+string(kind), 0),
		UpdateExpression: aws.String("ADD #v :one"),
		ExpressionAttributeNames: map[string]string{
			"#v": "value",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	n, ok := out.Attributes["value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("%w: sequence %s returned no value", ErrQuery, kind)
	}
	id, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return id, nil
}

func dynamoKey(pk string, sk int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberN{Value: strconv.FormatInt(sk, 10)},
	}
}
