package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/redimap/hashstore"
)

// batchWriteLimit is the DynamoDB maximum for one BatchWriteItem request.
const batchWriteLimit = 25

var _ hashstore.Conn = (*Store)(nil)

// Client is the subset of the DynamoDB API used by this backend. Tests can
// supply an in-memory implementation.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Store implements hashstore.Conn on a DynamoDB table, storing one item per
// hash field.
//
// Table schema:
//   - Partition key: name (string) - the hash name
//   - Sort key: field (string) - the field name
//   - Attribute: value (string) - the field value
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name redimap \
//	  --attribute-definitions AttributeName=name,AttributeType=S AttributeName=field,AttributeType=S \
//	  --key-schema AttributeName=name,KeyType=HASH AttributeName=field,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
//
// Single-field commands (Exists, Get, Set, single Del) are one atomic item
// operation each. Multi-item commands (SetAll, Drop, multi-field Del) issue
// several requests and are NOT atomic: a concurrent writer can observe a
// partially applied bulk write. Redis does not have this limitation.
//
// The DynamoDB client pools HTTP connections internally; serve a Store
// through hashstore.NewStaticPool.
type Store struct {
	client Client
	table  string
}

// NewStore creates a DynamoDB-backed hash store on the given table.
func NewStore(client Client, table string) *Store {
	return &Store{
		client: client,
		table:  table,
	}
}

// NewFromConfig creates a Store using the default AWS configuration chain
// (environment, shared config, instance credentials).
func NewFromConfig(ctx context.Context, table string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewStore(dynamodb.NewFromConfig(cfg), table), nil
}

func (s *Store) key(name, field string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"name":  &types.AttributeValueMemberS{Value: name},
		"field": &types.AttributeValueMemberS{Value: field},
	}
}

// query runs one hash-scoped query page. "name" is a DynamoDB reserved
// word, hence the attribute alias.
func (s *Store) query(ctx context.Context, name string, in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	in.TableName = aws.String(s.table)
	in.KeyConditionExpression = aws.String("#n = :name")
	if in.ExpressionAttributeNames == nil {
		in.ExpressionAttributeNames = map[string]string{}
	}
	in.ExpressionAttributeNames["#n"] = "name"
	in.ExpressionAttributeValues = map[string]types.AttributeValue{
		":name": &types.AttributeValueMemberS{Value: name},
	}

	out, err := s.client.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("query hash %q: %w", name, err)
	}
	return out, nil
}

// Len counts the items stored under the hash name.
func (s *Store) Len(ctx context.Context, name string) (int64, error) {
	var total int64
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.query(ctx, name, &dynamodb.QueryInput{
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, err
		}

		total += int64(out.Count)

		if len(out.LastEvaluatedKey) == 0 {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Exists reports whether the field item is present.
func (s *Store) Exists(ctx context.Context, name, field string) (bool, error) {
	_, ok, err := s.Get(ctx, name, field)
	return ok, err
}

// Get reads the field item.
func (s *Store) Get(ctx context.Context, name, field string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(name, field),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("get field %q of hash %q: %w", field, name, err)
	}

	if len(out.Item) == 0 {
		return "", false, nil
	}

	value, err := stringAttr(out.Item, "value")
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set writes the field item. ReturnValues ALL_OLD tells us whether the
// field existed before, in one atomic request.
func (s *Store) Set(ctx context.Context, name, field, value string) (bool, error) {
	out, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"name":  &types.AttributeValueMemberS{Value: name},
			"field": &types.AttributeValueMemberS{Value: field},
			"value": &types.AttributeValueMemberS{Value: value},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("set field %q of hash %q: %w", field, name, err)
	}

	return len(out.Attributes) == 0, nil
}

// Del deletes each field item in turn, counting the ones that existed.
func (s *Store) Del(ctx context.Context, name string, fields ...string) (int64, error) {
	var removed int64
	for _, field := range fields {
		out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:    aws.String(s.table),
			Key:          s.key(name, field),
			ReturnValues: types.ReturnValueAllOld,
		})
		if err != nil {
			return removed, fmt.Errorf("delete field %q of hash %q: %w", field, name, err)
		}
		if len(out.Attributes) > 0 {
			removed++
		}
	}
	return removed, nil
}

// SetAll writes every entry via BatchWriteItem. BatchWriteItem does not
// report which items were new, so the existing field set is read first to
// compute the created count.
func (s *Store) SetAll(ctx context.Context, name string, entries map[string]string) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	existing, err := s.Keys(ctx, name)
	if err != nil {
		return 0, err
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, field := range existing {
		existingSet[field] = struct{}{}
	}

	var created int64
	requests := make([]types.WriteRequest, 0, len(entries))
	for field, value := range entries {
		if _, ok := existingSet[field]; !ok {
			created++
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{
				Item: map[string]types.AttributeValue{
					"name":  &types.AttributeValueMemberS{Value: name},
					"field": &types.AttributeValueMemberS{Value: field},
					"value": &types.AttributeValueMemberS{Value: value},
				},
			},
		})
	}

	if err := s.batchWrite(ctx, requests); err != nil {
		return 0, fmt.Errorf("bulk set hash %q: %w", name, err)
	}
	return created, nil
}

// Drop deletes every item of the hash.
func (s *Store) Drop(ctx context.Context, name string) (int64, error) {
	fields, err := s.Keys(ctx, name)
	if err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, nil
	}

	requests := make([]types.WriteRequest, 0, len(fields))
	for _, field := range fields {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: s.key(name, field)},
		})
	}

	if err := s.batchWrite(ctx, requests); err != nil {
		return 0, fmt.Errorf("drop hash %q: %w", name, err)
	}
	return 1, nil
}

// Keys returns all field names, paginating through the query.
func (s *Store) Keys(ctx context.Context, name string) ([]string, error) {
	var keys []string

	err := s.scanItems(ctx, name, func(item map[string]types.AttributeValue) error {
		field, err := stringAttr(item, "field")
		if err != nil {
			return err
		}
		keys = append(keys, field)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Values returns all field values.
func (s *Store) Values(ctx context.Context, name string) ([]string, error) {
	var values []string

	err := s.scanItems(ctx, name, func(item map[string]types.AttributeValue) error {
		value, err := stringAttr(item, "value")
		if err != nil {
			return err
		}
		values = append(values, value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// GetAll returns every field and value of the hash.
func (s *Store) GetAll(ctx context.Context, name string) (map[string]string, error) {
	all := make(map[string]string)

	err := s.scanItems(ctx, name, func(item map[string]types.AttributeValue) error {
		field, err := stringAttr(item, "field")
		if err != nil {
			return err
		}
		value, err := stringAttr(item, "value")
		if err != nil {
			return err
		}
		all[field] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// scanItems pages through every item of the hash and hands each to fn.
func (s *Store) scanItems(ctx context.Context, name string, fn func(item map[string]types.AttributeValue) error) error {
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.query(ctx, name, &dynamodb.QueryInput{
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return err
		}

		for _, item := range out.Items {
			if err := fn(item); err != nil {
				return err
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// batchWrite submits write requests in chunks of batchWriteLimit,
// resubmitting unprocessed items until DynamoDB has accepted all of them.
func (s *Store) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for len(requests) > 0 {
		chunk := requests
		if len(chunk) > batchWriteLimit {
			chunk = chunk[:batchWriteLimit]
		}
		requests = requests[len(chunk):]

		for len(chunk) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					s.table: chunk,
				},
			})
			if err != nil {
				return err
			}
			chunk = out.UnprocessedItems[s.table]
		}
	}
	return nil
}

func stringAttr(item map[string]types.AttributeValue, attr string) (string, error) {
	av, ok := item[attr].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("item attribute %q is missing or not a string", attr)
	}
	return av.Value, nil
}
