// Package dynamodb is the single-table DynamoDB storage driver.
//
// Item layout:
//
//	<KIND>#<id>        METADATA  reference entity, GSI1PK=<KIND>, GSI1SK=<name>
//	<KIND>_NAME#<name> NAME      name marker holding the entity id
//	RECIPE#<id>        METADATA  GSI1PK=RECIPE, GSI1SK=<created>#<id>
//	PAIRING#<id>       METADATA  GSI1PK=PAIRING, GSI1SK=<created>#<id>
//
// Name markers are written in the same transaction as their entity with an
// attribute_not_exists condition, which makes names unique per kind.
package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

const (
	metadataSK = "METADATA"
	nameSK     = "NAME"

	// batchWriteLimit is the largest BatchWriteItem request DynamoDB accepts.
	batchWriteLimit   = 25
	batchWriteRetries = 5
)

// Client is the subset of the DynamoDB API the driver uses.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Store serves every collection from one table.
type Store struct {
	table    table
	refs     ports.ReferenceRepositories
	recipes  *RecipeRepository
	pairings *PairingRepository
}

var _ ports.Store = (*Store)(nil)

type table struct {
	client    Client
	name      string
	indexName string
	logger    *zap.Logger
}

// NewStore creates a store over tableName. indexName is the GSI keyed on
// GSI1PK/GSI1SK.
func NewStore(client Client, tableName, indexName string, logger *zap.Logger) *Store {
	t := table{client: client, name: tableName, indexName: indexName, logger: logger}
	refs := make(ports.ReferenceRepositories, len(valueobjects.AllKinds))
	for _, kind := range valueobjects.AllKinds {
		refs[kind] = &ReferenceRepository{table: t, kind: kind}
	}
	return &Store{
		table:    t,
		refs:     refs,
		recipes:  &RecipeRepository{table: t},
		pairings: &PairingRepository{table: t},
	}
}

// References returns a repository per entity kind
func (s *Store) References() ports.ReferenceRepositories { return s.refs }

// Recipes returns the recipe repository
func (s *Store) Recipes() ports.RecipeRepository { return s.recipes }

// Pairings returns the pairing repository
func (s *Store) Pairings() ports.PairingRepository { return s.pairings }

// Ping checks that the table exists and is reachable
func (s *Store) Ping(ctx context.Context) error {
	out, err := s.table.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table.name)})
	if err != nil {
		return mapError("describe table", err)
	}
	if out.Table != nil && out.Table.TableStatus != types.TableStatusActive {
		return pkgerrors.NewUnavailableError("dynamodb")
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing
func (s *Store) Close() error { return nil }

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// queryType returns every item whose GSI1PK is entityType, in GSI1SK order.
func (t table) queryType(ctx context.Context, entityType string) ([]map[string]types.AttributeValue, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(entityType))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(t.client, &dynamodb.QueryInput{
		TableName:                 aws.String(t.name),
		IndexName:                 aws.String(t.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(true),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError("query "+entityType, err)
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

func (t table) get(ctx context.Context, pk, sk string) (map[string]types.AttributeValue, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            itemKey(pk, sk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, mapError("get item", err)
	}
	return out.Item, nil
}

// deleteKeys removes keys in batches, retrying unprocessed requests.
func (t table) deleteKeys(ctx context.Context, keys []map[string]types.AttributeValue) error {
	for start := 0; start < len(keys); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(keys))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
		}

		pending := map[string][]types.WriteRequest{t.name: requests}
		for attempt := 0; len(pending[t.name]) > 0; attempt++ {
			if attempt == batchWriteRetries {
				return pkgerrors.NewUnavailableError("dynamodb")
			}
			out, err := t.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return mapError("batch delete", err)
			}
			pending = out.UnprocessedItems
			if len(pending[t.name]) > 0 {
				t.logger.Warn("Retrying unprocessed deletes",
					zap.Int("unprocessed", len(pending[t.name])),
					zap.Int("attempt", attempt+1),
				)
			}
		}
	}
	return nil
}

// mapError classifies SDK errors into application errors.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ProvisionedThroughputExceededException", "RequestLimitExceeded":
			return pkgerrors.NewUnavailableError("dynamodb").WithCause(err)
		case "ResourceNotFoundException":
			return pkgerrors.NewDatabaseError(op, err).WithDetail("reason", "table not found")
		}
	}
	return pkgerrors.NewDatabaseError(op, err)
}

func isConditionFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}

// cancelledBy reports whether the transaction was cancelled by a failed
// condition on the item at index.
func cancelledBy(err error, index int) bool {
	var txErr *types.TransactionCanceledException
	if !errors.As(err, &txErr) {
		return false
	}
	if index >= len(txErr.CancellationReasons) {
		return false
	}
	code := txErr.CancellationReasons[index].Code
	return code != nil && *code == "ConditionalCheckFailed"
}
