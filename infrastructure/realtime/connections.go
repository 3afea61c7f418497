// Package realtime pushes change notifications to WebSocket clients
// connected through API Gateway.
package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// connectionTTL bounds how long a connection record outlives a client that
// never disconnected cleanly.
const connectionTTL = 24 * time.Hour

// Connection is one registered WebSocket client.
type Connection struct {
	ConnectionID string
	Endpoint     string
	ConnectedAt  time.Time
}

type connectionItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	ConnectionID string `dynamodbav:"ConnectionID"`
	Endpoint     string `dynamodbav:"Endpoint"`
	ConnectedAt  string `dynamodbav:"ConnectedAt"`
	TTL          int64  `dynamodbav:"TTL"`
}

// DynamoDBAPI is the subset of the DynamoDB client the registry uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// ConnectionRegistry stores WebSocket connections in a DynamoDB table.
type ConnectionRegistry struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
	now       func() time.Time
}

// NewConnectionRegistry creates a registry over tableName
func NewConnectionRegistry(client DynamoDBAPI, tableName string, logger *zap.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{client: client, tableName: tableName, logger: logger, now: time.Now}
}

func connectionKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "CONNECTION#" + id},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Register records a connection. endpoint is "<domain>/<stage>".
func (r *ConnectionRegistry) Register(ctx context.Context, connectionID, endpoint string) error {
	now := r.now().UTC()
	item, err := attributevalue.MarshalMap(connectionItem{
		PK:           "CONNECTION#" + connectionID,
		SK:           "METADATA",
		ConnectionID: connectionID,
		Endpoint:     endpoint,
		ConnectedAt:  now.Format(time.RFC3339),
		TTL:          now.Add(connectionTTL).Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to store connection: %w", err)
	}

	r.logger.Info("Registered connection", zap.String("connection_id", connectionID))
	return nil
}

// Remove deletes a connection record
func (r *ConnectionRegistry) Remove(ctx context.Context, connectionID string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       connectionKey(connectionID),
	}); err != nil {
		return fmt.Errorf("failed to remove connection %s: %w", connectionID, err)
	}
	return nil
}

// List returns every unexpired connection.
func (r *ConnectionRegistry) List(ctx context.Context) ([]Connection, error) {
	now := r.now().Unix()
	var out []Connection

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connections: %w", err)
		}
		for _, raw := range page.Items {
			var item connectionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping malformed connection record", zap.Error(err))
				continue
			}
			if item.ConnectionID == "" || (item.TTL != 0 && item.TTL < now) {
				continue
			}
			connectedAt, _ := time.Parse(time.RFC3339, item.ConnectedAt)
			out = append(out, Connection{
				ConnectionID: item.ConnectionID,
				Endpoint:     item.Endpoint,
				ConnectedAt:  connectedAt,
			})
		}
	}
	return out, nil
}
