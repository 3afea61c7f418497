package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/utils"
)

type pairingItem struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	GSI1PK     string   `dynamodbav:"GSI1PK"`
	GSI1SK     string   `dynamodbav:"GSI1SK"`
	EntityType string   `dynamodbav:"EntityType"`
	ID         string   `dynamodbav:"ID"`
	Name       string   `dynamodbav:"Name"`
	RecipeIDs  []string `dynamodbav:"RecipeIDs"`
	CreatedAt  string   `dynamodbav:"CreatedAt"`
}

// PairingRepository stores pairings, listed in creation order.
type PairingRepository struct {
	table
}

func (r *PairingRepository) Save(ctx context.Context, pairing *entities.Pairing) error {
	ids := pairing.RecipeIDs()
	recipeIDs := make([]string, len(ids))
	for i, id := range ids {
		recipeIDs[i] = id.String()
	}

	av, err := attributevalue.MarshalMap(pairingItem{
		PK:         pairingType + "#" + pairing.ID().String(),
		SK:         metadataSK,
		GSI1PK:     pairingType,
		GSI1SK:     utils.SortKey(pairing.CreatedAt()) + "#" + pairing.ID().String(),
		EntityType: pairingType,
		ID:         pairing.ID().String(),
		Name:       pairing.Name(),
		RecipeIDs:  recipeIDs,
		CreatedAt:  pairing.CreatedAt().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal pairing: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.name),
		Item:      av,
	})
	return mapError("save pairing", err)
}

func (r *PairingRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.Pairing, error) {
	raw, err := r.get(ctx, pairingType+"#"+id.String(), metadataSK)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, pkgerrors.NewNotFoundError("pairing")
	}
	return decodePairing(raw)
}

func (r *PairingRepository) List(ctx context.Context) ([]*entities.Pairing, error) {
	items, err := r.queryType(ctx, pairingType)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Pairing, 0, len(items))
	for _, raw := range items {
		p, err := decodePairing(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PairingRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	return r.deleteExisting(ctx, pairingType+"#"+id.String(), "pairing")
}

func (r *PairingRepository) DeleteAll(ctx context.Context) (int, error) {
	return r.deleteType(ctx, pairingType)
}

func decodePairing(raw map[string]types.AttributeValue) (*entities.Pairing, error) {
	var item pairingItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pairing: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid pairing timestamp %q: %w", item.CreatedAt, err)
	}
	ids := make([]valueobjects.ID, len(item.RecipeIDs))
	for i, id := range item.RecipeIDs {
		ids[i] = valueobjects.ID(id)
	}
	return entities.ReconstructPairing(valueobjects.ID(item.ID), item.Name, ids, createdAt), nil
}
