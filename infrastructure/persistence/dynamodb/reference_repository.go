package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// referenceItem is the stored form of an ingredient, unit or form.
type referenceItem struct {
	PK             string   `dynamodbav:"PK"`
	SK             string   `dynamodbav:"SK"`
	GSI1PK         string   `dynamodbav:"GSI1PK"`
	GSI1SK         string   `dynamodbav:"GSI1SK"`
	EntityType     string   `dynamodbav:"EntityType"`
	ID             string   `dynamodbav:"ID"`
	Name           string   `dynamodbav:"Name"`
	ProteinPer100g *float64 `dynamodbav:"ProteinPer100g,omitempty"`
}

// nameMarker reserves a name within a kind.
type nameMarker struct {
	PK       string `dynamodbav:"PK"`
	SK       string `dynamodbav:"SK"`
	EntityID string `dynamodbav:"EntityID"`
}

// ReferenceRepository stores one kind of reference entity.
type ReferenceRepository struct {
	table
	kind valueobjects.EntityKind
}

// Kind reports the entity kind served
func (r *ReferenceRepository) Kind() valueobjects.EntityKind { return r.kind }

func (r *ReferenceRepository) entityType() string {
	return strings.ToUpper(string(r.kind))
}

func (r *ReferenceRepository) entityPK(id valueobjects.ID) string {
	return r.entityType() + "#" + id.String()
}

func (r *ReferenceRepository) namePK(name string) string {
	return r.entityType() + "_NAME#" + name
}

// FindByName reads the name marker, then the entity it points at.
func (r *ReferenceRepository) FindByName(ctx context.Context, name string) (*entities.ReferenceEntity, error) {
	raw, err := r.get(ctx, r.namePK(name), nameSK)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var marker nameMarker
	if err := attributevalue.UnmarshalMap(raw, &marker); err != nil {
		return nil, fmt.Errorf("failed to unmarshal name marker: %w", err)
	}

	entity, err := r.GetByID(ctx, valueobjects.ID(marker.EntityID))
	if pkgerrors.IsNotFound(err) {
		r.logger.Warn("Name marker points at a missing entity",
			zap.String("kind", string(r.kind)),
			zap.String("name", name),
			zap.String("entity_id", marker.EntityID),
		)
		return nil, nil
	}
	return entity, err
}

// GetByID returns the entity or a NotFound error
func (r *ReferenceRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.ReferenceEntity, error) {
	raw, err := r.get(ctx, r.entityPK(id), metadataSK)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, pkgerrors.NewNotFoundError(r.kind.Label())
	}
	return r.decode(raw)
}

// List returns every entity in name order, which is the GSI1SK order.
func (r *ReferenceRepository) List(ctx context.Context) ([]*entities.ReferenceEntity, error) {
	items, err := r.queryType(ctx, r.entityType())
	if err != nil {
		return nil, err
	}
	out := make([]*entities.ReferenceEntity, 0, len(items))
	for _, raw := range items {
		entity, err := r.decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Create writes the entity and its name marker in one transaction.
func (r *ReferenceRepository) Create(ctx context.Context, entity *entities.ReferenceEntity) error {
	entityItem, err := r.encode(entity)
	if err != nil {
		return err
	}
	marker, err := r.encodeMarker(entity)
	if err != nil {
		return err
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: r.conditionalPut(entityItem)},
			{Put: r.conditionalPut(marker)},
		},
	})
	if cancelledBy(err, 1) {
		return pkgerrors.NewDuplicateNameError(r.kind.Label(), entity.Name())
	}
	if err != nil {
		return mapError("create "+string(r.kind), err)
	}

	r.logger.Debug("Created reference entity",
		zap.String("kind", string(r.kind)),
		zap.String("id", entity.ID().String()),
	)
	return nil
}

// Update rewrites the entity. A rename moves the name marker in the same
// transaction.
func (r *ReferenceRepository) Update(ctx context.Context, entity *entities.ReferenceEntity) error {
	current, err := r.GetByID(ctx, entity.ID())
	if err != nil {
		return err
	}
	entityItem, err := r.encode(entity)
	if err != nil {
		return err
	}

	if current.Name() == entity.Name() {
		cond, err := expression.NewBuilder().
			WithCondition(expression.AttributeExists(expression.Name("PK"))).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build condition: %w", err)
		}
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(r.name),
			Item:                     entityItem,
			ConditionExpression:      cond.Condition(),
			ExpressionAttributeNames: cond.Names(),
		})
		if isConditionFailed(err) {
			return pkgerrors.NewNotFoundError(r.kind.Label())
		}
		return mapError("update "+string(r.kind), err)
	}

	marker, err := r.encodeMarker(entity)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.name), Item: entityItem}},
			{Delete: &types.Delete{TableName: aws.String(r.name), Key: itemKey(r.namePK(current.Name()), nameSK)}},
			{Put: r.conditionalPut(marker)},
		},
	})
	if cancelledBy(err, 2) {
		return pkgerrors.NewDuplicateNameError(r.kind.Label(), entity.Name())
	}
	return mapError("rename "+string(r.kind), err)
}

// Delete removes the entity and its name marker.
func (r *ReferenceRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{TableName: aws.String(r.name), Key: itemKey(r.entityPK(id), metadataSK)}},
			{Delete: &types.Delete{TableName: aws.String(r.name), Key: itemKey(r.namePK(current.Name()), nameSK)}},
		},
	})
	return mapError("delete "+string(r.kind), err)
}

// DeleteAll removes every entity of the kind along with its marker.
func (r *ReferenceRepository) DeleteAll(ctx context.Context) (int, error) {
	items, err := r.queryType(ctx, r.entityType())
	if err != nil {
		return 0, err
	}

	keys := make([]map[string]types.AttributeValue, 0, 2*len(items))
	for _, raw := range items {
		var item referenceItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return 0, fmt.Errorf("failed to unmarshal %s: %w", r.kind, err)
		}
		keys = append(keys, itemKey(item.PK, item.SK), itemKey(r.namePK(item.Name), nameSK))
	}
	if err := r.deleteKeys(ctx, keys); err != nil {
		return 0, err
	}
	return len(items), nil
}

func (r *ReferenceRepository) conditionalPut(item map[string]types.AttributeValue) *types.Put {
	return &types.Put{
		TableName:           aws.String(r.name),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}
}

func (r *ReferenceRepository) encode(entity *entities.ReferenceEntity) (map[string]types.AttributeValue, error) {
	item := referenceItem{
		PK:             r.entityPK(entity.ID()),
		SK:             metadataSK,
		GSI1PK:         r.entityType(),
		GSI1SK:         entity.Name(),
		EntityType:     r.entityType(),
		ID:             entity.ID().String(),
		Name:           entity.Name(),
		ProteinPer100g: entity.ProteinPer100g(),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", r.kind, err)
	}
	return av, nil
}

func (r *ReferenceRepository) encodeMarker(entity *entities.ReferenceEntity) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(nameMarker{
		PK:       r.namePK(entity.Name()),
		SK:       nameSK,
		EntityID: entity.ID().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal name marker: %w", err)
	}
	return av, nil
}

func (r *ReferenceRepository) decode(raw map[string]types.AttributeValue) (*entities.ReferenceEntity, error) {
	var item referenceItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", r.kind, err)
	}
	return entities.ReconstructReferenceEntity(r.kind, valueobjects.ID(item.ID), item.Name, item.ProteinPer100g), nil
}
