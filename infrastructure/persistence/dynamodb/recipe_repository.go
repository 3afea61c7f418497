package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/utils"
)

const (
	recipeType  = "RECIPE"
	pairingType = "PAIRING"
)

type recipeItem struct {
	PK           string                        `dynamodbav:"PK"`
	SK           string                        `dynamodbav:"SK"`
	GSI1PK       string                        `dynamodbav:"GSI1PK"`
	GSI1SK       string                        `dynamodbav:"GSI1SK"`
	EntityType   string                        `dynamodbav:"EntityType"`
	ID           string                        `dynamodbav:"ID"`
	Title        string                        `dynamodbav:"Title"`
	Instructions string                        `dynamodbav:"Instructions"`
	Lines        []valueobjects.IngredientLine `dynamodbav:"Lines"`
	CreatedAt    string                        `dynamodbav:"CreatedAt"`
	UpdatedAt    string                        `dynamodbav:"UpdatedAt"`
}

// RecipeRepository stores recipes, listed in creation order.
type RecipeRepository struct {
	table
}

// Save creates or replaces a recipe
func (r *RecipeRepository) Save(ctx context.Context, recipe *entities.Recipe) error {
	item := recipeItem{
		PK:           recipeType + "#" + recipe.ID().String(),
		SK:           metadataSK,
		GSI1PK:       recipeType,
		GSI1SK:       utils.SortKey(recipe.CreatedAt()) + "#" + recipe.ID().String(),
		EntityType:   recipeType,
		ID:           recipe.ID().String(),
		Title:        recipe.Title(),
		Instructions: recipe.Instructions(),
		Lines:        recipe.Lines(),
		CreatedAt:    recipe.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:    recipe.UpdatedAt().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.name),
		Item:      av,
	})
	if err != nil {
		return mapError("save recipe", err)
	}

	r.logger.Debug("Saved recipe",
		zap.String("recipe_id", item.ID),
		zap.Int("lines", len(item.Lines)),
	)
	return nil
}

// GetByID returns the recipe or a NotFound error
func (r *RecipeRepository) GetByID(ctx context.Context, id valueobjects.ID) (*entities.Recipe, error) {
	raw, err := r.get(ctx, recipeType+"#"+id.String(), metadataSK)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, pkgerrors.NewNotFoundError("recipe")
	}
	return decodeRecipe(raw)
}

// List returns every recipe in creation order
func (r *RecipeRepository) List(ctx context.Context) ([]*entities.Recipe, error) {
	items, err := r.queryType(ctx, recipeType)
	if err != nil {
		return nil, err
	}
	out := make([]*entities.Recipe, 0, len(items))
	for _, raw := range items {
		recipe, err := decodeRecipe(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, recipe)
	}
	return out, nil
}

// Delete removes a recipe; a missing recipe is a NotFound error
func (r *RecipeRepository) Delete(ctx context.Context, id valueobjects.ID) error {
	return r.deleteExisting(ctx, recipeType+"#"+id.String(), "recipe")
}

// DeleteAll removes every recipe
func (r *RecipeRepository) DeleteAll(ctx context.Context) (int, error) {
	return r.deleteType(ctx, recipeType)
}

func decodeRecipe(raw map[string]types.AttributeValue) (*entities.Recipe, error) {
	var item recipeItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid recipe timestamp %q: %w", item.CreatedAt, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}
	return entities.ReconstructRecipe(valueobjects.ID(item.ID), item.Title, item.Instructions, item.Lines, createdAt, updatedAt), nil
}

// deleteExisting deletes one METADATA item, reporting a missing item as
// NotFound.
func (t table) deleteExisting(ctx context.Context, pk, resource string) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(t.name),
		Key:                 itemKey(pk, metadataSK),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if isConditionFailed(err) {
		return pkgerrors.NewNotFoundError(resource)
	}
	return mapError("delete "+resource, err)
}

// deleteType deletes every item whose GSI1PK is entityType.
func (t table) deleteType(ctx context.Context, entityType string) (int, error) {
	items, err := t.queryType(ctx, entityType)
	if err != nil {
		return 0, err
	}
	keys := make([]map[string]types.AttributeValue, len(items))
	for i, raw := range items {
		keys[i] = map[string]types.AttributeValue{"PK": raw["PK"], "SK": raw["SK"]}
	}
	if err := t.deleteKeys(ctx, keys); err != nil {
		return 0, err
	}
	return len(items), nil
}
