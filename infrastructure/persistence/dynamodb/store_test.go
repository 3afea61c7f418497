package dynamodb

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) Query(ctx context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func (m *mockClient) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.TransactWriteItemsOutput)
	return out, args.Error(1)
}

func (m *mockClient) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.BatchWriteItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*dynamodb.DescribeTableOutput)
	return out, args.Error(1)
}

func newTestStore() (*Store, *mockClient) {
	client := new(mockClient)
	return NewStore(client, "recipes-test", "GSI1", zap.NewNop()), client
}

func stringAttr(item map[string]types.AttributeValue, key string) string {
	if s, ok := item[key].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func TestReferenceRepository_FindByNameMissing(t *testing.T) {
	store, client := newTestStore()
	client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return stringAttr(in.Key, "PK") == "INGREDIENT_NAME#Salt" && aws.ToBool(in.ConsistentRead)
	})).Return(&dynamodb.GetItemOutput{}, nil)

	repo, err := store.References().For(valueobjects.KindIngredient)
	require.NoError(t, err)

	got, err := repo.FindByName(context.Background(), "Salt")
	require.NoError(t, err)
	assert.Nil(t, got)
	client.AssertExpectations(t)
}

func TestReferenceRepository_CreateWritesMarker(t *testing.T) {
	tests := []struct {
		name      string
		txErr     error
		wantError func(error) bool
	}{
		{
			name:  "success",
			txErr: nil,
		},
		{
			name: "name taken",
			txErr: &types.TransactionCanceledException{
				Message: aws.String("cancelled"),
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("None")},
					{Code: aws.String("ConditionalCheckFailed")},
				},
			},
			wantError: pkgerrors.IsConflict,
		},
		{
			name:      "throttled",
			txErr:     &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"},
			wantError: func(err error) bool { return pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			store, client := newTestStore()
			var captured *dynamodb.TransactWriteItemsInput
			client.On("TransactWriteItems", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.TransactWriteItemsInput) }).
				Return(&dynamodb.TransactWriteItemsOutput{}, tt.txErr)

			unit, err := entities.NewReferenceEntity(valueobjects.KindUnit, "cup")
			require.NoError(t, err)
			repo, _ := store.References().For(valueobjects.KindUnit)

			// Act
			err = repo.Create(context.Background(), unit)

			// Assert
			if tt.wantError != nil {
				require.Error(t, err)
				assert.True(t, tt.wantError(err), "unexpected error: %v", err)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, captured)
			require.Len(t, captured.TransactItems, 2)
			assert.Equal(t, "UNIT#"+unit.ID().String(), stringAttr(captured.TransactItems[0].Put.Item, "PK"))
			assert.Equal(t, "cup", stringAttr(captured.TransactItems[0].Put.Item, "GSI1SK"))
			assert.Equal(t, "UNIT_NAME#cup", stringAttr(captured.TransactItems[1].Put.Item, "PK"))
			assert.Equal(t, "attribute_not_exists(PK)", aws.ToString(captured.TransactItems[1].Put.ConditionExpression))
		})
	}
}

func TestReferenceRepository_DuplicateNameCode(t *testing.T) {
	store, client := newTestStore()
	client.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("None")}, {Code: aws.String("ConditionalCheckFailed")}},
	})
	repo, _ := store.References().For(valueobjects.KindForm)
	form, err := entities.NewReferenceEntity(valueobjects.KindForm, "diced")
	require.NoError(t, err)

	err = repo.Create(context.Background(), form)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDuplicateName, appErr.Code)
	assert.Equal(t, "ingredient form name already exists", appErr.Message)
}

func TestRecipeRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store, client := newTestStore()

	amount := 100.0
	lines := []valueobjects.IngredientLine{
		{IngredientID: valueobjects.NewID(), Core: true, Quantity: &valueobjects.Quantity{Amount: &amount, UnitID: valueobjects.NewID()}},
		{IngredientID: valueobjects.NewID(), FormIDs: []valueobjects.ID{valueobjects.NewID()}},
	}
	recipe, err := entities.NewRecipe("Omelette", "Whisk and fry.", lines)
	require.NoError(t, err)

	stored := &dynamodb.GetItemOutput{}
	client.On("PutItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored.Item = args.Get(1).(*dynamodb.PutItemInput).Item }).
		Return(&dynamodb.PutItemOutput{}, nil)
	client.On("GetItem", mock.Anything, mock.Anything).Return(stored, nil)

	require.NoError(t, store.Recipes().Save(ctx, recipe))
	assert.Equal(t, "RECIPE#"+recipe.ID().String(), stringAttr(stored.Item, "PK"))
	assert.Equal(t, "RECIPE", stringAttr(stored.Item, "GSI1PK"))

	got, err := store.Recipes().GetByID(ctx, recipe.ID())
	require.NoError(t, err)
	assert.Equal(t, recipe.ID(), got.ID())
	assert.Equal(t, "Omelette", got.Title())
	assert.Equal(t, "Whisk and fry.", got.Instructions())
	assert.Equal(t, recipe.Lines(), got.Lines())
	assert.True(t, recipe.CreatedAt().Equal(got.CreatedAt()))
}

func TestRecipeRepository_Missing(t *testing.T) {
	ctx := context.Background()
	store, client := newTestStore()
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)
	client.On("DeleteItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("gone")})

	_, err := store.Recipes().GetByID(ctx, valueobjects.NewID())
	assert.True(t, pkgerrors.IsNotFound(err))

	err = store.Recipes().Delete(ctx, valueobjects.NewID())
	assert.True(t, pkgerrors.IsNotFound(err))

	err = store.Pairings().Delete(ctx, valueobjects.NewID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestReferenceRepository_DeleteAllBatches(t *testing.T) {
	store, client := newTestStore()

	items := make([]map[string]types.AttributeValue, 13)
	for i := range items {
		items[i] = map[string]types.AttributeValue{
			"PK":   &types.AttributeValueMemberS{Value: fmt.Sprintf("INGREDIENT#%d", i)},
			"SK":   &types.AttributeValueMemberS{Value: metadataSK},
			"ID":   &types.AttributeValueMemberS{Value: fmt.Sprintf("%d", i)},
			"Name": &types.AttributeValueMemberS{Value: fmt.Sprintf("item %d", i)},
		}
	}
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.IndexName) == "GSI1"
	})).Return(&dynamodb.QueryOutput{Items: items}, nil)

	var batchSizes []int
	client.On("BatchWriteItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*dynamodb.BatchWriteItemInput)
			batchSizes = append(batchSizes, len(in.RequestItems["recipes-test"]))
		}).
		Return(&dynamodb.BatchWriteItemOutput{}, nil)

	repo, _ := store.References().For(valueobjects.KindIngredient)
	n, err := repo.DeleteAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 13, n)
	// 13 entities plus 13 name markers
	assert.Equal(t, []int{25, 1}, batchSizes)
}

func TestStore_Ping(t *testing.T) {
	tests := []struct {
		name    string
		out     *dynamodb.DescribeTableOutput
		err     error
		wantErr bool
	}{
		{"active", &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusActive}}, nil, false},
		{"creating", &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableStatus: types.TableStatusCreating}}, nil, true},
		{"missing", nil, &types.ResourceNotFoundException{Message: aws.String("no table")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, client := newTestStore()
			client.On("DescribeTable", mock.Anything, mock.Anything).Return(tt.out, tt.err)

			err := store.Ping(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
