package auth

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgerrors "recipebook/pkg/errors"
)

func TestSharedSecretAuthorizer(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		presented  string
		wantErr    bool
	}{
		{"exact match", "s3cret", "s3cret", false},
		{"mismatch", "s3cret", "S3CRET", true},
		{"missing", "s3cret", "", true},
		{"prefix only", "s3cret", "s3c", true},
		{"nothing configured", "", "", true},
		{"nothing configured, guess", "", "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSharedSecretAuthorizer(tt.configured).Authorize(context.Background(), tt.presented)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsUnauthorized(err))
				assert.Equal(t, "not authorized", pkgerrors.GetAppError(err).Message)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenBucketLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewTokenBucketLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := limiter.Allow(ctx, "10.0.0.1")
	assert.False(t, ok, "bucket should be empty")

	ok, _ = limiter.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = limiter.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "one token refilled")

	require.NoError(t, limiter.Reset(ctx, "10.0.0.1"))
	ok, _ = limiter.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)
}

func TestTokenBucketLimiter_Prune(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewPerMinuteLimiter(5)
	limiter.now = func() time.Time { return now }

	_, _ = limiter.Allow(context.Background(), "idle")
	now = now.Add(2 * time.Hour)
	limiter.prune()

	assert.Empty(t, limiter.buckets)
}

type mockCounterStore struct {
	mock.Mock
}

func (m *mockCounterStore) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*dynamodb.UpdateItemOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCounterStore) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	return &dynamodb.DeleteItemOutput{}, args.Error(0)
}

func TestDistributedRateLimiter_Allow(t *testing.T) {
	t.Run("under the limit", func(t *testing.T) {
		store := new(mockCounterStore)
		store.On("UpdateItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
			return *in.TableName == "recipes" && in.ConditionExpression != nil
		})).Return(&dynamodb.UpdateItemOutput{
			Attributes: map[string]types.AttributeValue{
				"Count": &types.AttributeValueMemberN{Value: "1"},
			},
		}, nil)
		limiter := NewDistributedRateLimiter(store, "recipes", 3, time.Minute, "ADMIN")

		ok, err := limiter.Allow(context.Background(), "10.0.0.1")

		require.NoError(t, err)
		assert.True(t, ok)
		store.AssertExpectations(t)
	})

	t.Run("condition failure means limited", func(t *testing.T) {
		store := new(mockCounterStore)
		store.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, &types.ConditionalCheckFailedException{})
		limiter := NewDistributedRateLimiter(store, "recipes", 3, time.Minute, "ADMIN")

		ok, err := limiter.Allow(context.Background(), "10.0.0.1")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("no client allows", func(t *testing.T) {
		limiter := NewDistributedRateLimiter(nil, "recipes", 3, time.Minute, "ADMIN")
		ok, err := limiter.Allow(context.Background(), "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
