// Package restaurants reads restaurant details from DynamoDB.
package restaurants

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyAttribute is the partition key of the restaurant table
const KeyAttribute = "Business ID"

// ErrNotFound is returned when no item exists for the requested id.
var ErrNotFound = errors.New("restaurant not found")

// DynamoDBAPI is the subset of the DynamoDB client used by Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Record is one restaurant. Rating, ReviewCount and ZipCode are optional.
type Record struct {
	BusinessID  string  `dynamodbav:"Business ID"`
	Name        string  `dynamodbav:"Name"`
	Address     string  `dynamodbav:"Address"`
	Rating      float64 `dynamodbav:"Rating,omitempty"`
	ReviewCount int     `dynamodbav:"ReviewCount,omitempty"`
	ZipCode     string  `dynamodbav:"ZipCode,omitempty"`
}

var projection = expression.NamesList(
	expression.Name(KeyAttribute),
	expression.Name("Name"),
	expression.Name("Address"),
	expression.Name("Rating"),
	expression.Name("ReviewCount"),
	expression.Name("ZipCode"),
)

// Store looks up restaurants by business id.
type Store struct {
	client DynamoDBAPI
	table  string
	expr   expression.Expression
}

// NewStore returns a Store reading from table.
func NewStore(client DynamoDBAPI, table string) (*Store, error) {
	expr, err := expression.NewBuilder().WithProjection(projection).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build projection expression: %w", err)
	}
	return &Store{client: client, table: table, expr: expr}, nil
}

// Get returns the restaurant with the given business id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, businessID string) (Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			KeyAttribute: &types.AttributeValueMemberS{Value: businessID},
		},
		ProjectionExpression:     s.expr.Projection(),
		ExpressionAttributeNames: s.expr.Names(),
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to get restaurant %s from table %s: %w", businessID, s.table, err)
	}
	if len(out.Item) == 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, businessID)
	}

	var record Record
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return Record{}, fmt.Errorf("failed to decode restaurant %s: %w", businessID, err)
	}
	return record, nil
}
