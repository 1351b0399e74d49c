// Package dynamodb implements the DocumentStore on a single DynamoDB table.
// Every collection shares the table: PK is "COLL#<collection>" and SK is
// "DOC#<id>", so a collection scan is one partition query.
package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"teamsqa-backend/application/ports"
	apperrors "teamsqa-backend/pkg/errors"
)

const (
	collectionKeyPrefix = "COLL#"
	documentKeyPrefix   = "DOC#"
	fieldsAttribute     = "Fields"
)

// Store is the production DocumentStore.
//
// Filters translate to DynamoDB filter expressions; ordering, offset, and
// projection are applied client side because the sort key carries the
// document ID, not an arbitrary field. Collections here are small enough
// that reading the partition is acceptable.
type Store struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewStore creates a DynamoDB document store.
func NewStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// documentItem is the DynamoDB item layout for one document.
type documentItem struct {
	PK         string                 `dynamodbav:"PK"`
	SK         string                 `dynamodbav:"SK"`
	Collection string                 `dynamodbav:"Collection"`
	DocumentID string                 `dynamodbav:"DocumentID"`
	Fields     map[string]interface{} `dynamodbav:"Fields"`
}

func partitionKey(collection string) string { return collectionKeyPrefix + collection }
func sortKey(id string) string              { return documentKeyPrefix + id }

func (s *Store) Get(ctx context.Context, collection, id string) (*ports.Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionKey(collection)},
			"SK": &types.AttributeValueMemberS{Value: sortKey(id)},
		},
	})
	if err != nil {
		return nil, apperrors.NewDatabase(fmt.Sprintf("get %s/%s", collection, id), err)
	}
	if len(out.Item) == 0 {
		return nil, ports.ErrDocumentNotFound
	}

	var item documentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewDatabase(fmt.Sprintf("unmarshal %s/%s", collection, id), err)
	}
	return &ports.Document{ID: item.DocumentID, Fields: item.Fields}, nil
}

func (s *Store) Put(ctx context.Context, collection string, doc ports.Document) error {
	if doc.ID == "" {
		return apperrors.NewValidation("document id is required")
	}
	item, err := attributevalue.MarshalMap(documentItem{
		PK:         partitionKey(collection),
		SK:         sortKey(doc.ID),
		Collection: collection,
		DocumentID: doc.ID,
		Fields:     doc.Fields,
	})
	if err != nil {
		return apperrors.NewDatabase(fmt.Sprintf("marshal %s/%s", collection, doc.ID), err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return apperrors.NewDatabase(fmt.Sprintf("put %s/%s", collection, doc.ID), err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionKey(collection)},
			"SK": &types.AttributeValueMemberS{Value: sortKey(id)},
		},
	})
	if err != nil {
		return apperrors.NewDatabase(fmt.Sprintf("delete %s/%s", collection, id), err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, spec ports.FindSpec) ([]ports.Document, error) {
	expr, err := buildQueryExpression(spec.Collection, spec.Filters)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var docs []ports.Document
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, apperrors.NewDatabase("query "+spec.Collection, err)
		}
		for _, raw := range out.Items {
			var item documentItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, apperrors.NewDatabase("unmarshal "+spec.Collection, err)
			}
			docs = append(docs, ports.Document{ID: item.DocumentID, Fields: item.Fields})
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	if spec.OrderBy != nil {
		sortDocs(docs, *spec.OrderBy)
	}
	if spec.Offset > 0 {
		if spec.Offset >= len(docs) {
			return []ports.Document{}, nil
		}
		docs = docs[spec.Offset:]
	}
	if spec.Limit > 0 && len(docs) > spec.Limit {
		docs = docs[:spec.Limit]
	}
	if len(spec.Fields) > 0 {
		for i, d := range docs {
			docs[i] = projectDoc(d, spec.Fields)
		}
	}
	return docs, nil
}

func (s *Store) Count(ctx context.Context, collection string, filters []ports.Filter) (int, error) {
	expr, err := buildQueryExpression(collection, filters)
	if err != nil {
		return 0, err
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		Select:                    types.SelectCount,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	total := 0
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return 0, apperrors.NewDatabase("count "+collection, err)
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return total, nil
}

// buildQueryExpression translates filters into a partition query with a
// filter expression over the document's field map.
func buildQueryExpression(collection string, filters []ports.Filter) (expression.Expression, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(partitionKey(collection)))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	if len(filters) > 0 {
		cond, err := filterCondition(filters[0])
		if err != nil {
			return expression.Expression{}, err
		}
		for _, f := range filters[1:] {
			next, err := filterCondition(f)
			if err != nil {
				return expression.Expression{}, err
			}
			cond = cond.And(next)
		}
		builder = builder.WithFilter(cond)
	}

	expr, err := builder.Build()
	if err != nil {
		return expression.Expression{}, apperrors.NewDatabase("build query expression", err)
	}
	return expr, nil
}

func filterCondition(f ports.Filter) (expression.ConditionBuilder, error) {
	name := expression.Name(fieldsAttribute + "." + f.Field)
	value := expression.Value(f.Value)

	switch f.Op {
	case ports.OpEqual:
		return name.Equal(value), nil
	case ports.OpNotEqual:
		return name.NotEqual(value), nil
	case ports.OpGreaterThan:
		return name.GreaterThan(value), nil
	case ports.OpGreaterOrEqual:
		return name.GreaterThanEqual(value), nil
	case ports.OpLessThan:
		return name.LessThan(value), nil
	case ports.OpLessOrEqual:
		return name.LessThanEqual(value), nil
	case ports.OpArrayContains:
		// contains() takes a scalar operand; our list filters are string tags.
		str, ok := f.Value.(string)
		if !ok {
			return expression.ConditionBuilder{}, apperrors.NewValidation("array-contains requires a string value")
		}
		return name.Contains(str), nil
	default:
		return expression.ConditionBuilder{}, apperrors.NewValidation("unknown filter operator: " + string(f.Op))
	}
}

func sortDocs(docs []ports.Document, order ports.Order) {
	sort.SliceStable(docs, func(i, j int) bool {
		cmp, ok := compareFieldValues(docs[i].Fields[order.Field], docs[j].Fields[order.Field])
		if !ok {
			return false
		}
		if order.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareFieldValues(a, b interface{}) (int, bool) {
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func projectDoc(d ports.Document, fields []string) ports.Document {
	out := ports.Document{ID: d.ID, Fields: make(map[string]interface{}, len(fields))}
	for _, f := range fields {
		if v, ok := d.Fields[f]; ok {
			out.Fields[f] = v
		}
	}
	return out
}
