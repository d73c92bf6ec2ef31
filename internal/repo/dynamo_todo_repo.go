package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "github.com/birlikkoshan/todo-serverless/internal/domain"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// Attribute names match the table written by the original deployment.
const dynamoHashKey = "Id"

type dynamoTodoItem struct {
	ID          string  `dynamodbav:"Id"`
	Description string  `dynamodbav:"Description"`
	IsCompleted bool    `dynamodbav:"IsCompleted"`
	CreatedAt   string  `dynamodbav:"CreatedAt"`
	UpdatedAt   *string `dynamodbav:"UpdatedAt,omitempty"`
}

func toDynamoItem(t dom.Todo) dynamoTodoItem {
	item := dynamoTodoItem{
		ID:          t.ID,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if t.UpdatedAt != nil {
		item.UpdatedAt = aws.String(t.UpdatedAt.UTC().Format(time.RFC3339Nano))
	}
	return item
}

func (i dynamoTodoItem) todo() (dom.Todo, error) {
	t := dom.Todo{ID: i.ID, Description: i.Description, IsCompleted: i.IsCompleted}
	created, err := time.Parse(time.RFC3339Nano, i.CreatedAt)
	if err != nil {
		return dom.Todo{}, fmt.Errorf("todo %s: bad CreatedAt %q: %w", i.ID, i.CreatedAt, err)
	}
	t.CreatedAt = created.UTC()
	if i.UpdatedAt != nil && *i.UpdatedAt != "" {
		updated, err := time.Parse(time.RFC3339Nano, *i.UpdatedAt)
		if err != nil {
			return dom.Todo{}, fmt.Errorf("todo %s: bad UpdatedAt %q: %w", i.ID, *i.UpdatedAt, err)
		}
		updated = updated.UTC()
		t.UpdatedAt = &updated
	}
	return t, nil
}

// DynamoTodoRepo keeps todos in a single DynamoDB table with a string hash key "Id".
type DynamoTodoRepo struct {
	db    dynamodbiface.DynamoDBAPI
	table string
}

func NewDynamoTodoRepo(db dynamodbiface.DynamoDBAPI, table string) *DynamoTodoRepo {
	return &DynamoTodoRepo{db: db, table: table}
}

func (r *DynamoTodoRepo) key(id string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{dynamoHashKey: {S: aws.String(id)}}
}

func (r *DynamoTodoRepo) List(ctx context.Context) ([]dom.Todo, error) {
	list := []dom.Todo{}
	var decodeErr error
	err := r.db.ScanPagesWithContext(ctx, &dynamodb.ScanInput{TableName: aws.String(r.table)},
		func(page *dynamodb.ScanOutput, _ bool) bool {
			var items []dynamoTodoItem
			if err := dynamodbattribute.UnmarshalListOfMaps(page.Items, &items); err != nil {
				decodeErr = err
				return false
			}
			for _, item := range items {
				t, err := item.todo()
				if err != nil {
					decodeErr = err
					return false
				}
				list = append(list, t)
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("dynamodb scan %s: %w", r.table, err)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("dynamodb decode %s: %w", r.table, decodeErr)
	}
	return list, nil
}

func (r *DynamoTodoRepo) GetByID(ctx context.Context, id string) (dom.Todo, error) {
	out, err := r.db.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return dom.Todo{}, fmt.Errorf("dynamodb get %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return dom.Todo{}, ErrNotFound
	}
	var item dynamoTodoItem
	if err := dynamodbattribute.UnmarshalMap(out.Item, &item); err != nil {
		return dom.Todo{}, fmt.Errorf("dynamodb decode %s: %w", id, err)
	}
	return item.todo()
}

func (r *DynamoTodoRepo) Create(ctx context.Context, t dom.Todo) error {
	err := r.put(ctx, t, aws.String("attribute_not_exists(#id)"))
	if isAWSCode(err, dynamodb.ErrCodeConditionalCheckFailedException) {
		return ErrAlreadyExists
	}
	return err
}

func (r *DynamoTodoRepo) Save(ctx context.Context, t dom.Todo) error {
	return r.put(ctx, t, nil)
}

func (r *DynamoTodoRepo) put(ctx context.Context, t dom.Todo, condition *string) error {
	av, err := dynamodbattribute.MarshalMap(toDynamoItem(t))
	if err != nil {
		return fmt.Errorf("dynamodb encode %s: %w", t.ID, err)
	}
	in := &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	}
	if condition != nil {
		in.ConditionExpression = condition
		in.ExpressionAttributeNames = map[string]*string{"#id": aws.String(dynamoHashKey)}
	}
	if _, err := r.db.PutItemWithContext(ctx, in); err != nil {
		return fmt.Errorf("dynamodb put %s: %w", t.ID, err)
	}
	return nil
}

func (r *DynamoTodoRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(id),
	})
	if err != nil {
		return fmt.Errorf("dynamodb delete %s: %w", id, err)
	}
	return nil
}

// EnsureTable creates the table (on-demand billing) when it does not exist yet
// and waits until it is active. Meant for DynamoDB Local and first deploys.
func (r *DynamoTodoRepo) EnsureTable(ctx context.Context) error {
	_, err := r.db.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err == nil {
		return nil
	}
	if !isAWSCode(err, dynamodb.ErrCodeResourceNotFoundException) {
		return fmt.Errorf("dynamodb describe %s: %w", r.table, err)
	}
	_, err = r.db.CreateTableWithContext(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(r.table),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String(dynamoHashKey), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String(dynamoHashKey), KeyType: aws.String(dynamodb.KeyTypeHash)},
		},
	})
	if err != nil && !isAWSCode(err, dynamodb.ErrCodeResourceInUseException) {
		return fmt.Errorf("dynamodb create table %s: %w", r.table, err)
	}
	if err := r.db.WaitUntilTableExistsWithContext(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)}); err != nil {
		return fmt.Errorf("dynamodb wait for %s: %w", r.table, err)
	}
	return nil
}

func isAWSCode(err error, code string) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == code
	}
	return false
}
