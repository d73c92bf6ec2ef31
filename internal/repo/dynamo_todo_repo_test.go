package repo

import (
	"context"
	"errors"
	"sort"
	"testing"

	dom "github.com/birlikkoshan/todo-serverless/internal/domain"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo is an in-memory single-table DynamoDB keyed by "Id".
// Only the calls DynamoTodoRepo makes are implemented.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI

	items    map[string]map[string]*dynamodb.AttributeValue
	pageSize int
	failWith error
	tables   map[string]bool
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		items:    map[string]map[string]*dynamodb.AttributeValue{},
		pageSize: 1,
		tables:   map[string]bool{},
	}
}

func (f *fakeDynamo) ScanPagesWithContext(_ aws.Context, _ *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, _ ...request.Option) error {
	if f.failWith != nil {
		return f.failWith
	}
	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		fn(&dynamodb.ScanOutput{}, true)
		return nil
	}
	for start := 0; start < len(keys); start += f.pageSize {
		end := start + f.pageSize
		if end > len(keys) {
			end = len(keys)
		}
		page := &dynamodb.ScanOutput{}
		for _, k := range keys[start:end] {
			page.Items = append(page.Items, f.items[k])
		}
		if !fn(page, end == len(keys)) {
			break
		}
	}
	return nil
}

func (f *fakeDynamo) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &dynamodb.GetItemOutput{Item: f.items[aws.StringValue(in.Key["Id"].S)]}, nil
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	id := aws.StringValue(in.Item["Id"].S)
	if aws.StringValue(in.ConditionExpression) == "attribute_not_exists(#id)" {
		if _, ok := f.items[id]; ok {
			return nil, awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "The conditional request failed", nil)
		}
	}
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItemWithContext(_ aws.Context, in *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	delete(f.items, aws.StringValue(in.Key["Id"].S))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) DescribeTableWithContext(_ aws.Context, in *dynamodb.DescribeTableInput, _ ...request.Option) (*dynamodb.DescribeTableOutput, error) {
	if !f.tables[aws.StringValue(in.TableName)] {
		return nil, awserr.New(dynamodb.ErrCodeResourceNotFoundException, "Requested resource not found", nil)
	}
	return &dynamodb.DescribeTableOutput{Table: &dynamodb.TableDescription{TableName: in.TableName}}, nil
}

func (f *fakeDynamo) CreateTableWithContext(_ aws.Context, in *dynamodb.CreateTableInput, _ ...request.Option) (*dynamodb.CreateTableOutput, error) {
	f.tables[aws.StringValue(in.TableName)] = true
	return &dynamodb.CreateTableOutput{}, nil
}

func (f *fakeDynamo) WaitUntilTableExistsWithContext(_ aws.Context, in *dynamodb.DescribeTableInput, _ ...request.WaiterOption) error {
	if !f.tables[aws.StringValue(in.TableName)] {
		return errors.New("table never became active")
	}
	return nil
}

func TestDynamoTodoRepo(t *testing.T) {
	runTodoRepoContract(t, NewDynamoTodoRepo(newFakeDynamo(), "Todos"))
}

func TestDynamoTodoRepoItemLayout(t *testing.T) {
	fake := newFakeDynamo()
	r := NewDynamoTodoRepo(fake, "Todos")

	require.NoError(t, r.Save(context.Background(), dom.Todo{ID: "x", Description: "d"}))

	item := fake.items["x"]
	require.NotNil(t, item)
	assert.Equal(t, "x", aws.StringValue(item["Id"].S))
	assert.Equal(t, "d", aws.StringValue(item["Description"].S))
	assert.False(t, aws.BoolValue(item["IsCompleted"].BOOL))
	assert.NotNil(t, item["CreatedAt"].S)
	_, hasUpdated := item["UpdatedAt"]
	assert.False(t, hasUpdated, "UpdatedAt is omitted until the first mutation")
}

func TestDynamoTodoRepoBackendError(t *testing.T) {
	fake := newFakeDynamo()
	fake.failWith = awserr.New(dynamodb.ErrCodeProvisionedThroughputExceededException, "slow down", nil)
	r := NewDynamoTodoRepo(fake, "Todos")

	_, err := r.List(context.Background())
	require.Error(t, err)
	assert.True(t, isAWSCode(err, dynamodb.ErrCodeProvisionedThroughputExceededException))

	_, err = r.GetByID(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDynamoTodoRepoEnsureTable(t *testing.T) {
	fake := newFakeDynamo()
	r := NewDynamoTodoRepo(fake, "Todos")

	require.NoError(t, r.EnsureTable(context.Background()))
	assert.True(t, fake.tables["Todos"])

	// second call finds the table and does nothing
	require.NoError(t, r.EnsureTable(context.Background()))
}
