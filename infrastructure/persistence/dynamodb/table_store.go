package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/jameslaisianto/Back-end-web-dev/application/ports"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/entities"
	"github.com/jameslaisianto/Back-end-web-dev/domain/core/valueobjects"
)

// Key attribute names of every table this store manages.
const (
	partitionKeyAttr = entities.PartitionKeyProperty
	rowKeyAttr       = entities.RowKeyProperty
)

// Client is the subset of the DynamoDB API the store uses. The SDK client
// satisfies it, and tests substitute a double.
type Client interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	DeleteTable(ctx context.Context, params *dynamodb.DeleteTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TableStore opens DynamoDB-backed tables keyed by PartitionKey (HASH) and
// RowKey (RANGE).
type TableStore struct {
	client     Client
	signer     ports.ScopedSigner
	logger     *zap.Logger
	createWait time.Duration
}

// NewTableStore creates a store. createWait bounds how long
// CreateIfNotExists waits for a new table to become ACTIVE; zero skips the wait.
func NewTableStore(client Client, signer ports.ScopedSigner, createWait time.Duration, logger *zap.Logger) *TableStore {
	return &TableStore{
		client:     client,
		signer:     signer,
		logger:     logger,
		createWait: createWait,
	}
}

// Open describes the table once to verify connectivity. A table that does
// not exist yet still yields a handle so it can be created through it.
func (s *TableStore) Open(ctx context.Context, name string) (ports.Table, error) {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err != nil && !isResourceNotFound(err) {
		return nil, fmt.Errorf("describe table %s: %w", name, err)
	}
	return &Table{name: name, store: s}, nil
}

// Table is a handle on one DynamoDB table
type Table struct {
	name  string
	store *TableStore
}

func (t *Table) Name() string { return t.name }

func (t *Table) key(partition, row string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		partitionKeyAttr: &types.AttributeValueMemberS{Value: partition},
		rowKeyAttr:       &types.AttributeValueMemberS{Value: row},
	}
}

// CreateIfNotExists creates the table with on-demand billing.
func (t *Table) CreateIfNotExists(ctx context.Context) (bool, error) {
	_, err := t.store.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(t.name),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(partitionKeyAttr), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(rowKeyAttr), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(partitionKeyAttr), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(rowKeyAttr), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		if hasErrorCode(err, "ResourceInUseException") {
			return false, nil
		}
		return false, fmt.Errorf("create table %s: %w", t.name, err)
	}

	if t.store.createWait > 0 {
		waiter := dynamodb.NewTableExistsWaiter(t.store.client)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(t.name)}, t.store.createWait); err != nil {
			return true, fmt.Errorf("wait for table %s: %w", t.name, err)
		}
	}

	t.store.logger.Info("Created table", zap.String("table", t.name))
	return true, nil
}

func (t *Table) Exists(ctx context.Context) (bool, error) {
	_, err := t.store.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(t.name)})
	if err != nil {
		if isResourceNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("describe table %s: %w", t.name, err)
	}
	return true, nil
}

func (t *Table) Retrieve(ctx context.Context, partition, row string) (*entities.Entity, error) {
	out, err := t.store.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(t.name),
		Key:            t.key(partition, row),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, t.mapError("get item", err)
	}
	if len(out.Item) == 0 {
		return nil, ports.ErrEntityNotFound
	}
	return itemToEntity(out.Item)
}

// InsertOrMerge issues a single UpdateItem that SETs every given property,
// so a failed write never leaves a partial merge behind.
func (t *Table) InsertOrMerge(ctx context.Context, e *entities.Entity) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(t.name),
		Key:       t.key(e.Partition, e.Row),
	}

	if names := e.PropertyNames(); len(names) > 0 {
		// property names are flat attributes; a dot is not a document path
		update := expression.Set(expression.NameNoDotSplit(names[0]), expression.Value(e.Properties[names[0]]))
		for _, name := range names[1:] {
			update = update.Set(expression.NameNoDotSplit(name), expression.Value(e.Properties[name]))
		}
		expr, err := expression.NewBuilder().WithUpdate(update).Build()
		if err != nil {
			return fmt.Errorf("build update expression: %w", err)
		}
		input.UpdateExpression = expr.Update()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := t.store.client.UpdateItem(ctx, input); err != nil {
		return t.mapError("update item", err)
	}
	return nil
}

func (t *Table) Delete(ctx context.Context, partition, row string) error {
	out, err := t.store.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(t.name),
		Key:          t.key(partition, row),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return t.mapError("delete item", err)
	}
	if len(out.Attributes) == 0 {
		return ports.ErrEntityNotFound
	}
	return nil
}

func (t *Table) DeleteTable(ctx context.Context) error {
	_, err := t.store.client.DeleteTable(ctx, &dynamodb.DeleteTableInput{TableName: aws.String(t.name)})
	if err != nil {
		return t.mapError("delete table", err)
	}
	t.store.logger.Info("Deleted table", zap.String("table", t.name))
	return nil
}

func (t *Table) Scan(ctx context.Context, visit func(*entities.Entity) bool) error {
	paginator := dynamodb.NewScanPaginator(t.store.client, &dynamodb.ScanInput{
		TableName:      aws.String(t.name),
		ConsistentRead: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return t.mapError("scan", err)
		}
		for _, item := range page.Items {
			e, err := itemToEntity(item)
			if err != nil {
				return err
			}
			if !visit(e) {
				return nil
			}
		}
	}
	return nil
}

// MintScopedSignature signs with the shared token signer; DynamoDB has no
// native scoped access signatures.
func (t *Table) MintScopedSignature(partition, row string, perms valueobjects.Permission, expiry time.Time) (string, error) {
	if t.store.signer == nil {
		return "", errors.New("table store has no token signer configured")
	}
	return t.store.signer.Mint(valueobjects.Scope{Table: t.name, Partition: partition, Row: row}, perms, expiry)
}

func (t *Table) mapError(op string, err error) error {
	if isResourceNotFound(err) {
		return ports.ErrTableNotFound
	}
	return fmt.Errorf("%s on %s: %w", op, t.name, err)
}

func itemToEntity(item map[string]types.AttributeValue) (*entities.Entity, error) {
	var props map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &props); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}

	partition, _ := props[partitionKeyAttr].(string)
	row, _ := props[rowKeyAttr].(string)
	delete(props, partitionKeyAttr)
	delete(props, rowKeyAttr)

	e := entities.NewEntity(partition, row)
	e.Merge(props)
	return e, nil
}

func isResourceNotFound(err error) bool {
	return hasErrorCode(err, "ResourceNotFoundException")
}

func hasErrorCode(err error, code string) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == code
}
