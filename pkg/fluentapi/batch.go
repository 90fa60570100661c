package fluentapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/fluentapi/internal/constants"
	"github.com/hashicorp/go-multierror"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedOperation = errors.New("unsupported batch operation")
	ErrMissingEndpoint      = errors.New("batch operation has no endpoint")
	ErrBatchFailed          = errors.New("batch failed")
)

// BatchOp names the endpoint method a batch operation calls.
type BatchOp string

const (
	BatchGet     BatchOp = "get"
	BatchCreate  BatchOp = "create"
	BatchUpdate  BatchOp = "update"
	BatchReplace BatchOp = "replace"
	BatchDelete  BatchOp = "delete"
)

// BatchOperation represents a single operation in a batch.
type BatchOperation struct {
	ID       string
	Op       BatchOp
	Endpoint Endpoint
	// RecordID selects a record. For get, nil reads the whole collection.
	RecordID any
	Data     any
	Params   Params
	Callback func(result *BatchResult)
}

// BatchResult represents the result of a batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Response *Response
	Error    error
	Duration time.Duration
}

// BatchExecutor runs operations concurrently with a bounded number in flight.
type BatchExecutor struct {
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a new batch executor. A concurrency below one
// uses constants.DefaultBatchConcurrency.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	return &BatchExecutor{
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the timeout for each operation.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs every operation and returns results in input order. The error
// wraps ErrBatchFailed and lists each failed operation.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	var failures *multierror.Error

	for _, result := range results {
		if !result.Success {
			failures = multierror.Append(failures, fmt.Errorf("%s: %w", result.ID, result.Error))
		}
	}

	if failures != nil {
		return results, fmt.Errorf("%w: %d of %d operations failed: %w", ErrBatchFailed, failures.Len(), len(operations), failures)
	}

	return results, nil
}

func executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	if operation.Endpoint == nil {
		result.Error = ErrMissingEndpoint

		return result
	}

	endpoint := operation.Endpoint
	withParams := WithParams(operation.Params)

	var (
		resp *Response
		err  error
	)

	switch operation.Op {
	case BatchGet:
		resp, err = endpoint.Read(ctx, operation.RecordID, operation.Params)
	case BatchCreate:
		resp, err = endpoint.Create(ctx, operation.Data, withParams)
	case BatchUpdate:
		resp, err = endpoint.Update(ctx, operation.RecordID, operation.Data, withParams)
	case BatchReplace:
		resp, err = endpoint.Replace(ctx, operation.RecordID, operation.Data, withParams)
	case BatchDelete:
		resp, err = endpoint.Delete(ctx, operation.RecordID, withParams)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedOperation, operation.Op)
	}

	result.Response = resp
	result.Error = err
	result.Success = err == nil

	return result
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddGet reads a record, or the collection when recordID is nil.
func (b *BatchBuilder) AddGet(id string, endpoint Endpoint, recordID any, params Params) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Op: BatchGet, Endpoint: endpoint, RecordID: recordID, Params: params})
}

// AddCreate posts data to the collection.
func (b *BatchBuilder) AddCreate(id string, endpoint Endpoint, data any) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Op: BatchCreate, Endpoint: endpoint, Data: data})
}

// AddUpdate patches a record.
func (b *BatchBuilder) AddUpdate(id string, endpoint Endpoint, recordID, data any) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Op: BatchUpdate, Endpoint: endpoint, RecordID: recordID, Data: data})
}

// AddReplace puts a record.
func (b *BatchBuilder) AddReplace(id string, endpoint Endpoint, recordID, data any) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Op: BatchReplace, Endpoint: endpoint, RecordID: recordID, Data: data})
}

// AddDelete deletes a record.
func (b *BatchBuilder) AddDelete(id string, endpoint Endpoint, recordID any) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Op: BatchDelete, Endpoint: endpoint, RecordID: recordID})
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the batch operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}
