package table

import (
	"bytes"
	"net/http"

	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/transport"
)

// Result is the successful outcome of one operation.
type Result struct {
	// StatusCode is the HTTP status the service answered with.
	StatusCode int

	// ETag is the entity tag of the affected row, empty for deletes.
	ETag string

	// Entity points at the caller's entity, refreshed with the server
	// state where the operation returns any. Nil for resolver retrieves
	// and for retrieves that found nothing.
	Entity Entity

	// Value is the resolver product for RetrieveWith operations.
	Value any
}

// writeResult builds the result of an acknowledged write, refreshing the
// entity's tag from the response header. Deletes leave the tag alone: the
// row is gone and the stale tag documents what was deleted.
func (op *Operation) writeResult(resp *transport.Response) *Result {
	res := &Result{StatusCode: resp.StatusCode, Entity: op.entity}
	if op.kind == KindDelete {
		return res
	}
	if etag := resp.ETag(); etag != "" {
		res.ETag = etag
		op.entity.SetETag(etag)
	}
	return res
}

// interpretDelete maps a delete attempt's status to its outcome. Not-found
// and conflict are business outcomes of the conditional delete, classified
// non-retryable; anything but 204 otherwise is a transient service fault.
func (op *Operation) interpretDelete(resp *transport.Response) (any, error) {
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict:
		return nil, newServiceError(false, resp)
	case resp.StatusCode != http.StatusNoContent:
		return nil, newServiceError(true, resp)
	}
	return op.writeResult(resp), nil
}

// interpretInsert maps an insert-family attempt's status to its outcome.
// The expected success status depends on the echo flag: echoing inserts
// answer 201 with a body, silent inserts and upserts answer 204 with the
// tag in a header. Body parsing for the echo path happens later, in
// postProcessEcho.
func (op *Operation) interpretInsert(resp *transport.Response) (any, error) {
	if op.kind == KindInsert {
		expected := http.StatusNoContent
		if op.echoContent {
			expected = http.StatusCreated
		}
		switch resp.StatusCode {
		case expected:
			if op.echoContent {
				return &Result{StatusCode: resp.StatusCode, Entity: op.entity}, nil
			}
			return op.writeResult(resp), nil
		case http.StatusConflict:
			return nil, newServiceError(false, resp)
		default:
			return nil, newServiceError(true, resp)
		}
	}

	// Upserts succeed whether or not the row existed, so conflict carries
	// no special meaning for them.
	if resp.StatusCode == http.StatusNoContent {
		return op.writeResult(resp), nil
	}
	return nil, newServiceError(true, resp)
}

// interpretUpdate maps a merge or replace attempt's status to its outcome.
func (op *Operation) interpretUpdate(resp *transport.Response) (any, error) {
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusConflict:
		return nil, newServiceError(false, resp)
	case resp.StatusCode == http.StatusNoContent:
		return op.writeResult(resp), nil
	}
	return nil, newServiceError(true, resp)
}

// postProcessEcho is the second pass for echo-enabled inserts: the first
// pass decided success from the status alone, this one parses the returned
// body into the caller's entity.
func (op *Operation) postProcessEcho(codec odata.Codec, format odata.Format) func(*transport.Response, any) (any, error) {
	return func(resp *transport.Response, _ any) (any, error) {
		row, err := codec.DecodeSingle(bytes.NewReader(resp.Body), format)
		if err != nil {
			return nil, err
		}

		etag := resp.ETag()
		if etag == "" {
			etag = row.ETag
		}

		if err := op.entity.ReadEntity(row.Properties); err != nil {
			return nil, err
		}
		op.entity.SetETag(etag)
		if !row.Timestamp.IsZero() {
			op.entity.SetTimestamp(row.Timestamp)
		}

		return &Result{StatusCode: resp.StatusCode, ETag: etag, Entity: op.entity}, nil
	}
}

// retrieveOutcome carries the raw row alongside the result so the client
// can feed its cache without re-parsing.
type retrieveOutcome struct {
	result *Result
	row    odata.Row
	raw    []byte
	found  bool
}

// interpretRetrieve maps a retrieve attempt's status. A missing row is a
// legitimate answer, not an error: the result carries the 404 with no
// entity.
func (op *Operation) interpretRetrieve(resp *transport.Response) (any, error) {
	switch resp.StatusCode {
	case http.StatusOK:
		return &retrieveOutcome{found: true}, nil
	case http.StatusNotFound:
		return &retrieveOutcome{result: &Result{StatusCode: resp.StatusCode}}, nil
	default:
		return nil, newServiceError(true, resp)
	}
}

// postProcessRetrieve parses the found row and applies the target entity or
// the projection resolver, whichever the factory bound.
func (op *Operation) postProcessRetrieve(codec odata.Codec, format odata.Format) func(*transport.Response, any) (any, error) {
	return func(resp *transport.Response, pre any) (any, error) {
		outcome := pre.(*retrieveOutcome)
		if !outcome.found {
			return outcome, nil
		}

		row, err := codec.DecodeSingle(bytes.NewReader(resp.Body), format)
		if err != nil {
			return nil, err
		}
		if row.ETag == "" {
			row.ETag = resp.ETag()
		}

		result, err := op.applyRow(row)
		if err != nil {
			return nil, err
		}
		result.StatusCode = resp.StatusCode
		outcome.result = result
		outcome.row = row
		outcome.raw = resp.Body
		return outcome, nil
	}
}

// applyRow materializes a retrieved row through the operation's resolver or
// target entity. Also used for cache hits, where no response exists.
func (op *Operation) applyRow(row odata.Row) (*Result, error) {
	if op.resolver != nil {
		value, err := op.resolver(row)
		if err != nil {
			return nil, err
		}
		return &Result{StatusCode: http.StatusOK, ETag: row.ETag, Value: value}, nil
	}

	if rekeyable, ok := op.target.(interface{ SetKeys(pk, rk string) }); ok {
		rekeyable.SetKeys(row.PartitionKey, row.RowKey)
	}
	if err := op.target.ReadEntity(row.Properties); err != nil {
		return nil, err
	}
	op.target.SetETag(row.ETag)
	op.target.SetTimestamp(row.Timestamp)

	return &Result{StatusCode: http.StatusOK, ETag: row.ETag, Entity: op.target}, nil
}
