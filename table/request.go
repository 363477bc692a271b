package table

import (
	"fmt"

	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/transport"
)

// Protocol header values shared by every request.
const (
	serviceVersion        = "2013-08-15"
	dataServiceVersion    = "3.0;NetFx"
	maxDataServiceVersion = "3.0;NetFx"

	headerVersion        = "x-ms-version"
	headerIfMatch        = "If-Match"
	headerPrefer         = "Prefer"
	preferReturnContent  = "return-content"
	preferReturnNothing  = "return-no-content"
	tableNameProperty    = "TableName"
)

// baseHeaders assembles the headers every operation sends.
func baseHeaders(format odata.Format, hasBody bool) map[string]string {
	h := map[string]string{
		"Accept":                format.Accept(),
		headerVersion:           serviceVersion,
		"DataServiceVersion":    dataServiceVersion,
		"MaxDataServiceVersion": maxDataServiceVersion,
	}
	if hasBody {
		h["Content-Type"] = odata.ContentType
	}
	return h
}

// resourcePath joins the table name with the row identity fragment. Plain
// inserts target the table itself and carry no identity parentheses.
func resourcePath(tableName, identity string) string {
	if identity == "" {
		return "/" + tableName
	}
	return fmt.Sprintf("/%s(%s)", tableName, identity)
}

// tableEntryName extracts the literal entry name for operations against
// the catalog pseudo-table, where the row is addressed by the table name it
// represents.
func tableEntryName(op *Operation) (string, error) {
	props, err := op.entity.WriteEntity()
	if err != nil {
		return "", &EncodingError{Kind: op.kind, wrapped: err}
	}
	prop, ok := props[tableNameProperty]
	if !ok {
		return "", newPrecondition(op.kind, "table entry has no TableName property")
	}
	name, ok := prop.Value.(string)
	if !ok || name == "" {
		return "", newPrecondition(op.kind, "table entry TableName is not a non-empty string")
	}
	return name, nil
}

// requireKeys re-validates the entity's primary key at build time.
func requireKeys(op *Operation) error {
	if op.entity.PartitionKey() == "" {
		return newPrecondition(op.kind, "partition key is required")
	}
	if op.entity.RowKey() == "" {
		return newPrecondition(op.kind, "row key is required")
	}
	return nil
}

// encodeBody serializes the operation's entity exactly once. The returned
// buffer is handed to the engine verbatim and replayed on every retry.
func (c *Client) encodeBody(op *Operation, format odata.Format, isTableEntry bool) ([]byte, error) {
	props, err := op.entity.WriteEntity()
	if err != nil {
		return nil, &EncodingError{Kind: op.kind, wrapped: err}
	}
	row := odata.Row{
		PartitionKey: op.entity.PartitionKey(),
		RowKey:       op.entity.RowKey(),
		Properties:   props,
	}
	body, err := c.codec.Encode(row, format, isTableEntry)
	if err != nil {
		return nil, &EncodingError{Kind: op.kind, wrapped: err}
	}
	return body, nil
}

// buildDelete produces the request specification for a delete.
func (c *Client) buildDelete(op *Operation, tableName string, opts RequestOptions) (*transport.RequestSpec, error) {
	isTableEntry := tableName == TablesServiceTableName

	var entryName string
	if isTableEntry {
		name, err := tableEntryName(op)
		if err != nil {
			return nil, err
		}
		entryName = name
	} else {
		if op.entity.ETag() == "" {
			return nil, newPrecondition(op.kind, "entity tag is required")
		}
		if err := requireKeys(op); err != nil {
			return nil, err
		}
	}

	headers := baseHeaders(opts.PayloadFormat, false)
	headers[headerIfMatch] = op.entity.ETag()

	return &transport.RequestSpec{
		Method:     op.kind.httpMethod(),
		Resource:   resourcePath(tableName, op.requestIdentity(isTableEntry, entryName, false)),
		Headers:    headers,
		PreProcess: op.interpretDelete,
	}, nil
}

// buildInsert produces the request specification for the insert family:
// plain inserts POST to the table, upserts address the row with their
// merge/replace verb.
func (c *Client) buildInsert(op *Operation, tableName string, opts RequestOptions) (*transport.RequestSpec, error) {
	isTableEntry := tableName == TablesServiceTableName

	var entryName string
	if isTableEntry {
		name, err := tableEntryName(op)
		if err != nil {
			return nil, err
		}
		entryName = name
	} else if err := requireKeys(op); err != nil {
		return nil, err
	}

	body, err := c.encodeBody(op, opts.PayloadFormat, isTableEntry)
	if err != nil {
		return nil, err
	}

	headers := baseHeaders(opts.PayloadFormat, true)
	if op.kind == KindInsert {
		if op.echoContent {
			headers[headerPrefer] = preferReturnContent
		} else {
			headers[headerPrefer] = preferReturnNothing
		}
	} else if etag := op.entity.ETag(); etag != "" {
		// Upserts are unconditional by design but honor a tag the caller
		// carries.
		headers[headerIfMatch] = etag
	}

	spec := &transport.RequestSpec{
		Method:     op.kind.httpMethod(),
		Resource:   resourcePath(tableName, op.requestIdentity(isTableEntry, entryName, false)),
		Headers:    headers,
		Body:       body,
		PreProcess: op.interpretInsert,
	}
	if op.kind == KindInsert && op.echoContent {
		spec.PostProcess = op.postProcessEcho(c.codec, opts.PayloadFormat)
	}
	return spec, nil
}

// buildUpdate produces the request specification for merge and replace.
// Both re-validate the concurrency preconditions at build time.
func (c *Client) buildUpdate(op *Operation, tableName string, opts RequestOptions) (*transport.RequestSpec, error) {
	if op.entity.ETag() == "" {
		return nil, newPrecondition(op.kind, "entity tag is required")
	}
	if err := requireKeys(op); err != nil {
		return nil, err
	}

	body, err := c.encodeBody(op, opts.PayloadFormat, false)
	if err != nil {
		return nil, err
	}

	headers := baseHeaders(opts.PayloadFormat, true)
	headers[headerIfMatch] = op.entity.ETag()

	return &transport.RequestSpec{
		Method:     op.kind.httpMethod(),
		Resource:   resourcePath(tableName, op.requestIdentity(false, "", false)),
		Headers:    headers,
		Body:       body,
		PreProcess: op.interpretUpdate,
	}, nil
}

// buildRetrieve produces the request specification for a point lookup. The
// identity keys are percent-encoded because they come straight from caller
// input rather than from a previously written entity.
func (c *Client) buildRetrieve(op *Operation, tableName string, opts RequestOptions) (*transport.RequestSpec, error) {
	return &transport.RequestSpec{
		Method:      op.kind.httpMethod(),
		Resource:    resourcePath(tableName, op.requestIdentity(false, "", true)),
		Headers:     baseHeaders(opts.PayloadFormat, false),
		PreProcess:  op.interpretRetrieve,
		PostProcess: op.postProcessRetrieve(c.codec, opts.PayloadFormat),
	}, nil
}
