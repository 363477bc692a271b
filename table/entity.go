// Package table implements single-entity operations against the table
// service: operation descriptors, per-kind request construction, response
// interpretation and the client entry point that drives them through the
// transport engine.
package table

import (
	"time"

	"github.com/stratostore/go-tables/odata"
)

// Entity is one table row as seen by the caller. The client never mutates
// an entity except to refresh its entity tag, timestamp and property values
// after a successful write or retrieve.
//
// An entity must not be submitted to more than one in-flight Execute call
// at a time.
type Entity interface {
	PartitionKey() string
	RowKey() string

	// ETag is the opaque concurrency token of the last read or write, empty
	// for an entity that has never touched the service.
	ETag() string
	SetETag(etag string)

	Timestamp() time.Time
	SetTimestamp(ts time.Time)

	// WriteEntity produces the property set to serialize for a write.
	WriteEntity() (odata.Properties, error)

	// ReadEntity replaces the entity's property values with the server's.
	ReadEntity(props odata.Properties) error
}

// Resolver projects a raw row into a caller-defined value during retrieval.
type Resolver func(row odata.Row) (any, error)

// DynamicEntity is a property-bag Entity for callers without a fixed
// schema.
type DynamicEntity struct {
	partitionKey string
	rowKey       string
	etag         string
	timestamp    time.Time

	// Properties holds the column values. Mutating it between Execute calls
	// is the caller's way to stage changes.
	Properties odata.Properties
}

var _ Entity = (*DynamicEntity)(nil)

// NewDynamicEntity creates a DynamicEntity with the given primary key and
// an empty property set.
func NewDynamicEntity(partitionKey, rowKey string) *DynamicEntity {
	return &DynamicEntity{
		partitionKey: partitionKey,
		rowKey:       rowKey,
		Properties:   odata.Properties{},
	}
}

func (e *DynamicEntity) PartitionKey() string { return e.partitionKey }
func (e *DynamicEntity) RowKey() string       { return e.rowKey }

// SetKeys rekeys the entity. Used when populating a fresh entity from a
// retrieve response.
func (e *DynamicEntity) SetKeys(partitionKey, rowKey string) {
	e.partitionKey = partitionKey
	e.rowKey = rowKey
}

func (e *DynamicEntity) ETag() string              { return e.etag }
func (e *DynamicEntity) SetETag(etag string)       { e.etag = etag }
func (e *DynamicEntity) Timestamp() time.Time      { return e.timestamp }
func (e *DynamicEntity) SetTimestamp(ts time.Time) { e.timestamp = ts }

func (e *DynamicEntity) WriteEntity() (odata.Properties, error) {
	return e.Properties, nil
}

func (e *DynamicEntity) ReadEntity(props odata.Properties) error {
	e.Properties = props
	return nil
}
