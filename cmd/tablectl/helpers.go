// Shared helpers for tablectl commands.
package main

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/table"
)

var codec = odata.JSONCodec{}

// parseEntityJSON builds an entity from a JSON document in the wire shape:
// PartitionKey and RowKey fields plus the entity properties, optionally
// with @odata.type annotations.
func parseEntityJSON(data []byte) (*table.DynamicEntity, error) {
	row, err := codec.DecodeSingle(bytes.NewReader(data), odata.FormatMinimalMetadata)
	if err != nil {
		return nil, fmt.Errorf("parse entity: %w", err)
	}

	entity := table.NewDynamicEntity(row.PartitionKey, row.RowKey)
	if err := entity.ReadEntity(row.Properties); err != nil {
		return nil, err
	}
	if row.ETag != "" {
		entity.SetETag(row.ETag)
	}
	return entity, nil
}

// renderEntityJSON serializes an entity back into the wire shape.
func renderEntityJSON(entity *table.DynamicEntity) ([]byte, error) {
	props, err := entity.WriteEntity()
	if err != nil {
		return nil, err
	}
	return codec.Encode(odata.Row{
		PartitionKey: entity.PartitionKey(),
		RowKey:       entity.RowKey(),
		Properties:   props,
	}, odata.FormatMinimalMetadata, false)
}

// printEntity prints an entity in human-readable form.
func printEntity(entity *table.DynamicEntity) {
	fmt.Printf("PartitionKey: %s\n", entity.PartitionKey())
	fmt.Printf("RowKey:       %s\n", entity.RowKey())
	if etag := entity.ETag(); etag != "" {
		fmt.Printf("ETag:         %s\n", etag)
	}
	if ts := entity.Timestamp(); !ts.IsZero() {
		fmt.Printf("Timestamp:    %s\n", ts.Format("2006-01-02 15:04:05"))
	}

	names := make([]string, 0, len(entity.Properties))
	for name := range entity.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		prop := entity.Properties[name]
		fmt.Printf("%s: %v (%s)\n", name, prop.Value, prop.Type)
	}
}

// printWriteResult reports the outcome of a write.
func printWriteResult(result *table.Result) {
	fmt.Printf("status: %d\n", result.StatusCode)
	if result.ETag != "" {
		fmt.Printf("etag:   %s\n", result.ETag)
	}
}
