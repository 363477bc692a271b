package odata

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Row is the codec-level view of one table row: its primary key, system
// metadata and column values.
type Row struct {
	PartitionKey string
	RowKey       string
	ETag         string
	Timestamp    time.Time
	Properties   Properties
}

// Codec serializes rows for write requests and parses single-row response
// bodies. Implementations must be deterministic: encoding the same row
// twice yields byte-identical output, since the result is buffered once and
// replayed across retries.
type Codec interface {
	Encode(row Row, format Format, isTableEntry bool) ([]byte, error)
	DecodeSingle(r io.Reader, format Format) (Row, error)
}

// JSONCodec implements Codec for the JSON payload formats.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

const (
	propPartitionKey = "PartitionKey"
	propRowKey       = "RowKey"
	propTimestamp    = "Timestamp"
	propTableName    = "TableName"

	annotationSuffix = "@odata.type"
	metadataPrefix   = "odata."
)

// Encode serializes the row into a JSON write payload. Table-entry rows
// carry only the TableName property; ordinary rows carry both keys plus all
// annotated column values. Output is deterministic because encoding/json
// sorts map keys.
func (JSONCodec) Encode(row Row, format Format, isTableEntry bool) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("odata: invalid payload format %q", format)
	}

	doc := make(map[string]any, len(row.Properties)*2+2)

	if !isTableEntry {
		doc[propPartitionKey] = row.PartitionKey
		doc[propRowKey] = row.RowKey
	}

	for name, prop := range row.Properties {
		if name == propPartitionKey || name == propRowKey || name == propTimestamp {
			continue
		}
		wire, err := prop.wireValue()
		if err != nil {
			return nil, fmt.Errorf("odata: encode property %q: %w", name, err)
		}
		doc[name] = wire
		if prop.Type.annotated() {
			doc[name+annotationSuffix] = string(prop.Type)
		}
	}

	return json.Marshal(doc)
}

// DecodeSingle parses a single-row response body.
func (JSONCodec) DecodeSingle(r io.Reader, _ Format) (Row, error) {
	var doc map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Row{}, fmt.Errorf("odata: decode entity payload: %w", err)
	}
	return rowFromDocument(doc)
}

func rowFromDocument(doc map[string]any) (Row, error) {
	row := Row{Properties: Properties{}}

	// Collect annotations first so property parsing can consult them
	// regardless of key order.
	annotations := make(map[string]EdmType)
	for name, raw := range doc {
		if base, ok := strings.CutSuffix(name, annotationSuffix); ok {
			if s, ok := raw.(string); ok {
				annotations[base] = EdmType(s)
			}
		}
	}

	for name, raw := range doc {
		if strings.HasSuffix(name, annotationSuffix) {
			continue
		}
		if strings.HasPrefix(name, metadataPrefix) {
			if name == "odata.etag" {
				if s, ok := raw.(string); ok {
					row.ETag = s
				}
			}
			continue
		}
		raw = normalizeNumber(raw, annotations[name])

		switch name {
		case propPartitionKey:
			if s, ok := raw.(string); ok {
				row.PartitionKey = s
			}
		case propRowKey:
			if s, ok := raw.(string); ok {
				row.RowKey = s
			}
		case propTimestamp:
			if s, ok := raw.(string); ok {
				ts, err := parseTime(s)
				if err != nil {
					return Row{}, err
				}
				row.Timestamp = ts
			}
		default:
			prop, err := parseProperty(raw, annotations[name])
			if err != nil {
				return Row{}, fmt.Errorf("odata: property %q: %w", name, err)
			}
			row.Properties[name] = prop
		}
	}

	return row, nil
}

// normalizeNumber converts json.Number back to float64 so parseProperty
// sees the same shapes json.Unmarshal would produce. UseNumber is needed
// only to keep annotated Int64 strings intact on the way in.
func normalizeNumber(raw any, edm EdmType) any {
	n, ok := raw.(json.Number)
	if !ok {
		return raw
	}
	if edm == EdmInt64 {
		return n.String()
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return f
}

// ErrorBody is the service's structured error document.
type ErrorBody struct {
	Code    string
	Message string
}

// ParseErrorBody extracts the error code and human-readable message from a
// failure response body. Malformed or empty bodies yield a zero ErrorBody,
// never an error: the status code alone must be enough to classify the
// failure.
func ParseErrorBody(body []byte) ErrorBody {
	if len(body) == 0 {
		return ErrorBody{}
	}

	var doc struct {
		OdataError *struct {
			Code    string `json:"code"`
			Message struct {
				Value string `json:"value"`
			} `json:"message"`
		} `json:"odata.error"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || doc.OdataError == nil {
		return ErrorBody{}
	}
	return ErrorBody{Code: doc.OdataError.Code, Message: doc.OdataError.Message.Value}
}
