package table

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/stratostore/go-tables/cache"
	"github.com/stratostore/go-tables/odata"
)

// cacheEnvelope wraps one retrieved row for caching: the raw response
// payload plus the metadata that lives outside it. The payload stays in its
// wire form so a cache hit goes through the same codec as a response.
type cacheEnvelope struct {
	ETag      string    `msgpack:"etag"`
	Timestamp time.Time `msgpack:"ts"`
	Body      []byte    `msgpack:"body"`
	Format    string    `msgpack:"format"`
}

// rowCacheKey digests the row coordinates into a fixed-size key.
func rowCacheKey(tableName, partitionKey, rowKey string) string {
	h := xxhash.New()
	h.WriteString(tableName)
	h.Write([]byte{0})
	h.WriteString(partitionKey)
	h.Write([]byte{0})
	h.WriteString(rowKey)
	return "tables:row:" + strconv.FormatUint(h.Sum64(), 16)
}

// cachedRow loads and decodes the cached row for a retrieve operation.
func (c *Client) cachedRow(ctx context.Context, tableName string, op *Operation) (odata.Row, bool) {
	if c.cache == nil {
		return odata.Row{}, false
	}

	raw, err := c.cache.Get(ctx, rowCacheKey(tableName, op.partitionKey, op.rowKey))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.log.Warn().Err(err).Str("table", tableName).Msg("retrieve cache lookup failed")
		}
		return odata.Row{}, false
	}

	var entry cacheEnvelope
	if err := msgpack.Unmarshal(raw, &entry); err != nil {
		c.log.Warn().Err(err).Str("table", tableName).Msg("retrieve cache entry corrupt")
		return odata.Row{}, false
	}

	row, err := c.codec.DecodeSingle(bytes.NewReader(entry.Body), odata.Format(entry.Format))
	if err != nil {
		c.log.Warn().Err(err).Str("table", tableName).Msg("retrieve cache entry undecodable")
		return odata.Row{}, false
	}
	if row.ETag == "" {
		row.ETag = entry.ETag
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = entry.Timestamp
	}
	return row, true
}

// storeCachedRow caches a freshly retrieved row. Failures only log: the
// retrieve already succeeded.
func (c *Client) storeCachedRow(ctx context.Context, tableName string, op *Operation, row odata.Row, body []byte, format odata.Format) {
	if c.cache == nil {
		return
	}

	raw, err := msgpack.Marshal(cacheEnvelope{
		ETag:      row.ETag,
		Timestamp: row.Timestamp,
		Body:      body,
		Format:    string(format),
	})
	if err != nil {
		c.log.Warn().Err(err).Str("table", tableName).Msg("encode retrieve cache entry failed")
		return
	}

	key := rowCacheKey(tableName, op.partitionKey, op.rowKey)
	if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
		c.log.Warn().Err(err).Str("table", tableName).Msg("store retrieve cache entry failed")
	}
}

// invalidateCachedRow drops the cached copy of the row a write touched.
// Table-entry writes have no row cache entry.
func (c *Client) invalidateCachedRow(ctx context.Context, tableName string, op *Operation) {
	if c.cache == nil || tableName == TablesServiceTableName {
		return
	}
	key := rowCacheKey(tableName, op.entity.PartitionKey(), op.entity.RowKey())
	if err := c.cache.Delete(ctx, key); err != nil {
		c.log.Warn().Err(err).Str("table", tableName).Msg("invalidate retrieve cache entry failed")
	}
}
