package table

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stratostore/go-tables/cache"
	"github.com/stratostore/go-tables/logger"
	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/transport"
)

// executor abstracts the transport engine for testability.
type executor interface {
	Run(ctx context.Context, spec *transport.RequestSpec, policy transport.RetryPolicy, mode transport.LocationMode) (any, error)
}

// Client executes table operations against one storage account.
type Client struct {
	engine   executor
	codec    odata.Codec
	log      logger.Logger
	defaults RequestOptions

	cache    cache.Cache
	cacheTTL time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCodec replaces the payload codec.
func WithCodec(codec odata.Codec) ClientOption {
	return func(c *Client) { c.codec = codec }
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithDefaultOptions sets the per-operation defaults applied when Execute
// receives nil or partial options.
func WithDefaultOptions(opts RequestOptions) ClientOption {
	return func(c *Client) { c.defaults = opts }
}

// WithRetrieveCache enables the client-side cache for point retrieves.
// Cached rows expire after ttl and are invalidated by any successful write
// through this client to the same row.
func WithRetrieveCache(store cache.Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// NewClient creates a table client on top of an execution engine.
func NewClient(engine *transport.Engine, opts ...ClientOption) *Client {
	c := &Client{
		engine: engine,
		codec:  odata.JSONCodec{},
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs op against tableName and returns its result. opts may be
// nil to use the client defaults. The operation descriptor is consumed:
// submit it exactly once.
func (c *Client) Execute(ctx context.Context, tableName string, op *Operation, opts *RequestOptions) (*Result, error) {
	if op == nil {
		return nil, newPrecondition(OperationKind(-1), "operation is nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, newPrecondition(op.kind, "table name is empty")
	}

	options := resolveOptions(opts, c.defaults)

	switch op.kind {
	case KindInsert, KindInsertOrMerge, KindInsertOrReplace:
		return c.performWrite(ctx, tableName, op, options, c.buildInsert)
	case KindDelete:
		return c.performWrite(ctx, tableName, op, options, c.buildDelete)
	case KindMerge, KindReplace:
		return c.performWrite(ctx, tableName, op, options, c.buildUpdate)
	case KindRetrieve:
		return c.performRetrieve(ctx, tableName, op, options)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(op.kind))
	}
}

type buildFunc func(op *Operation, tableName string, opts RequestOptions) (*transport.RequestSpec, error)

// performWrite drives a write operation through the engine. Writes always
// target the primary location.
func (c *Client) performWrite(ctx context.Context, tableName string, op *Operation, opts RequestOptions, build buildFunc) (*Result, error) {
	spec, err := build(op, tableName, opts)
	if err != nil {
		return nil, err
	}

	out, err := c.engine.Run(ctx, spec, opts.RetryPolicy, transport.PrimaryOnly)
	if err != nil {
		return nil, err
	}
	result := out.(*Result)

	c.invalidateCachedRow(ctx, tableName, op)

	c.log.Debug().
		Str("operation", op.kind.String()).
		Str("table", tableName).
		Int("status", result.StatusCode).
		Msg("write complete")
	return result, nil
}

// performRetrieve serves a point lookup, consulting the cache first when
// one is configured.
func (c *Client) performRetrieve(ctx context.Context, tableName string, op *Operation, opts RequestOptions) (*Result, error) {
	if row, ok := c.cachedRow(ctx, tableName, op); ok {
		result, err := op.applyRow(row)
		if err == nil {
			c.log.Debug().
				Str("table", tableName).
				Str("partition_key", op.partitionKey).
				Str("row_key", op.rowKey).
				Msg("retrieve served from cache")
			return result, nil
		}
		// A poisoned entry must not mask the service; fall through.
		c.log.Warn().Err(err).Str("table", tableName).Msg("dropping bad cache entry")
		_ = c.cache.Delete(ctx, rowCacheKey(tableName, op.partitionKey, op.rowKey))
	}

	spec, err := c.buildRetrieve(op, tableName, opts)
	if err != nil {
		return nil, err
	}

	out, err := c.engine.Run(ctx, spec, opts.RetryPolicy, *opts.LocationMode)
	if err != nil {
		return nil, err
	}
	outcome := out.(*retrieveOutcome)

	if outcome.found {
		c.storeCachedRow(ctx, tableName, op, outcome.row, outcome.raw, opts.PayloadFormat)
	}
	return outcome.result, nil
}
