package table

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratostore/go-tables/odata"
	"github.com/stratostore/go-tables/transport"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...ClientOption) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	engine := transport.NewEngine(transport.Endpoints{Primary: srv.URL}, nil)
	return NewClient(engine, opts...), srv
}

func TestExecuteInsertNoEcho(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", "W/\"abc\"")
		w.WriteHeader(http.StatusNoContent)
	}))

	entity := NewDynamicEntity("a", "1")
	entity.Properties["Qty"] = odata.Int32(3)

	op, err := Insert(entity, false)
	require.NoError(t, err)

	result, err := client.Execute(context.Background(), "T", op, nil)
	require.NoError(t, err)

	// Wire shape: POST to the bare table, no If-Match, no-content preference.
	assert.Equal(t, http.MethodPost, gotReq.Method)
	assert.Equal(t, "/T", gotReq.URL.Path)
	assert.Empty(t, gotReq.Header.Get("If-Match"))
	assert.Equal(t, "return-no-content", gotReq.Header.Get("Prefer"))
	assert.Equal(t, "application/json;odata=minimalmetadata", gotReq.Header.Get("Accept"))
	assert.Equal(t, "application/json", gotReq.Header.Get("Content-Type"))
	assert.Equal(t, "2013-08-15", gotReq.Header.Get("x-ms-version"))
	assert.JSONEq(t, `{"PartitionKey":"a","RowKey":"1","Qty":3}`, string(gotBody))

	// Result: header tag adopted, entity untouched otherwise.
	assert.Equal(t, http.StatusNoContent, result.StatusCode)
	assert.Equal(t, "W/\"abc\"", result.ETag)
	assert.Equal(t, "W/\"abc\"", entity.ETag())
	assert.Equal(t, odata.Int32(3), entity.Properties["Qty"])
}

func TestExecuteInsertEchoParsesBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "return-content", r.Header.Get("Prefer"))
		w.Header().Set("ETag", "W/\"srv\"")
		w.Header().Set("Content-Type", "application/json;odata=minimalmetadata")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{
			"PartitionKey": "a",
			"RowKey": "1",
			"Timestamp": "2026-03-01T12:00:00Z",
			"Qty": 3,
			"Note": "reconciled"
		}`)
	}))

	entity := NewDynamicEntity("a", "1")
	entity.Properties["Qty"] = odata.Int32(3)

	op, err := Insert(entity, true)
	require.NoError(t, err)

	result, err := client.Execute(context.Background(), "T", op, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, result.StatusCode)
	assert.Equal(t, "W/\"srv\"", result.ETag)
	assert.Equal(t, "W/\"srv\"", entity.ETag())
	// Second pass populated the entity from the echoed body.
	assert.Equal(t, odata.String("reconciled"), entity.Properties["Note"])
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), entity.Timestamp().UTC())
}

func TestExecuteInsertConflictNotRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"odata.error":{"code":"EntityAlreadyExists","message":{"value":"exists"}}}`)
	}))

	op, err := Insert(NewDynamicEntity("a", "1"), false)
	require.NoError(t, err)

	opts := &RequestOptions{RetryPolicy: transport.LinearRetry{Delay: time.Millisecond, MaxAttempts: 5}}
	_, err = client.Execute(context.Background(), "T", op, opts)

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Fatal)
	assert.Equal(t, "EntityAlreadyExists", se.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExecuteUpsertVerbs(t *testing.T) {
	cases := []struct {
		name    string
		factory func(Entity) (*Operation, error)
		method  string
	}{
		{"insertOrMerge", InsertOrMerge, MethodMerge},
		{"insertOrReplace", InsertOrReplace, http.MethodPut},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotMethod, gotPath, gotIfMatch string
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				gotIfMatch = r.Header.Get("If-Match")
				w.Header().Set("ETag", "W/\"up\"")
				w.WriteHeader(http.StatusNoContent)
			}))

			entity := NewDynamicEntity("a", "1")
			op, err := tc.factory(entity)
			require.NoError(t, err)

			result, err := client.Execute(context.Background(), "T", op, nil)
			require.NoError(t, err)

			// Upserts address the row directly and send no precondition
			// when the entity carries no tag.
			assert.Equal(t, tc.method, gotMethod)
			assert.Equal(t, "/T(PartitionKey='a',RowKey='1')", gotPath)
			assert.Empty(t, gotIfMatch)
			assert.Equal(t, "W/\"up\"", result.ETag)
		})
	}
}

func TestExecuteMergeScenario(t *testing.T) {
	var calls int32
	var gotMethod, gotIfMatch string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotMethod = r.Method
		gotIfMatch = r.Header.Get("If-Match")
		w.WriteHeader(http.StatusNotFound)
	}))

	op, err := Merge(taggedEntity("a", "1", "W/abc"))
	require.NoError(t, err)

	opts := &RequestOptions{RetryPolicy: transport.LinearRetry{Delay: time.Millisecond, MaxAttempts: 5}}
	_, err = client.Execute(context.Background(), "T", op, opts)

	assert.Equal(t, "MERGE", gotMethod)
	assert.Equal(t, "W/abc", gotIfMatch)

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Fatal)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "conflict outcome must not be retried")
}

func TestExecuteReplaceSendsFullEntity(t *testing.T) {
	var gotBody []byte
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPut, r.Method)
		w.Header().Set("ETag", "W/\"v2\"")
		w.WriteHeader(http.StatusNoContent)
	}))

	entity := taggedEntity("a", "1", "W/\"v1\"")
	entity.Properties["Qty"] = odata.Int32(9)

	op, err := Replace(entity)
	require.NoError(t, err)

	result, err := client.Execute(context.Background(), "T", op, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"PartitionKey":"a","RowKey":"1","Qty":9}`, string(gotBody))
	assert.Equal(t, "W/\"v2\"", result.ETag)
	assert.Equal(t, "W/\"v2\"", entity.ETag())
}

func TestExecuteDelete(t *testing.T) {
	t.Run("204 succeeds", func(t *testing.T) {
		var gotMethod, gotPath, gotIfMatch string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotIfMatch = r.Header.Get("If-Match")
			w.WriteHeader(http.StatusNoContent)
		}))

		op, err := Delete(taggedEntity("a", "1", "W/\"abc\""))
		require.NoError(t, err)

		result, err := client.Execute(context.Background(), "T", op, nil)
		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, gotMethod)
		assert.Equal(t, "/T(PartitionKey='a',RowKey='1')", gotPath)
		assert.Equal(t, "W/\"abc\"", gotIfMatch)
		assert.Equal(t, http.StatusNoContent, result.StatusCode)
		assert.Empty(t, result.ETag)
	})

	t.Run("status mapping", func(t *testing.T) {
		cases := []struct {
			status    int
			wantFatal bool
		}{
			{http.StatusNotFound, false},
			{http.StatusConflict, false},
			{http.StatusOK, true},
		}
		for _, tc := range cases {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))

			op, err := Delete(taggedEntity("a", "1", "W/\"abc\""))
			require.NoError(t, err)

			_, err = client.Execute(context.Background(), "T", op, &RequestOptions{RetryPolicy: transport.NoRetry{}})
			var se *ServiceError
			require.ErrorAs(t, err, &se, "status %d", tc.status)
			assert.Equal(t, tc.wantFatal, se.Fatal, "status %d", tc.status)
		}
	})
}

func TestExecuteRetrieve(t *testing.T) {
	t.Run("target entity populated", func(t *testing.T) {
		var gotPath string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.RawPath
			if gotPath == "" {
				gotPath = r.URL.Path
			}
			w.Header().Set("Content-Type", "application/json;odata=minimalmetadata")
			fmt.Fprint(w, `{
				"odata.etag": "W/\"r1\"",
				"PartitionKey": "p 1",
				"RowKey": "r/1",
				"Timestamp": "2026-03-01T12:00:00Z",
				"Qty": 42
			}`)
		}))

		target := NewDynamicEntity("", "")
		op, err := Retrieve("p 1", "r/1", target)
		require.NoError(t, err)

		result, err := client.Execute(context.Background(), "T", op, nil)
		require.NoError(t, err)

		assert.Equal(t, "/T(PartitionKey='p%201',RowKey='r%2F1')", gotPath)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		assert.Equal(t, "W/\"r1\"", result.ETag)
		assert.Same(t, target, result.Entity.(*DynamicEntity))
		assert.Equal(t, "p 1", target.PartitionKey())
		assert.Equal(t, "r/1", target.RowKey())
		assert.Equal(t, "W/\"r1\"", target.ETag())
		assert.Equal(t, odata.Int32(42), target.Properties["Qty"])
	})

	t.Run("resolver projection", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"PartitionKey":"p","RowKey":"r","Qty":7}`)
		}))

		op, err := RetrieveWith("p", "r", func(row odata.Row) (any, error) {
			qty := row.Properties["Qty"]
			return qty.Value, nil
		})
		require.NoError(t, err)

		result, err := client.Execute(context.Background(), "T", op, nil)
		require.NoError(t, err)
		assert.Nil(t, result.Entity)
		assert.Equal(t, int32(7), result.Value)
	})

	t.Run("missing row yields empty result", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		op, err := Retrieve("p", "r", NewDynamicEntity("", ""))
		require.NoError(t, err)

		result, err := client.Execute(context.Background(), "T", op, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, result.StatusCode)
		assert.Nil(t, result.Entity)
	})
}

// countingCodec wraps the JSON codec and counts Encode invocations.
type countingCodec struct {
	odata.JSONCodec
	encodes int32
}

func (c *countingCodec) Encode(row odata.Row, format odata.Format, isTableEntry bool) ([]byte, error) {
	atomic.AddInt32(&c.encodes, 1)
	return c.JSONCodec.Encode(row, format, isTableEntry)
}

func TestExecuteEncodesOncePerCallAcrossRetries(t *testing.T) {
	var calls int32
	var bodies [][]byte
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, b)
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("ETag", "W/\"done\"")
		w.WriteHeader(http.StatusNoContent)
	})

	codec := &countingCodec{}
	client, _ := newTestClient(t, handler, WithCodec(codec))

	entity := NewDynamicEntity("a", "1")
	entity.Properties["Qty"] = odata.Int32(1)
	op, err := Insert(entity, false)
	require.NoError(t, err)

	opts := &RequestOptions{RetryPolicy: transport.LinearRetry{Delay: time.Millisecond, MaxAttempts: 5}}
	_, err = client.Execute(context.Background(), "T", op, opts)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&codec.encodes), "encoder must run once per execute")
	require.Len(t, bodies, 3)
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[0], bodies[2])
}

func TestExecuteTableEntryOperations(t *testing.T) {
	t.Run("delete addresses the catalog row by literal name", func(t *testing.T) {
		var gotPath string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}))

		entry := NewDynamicEntity("", "")
		entry.Properties["TableName"] = odata.String("orders")
		entry.SetETag("*")

		op, err := Delete(entry)
		require.NoError(t, err)

		_, err = client.Execute(context.Background(), TablesServiceTableName, op, nil)
		require.NoError(t, err)
		assert.Equal(t, "/Tables('orders')", gotPath)
	})

	t.Run("insert posts the table entry body", func(t *testing.T) {
		var gotPath string
		var gotBody []byte
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		}))

		entry := NewDynamicEntity("", "")
		entry.Properties["TableName"] = odata.String("orders")

		op, err := Insert(entry, false)
		require.NoError(t, err)

		_, err = client.Execute(context.Background(), TablesServiceTableName, op, nil)
		require.NoError(t, err)
		assert.Equal(t, "/Tables", gotPath)
		assert.JSONEq(t, `{"TableName":"orders"}`, string(gotBody))
	})

	t.Run("table entry without TableName fails locally", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("no request expected")
		}))

		entry := NewDynamicEntity("", "")
		op, err := Insert(entry, false)
		require.NoError(t, err)

		_, err = client.Execute(context.Background(), TablesServiceTableName, op, nil)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
	})
}

func TestExecuteLocalPreconditions(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	}))

	t.Run("empty table name", func(t *testing.T) {
		op, err := Insert(NewDynamicEntity("a", "1"), false)
		require.NoError(t, err)
		_, err = client.Execute(context.Background(), "  ", op, nil)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
	})

	t.Run("nil operation", func(t *testing.T) {
		_, err := client.Execute(context.Background(), "T", nil, nil)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
	})

	t.Run("missing keys detected at build time", func(t *testing.T) {
		op, err := Insert(NewDynamicEntity("", ""), false)
		require.NoError(t, err)
		_, err = client.Execute(context.Background(), "T", op, nil)
		var pe *PreconditionError
		require.ErrorAs(t, err, &pe)
	})

	t.Run("unknown kind is a programming error", func(t *testing.T) {
		op := &Operation{entity: NewDynamicEntity("a", "1"), kind: OperationKind(99)}
		_, err := client.Execute(context.Background(), "T", op, nil)
		assert.ErrorIs(t, err, ErrUnknownOperation)
	})
}

func TestExecuteHonorsPayloadFormatOption(t *testing.T) {
	var gotAccept string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusNoContent)
	}))

	op, err := Insert(NewDynamicEntity("a", "1"), false)
	require.NoError(t, err)

	opts := &RequestOptions{PayloadFormat: odata.FormatFullMetadata}
	_, err = client.Execute(context.Background(), "T", op, opts)
	require.NoError(t, err)
	assert.Equal(t, "application/json;odata=fullmetadata", gotAccept)
}
