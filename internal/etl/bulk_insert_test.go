package etl_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"go-hrdata/internal/etl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type postedChunk struct {
	key     string
	records []map[string]any
}

type fakePoster struct {
	mu     sync.Mutex
	chunks []postedChunk
	failAt string
}

func (p *fakePoster) PostBulk(_ context.Context, entity, key string, records []map[string]any) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if key == p.failAt {
		return 0, &etl.StatusError{Status: http.StatusBadRequest, Body: "bad chunk"}
	}
	p.chunks = append(p.chunks, postedChunk{key: key, records: records})
	return len(records), nil
}

func (p *fakePoster) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.chunks))
	for i, c := range p.chunks {
		out[i] = c.key
	}
	sort.Strings(out)
	return out
}

const departmentsCSV = "id,department\n1,Ops\n2,R&D\n3,Sales\n4,Legal\n5,Finance\n"

func TestBulkInsert_PostsEveryChunk(t *testing.T) {
	blob := newDirBlob(t)
	blob.put(t, "prd-data", "raw/departments.csv", []byte(departmentsCSV))
	poster := &fakePoster{}

	res, err := etl.BulkInsert(context.Background(), blob, poster, etl.BulkInsertParams{
		Bucket:      "prd-data",
		Location:    "raw",
		Filename:    "departments.csv",
		Entity:      "department",
		Header:      true,
		ColumnMap:   etl.ColumnMap{1: "department"},
		ChunkSize:   2,
		Parallelism: 2,
		RunID:       "RUN",
		WorkDir:     t.TempDir(),
	}, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, etl.BulkInsertResult{Rows: 5, Chunks: 3, Inserted: 5}, res)
	assert.Equal(t, []string{"RUN:0", "RUN:2", "RUN:4"}, poster.keys())

	for _, c := range poster.chunks {
		if c.key == "RUN:4" {
			assert.Equal(t, []map[string]any{{"department": "Finance"}}, c.records)
		}
	}
}

func TestBulkInsert_FailingChunkFailsRun(t *testing.T) {
	blob := newDirBlob(t)
	blob.put(t, "prd-data", "departments.csv", []byte(departmentsCSV))
	poster := &fakePoster{failAt: "RUN:2"}

	_, err := etl.BulkInsert(context.Background(), blob, poster, etl.BulkInsertParams{
		Bucket:      "prd-data",
		Filename:    "departments.csv",
		Entity:      "department",
		Header:      true,
		ChunkSize:   2,
		Parallelism: 1,
		RunID:       "RUN",
		WorkDir:     t.TempDir(),
	}, zap.NewNop())

	var se *etl.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Status)
}

func TestBulkInsert_RejectsBadInput(t *testing.T) {
	blob := newDirBlob(t)

	_, err := etl.BulkInsert(context.Background(), blob, &fakePoster{}, etl.BulkInsertParams{Entity: "payroll"}, zap.NewNop())
	assert.Error(t, err)

	_, err = etl.BulkInsert(context.Background(), blob, &fakePoster{}, etl.BulkInsertParams{
		Bucket: "prd-data", Filename: "missing.csv", Entity: "job", ChunkSize: 10, WorkDir: t.TempDir(),
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestAPIClient_PostBulk(t *testing.T) {
	t.Run("wraps records and sends the key", func(t *testing.T) {
		var gotKey string
		var gotBody map[string][]map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/job/bulk", r.URL.Path)
			gotKey = r.Header.Get("Idempotency-Key")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &gotBody)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"ok":true,"data":{"inserted":2}}`))
		}))
		defer srv.Close()

		client := etl.NewAPIClient(srv.URL+"/", time.Second)
		n, err := client.PostBulk(context.Background(), "job", "RUN:0", []map[string]any{{"job": "A"}, {"job": "B"}})

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, "RUN:0", gotKey)
		assert.Len(t, gotBody["jobs"], 2)
	})

	t.Run("non 2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"ok":false}`))
		}))
		defer srv.Close()

		_, err := etl.NewAPIClient(srv.URL, time.Second).PostBulk(context.Background(), "user", "", nil)

		var se *etl.StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusUnprocessableEntity, se.Status)
	})

	t.Run("undecodable 2xx body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`<html>proxy</html>`))
		}))
		defer srv.Close()

		n, err := etl.NewAPIClient(srv.URL, time.Second).PostBulk(context.Background(), "job", "", []map[string]any{{"job": "A"}})

		assert.Error(t, err)
		assert.Zero(t, n)
		var se *etl.StatusError
		assert.False(t, errors.As(err, &se))
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := etl.NewAPIClient("http://localhost", time.Second).PostBulk(context.Background(), "payroll", "", nil)
		assert.Error(t, err)
	})
}
