package recording

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/tebeka/atexit"
)

// ClickHouseScopeWriter is a ScopeWriter that stores scope records in a
// ClickHouse database using the native protocol and batched inserts.
type ClickHouseScopeWriter struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	records []ScopeRecord
}

// NewClickHouseScopeWriter creates a ClickHouseScopeWriter and connects it
// to the given ClickHouse server.
func NewClickHouseScopeWriter(
	host string,
	port int,
	database string,
	username string,
	password string,
	batchSize int,
) *ClickHouseScopeWriter {
	if batchSize == 0 {
		batchSize = 100000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	w := &ClickHouseScopeWriter{
		conn:      conn,
		batchSize: batchSize,
	}

	w.createTable()

	atexit.Register(func() {
		w.Flush()
	})

	return w
}

func (w *ClickHouseScopeWriter) createTable() {
	err := w.conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS scopes (
			ChainID    String,
			Name       String,
			ID         UInt64,
			Depth      UInt32,
			StartUs    UInt64,
			EndUs      UInt64,
			DurationUs UInt64
		) ENGINE = MergeTree()
		ORDER BY (ChainID, StartUs)
	`)
	if err != nil {
		panic(fmt.Errorf("failed to create scopes table: %w", err))
	}
}

// Write buffers one scope record. The buffer is sent once it reaches the
// batch size.
func (w *ClickHouseScopeWriter) Write(record ScopeRecord) {
	w.mu.Lock()
	w.records = append(w.records, record)
	full := len(w.records) >= w.batchSize
	w.mu.Unlock()

	if full {
		w.Flush()
	}
}

// Flush sends the buffered records to ClickHouse in one batch.
func (w *ClickHouseScopeWriter) Flush() {
	w.mu.Lock()
	records := w.records
	w.records = nil
	w.mu.Unlock()

	if len(records) == 0 {
		return
	}

	ctx := context.Background()
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO scopes")
	if err != nil {
		panic(fmt.Errorf("failed to prepare batch: %w", err))
	}

	for _, record := range records {
		err := batch.Append(
			record.ChainID,
			record.Name,
			record.ID,
			record.Depth,
			record.StartUs,
			record.EndUs,
			record.DurationUs,
		)
		if err != nil {
			panic(fmt.Errorf("failed to append record: %w", err))
		}
	}

	if err := batch.Send(); err != nil {
		panic(fmt.Errorf("failed to send batch: %w", err))
	}
}
