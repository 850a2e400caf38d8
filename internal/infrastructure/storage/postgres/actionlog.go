// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/compress/zstd"

	appctx "assetdesk/internal/core/context"
	"assetdesk/internal/domain/recyclebin"
)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// ActionRow is a persisted bulk-action outcome.
type ActionRow struct {
	ID                uuid.UUID       `db:"id"`
	Action            string          `db:"action"`
	Kind              string          `db:"kind"`
	RequestedCount    int             `db:"requested_count"`
	AffectedCount     int             `db:"affected_count"`
	Outcome           string          `db:"outcome"`
	ActorID           string          `db:"actor_id"`
	ActorEmail        string          `db:"actor_email"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// ActionLogStore records settled recover/delete actions. Writes are
// best-effort from the caller's point of view; the full entry (requested,
// affected and skipped ids) is kept as a JSON payload, compressed when large.
type ActionLogStore struct {
	pool              *pgxpool.Pool
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NewActionLogStore creates an action log over the given pool.
func NewActionLogStore(pool *pgxpool.Pool) (*ActionLogStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &ActionLogStore{
		pool:              pool,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record implements recyclebin.ActionRecorder.
func (s *ActionLogStore) Record(ctx context.Context, entry recyclebin.ActionEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal action entry: %w", err)
	}

	row := ActionRow{
		ID:              uuid.New(),
		Action:          string(entry.Action),
		Kind:            string(entry.Kind),
		RequestedCount:  len(entry.Requested),
		AffectedCount:   len(entry.Affected),
		Outcome:         string(entry.Outcome),
		Payload:         payload,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}

	if user := appctx.GetUser(ctx); user != nil {
		row.ActorID = user.UserID
		row.ActorEmail = user.Email
	}

	if len(row.Payload) > s.compressThreshold {
		row.PayloadCompressed = s.encoder.EncodeAll(row.Payload, nil)
		row.Payload = nil
		row.CompressionAlgo = CompressionZstd
	}

	query, args, err := psql.Insert("action_log").
		Columns("id", "action", "kind", "requested_count", "affected_count",
			"outcome", "actor_id", "actor_email",
			"payload", "payload_compressed", "compression_algo", "created_at").
		Values(row.ID, row.Action, row.Kind, row.RequestedCount, row.AffectedCount,
			row.Outcome, row.ActorID, row.ActorEmail,
			row.Payload, row.PayloadCompressed, row.CompressionAlgo, row.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build action log insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert action log entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, payloads decompressed.
func (s *ActionLogStore) List(ctx context.Context, limit int) ([]ActionRow, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := psql.Select("id", "action", "kind", "requested_count",
		"affected_count", "outcome", "actor_id", "actor_email",
		"payload", "payload_compressed", "compression_algo", "created_at").
		From("action_log").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build action log query: %w", err)
	}

	var rows []ActionRow
	if err := pgxscan.Select(ctx, s.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query action log: %w", err)
	}

	for i := range rows {
		row := &rows[i]
		if row.CompressionAlgo != CompressionZstd || len(row.PayloadCompressed) == 0 {
			continue
		}
		payload, err := s.decoder.DecodeAll(row.PayloadCompressed, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress action payload: %w", err)
		}
		row.Payload = payload
		row.PayloadCompressed = nil
	}
	return rows, nil
}

var _ recyclebin.ActionRecorder = (*ActionLogStore)(nil)
