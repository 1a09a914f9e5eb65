package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/business-dashboard/constants"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/entity"
)

// timeLayout has a fixed width so ingested_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	SeenHash(ctx context.Context, contentHash string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Document, error)
}

type documentRepository struct {
	client *Client
	logger *slog.Logger
}

func NewDocumentRepository(client *Client, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{
		client: client,
		logger: logger,
	}
}

// Create inserts doc, assigning an ID and timestamp when they are unset.
func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}

	stmt, args := r.client.builder().Insert(TableDocuments).
		Columns(documentColumnNames()...).
		Values(
			doc.ID.String(),
			doc.Filename,
			doc.SourcePath,
			doc.ContentHash,
			doc.Format,
			doc.Pages,
			string(doc.Status),
			doc.ErrorMessage,
			doc.RowCount,
			doc.IngestedAt.UTC().Format(timeLayout),
		).Query()

	if err := r.client.backend.exec(ctx, stmt, args...); err != nil {
		r.logger.Error("failed to record document", "filename", doc.Filename, "error", err)
		return fmt.Errorf("%w: create document: %v", common.ErrDatabase, err)
	}
	r.logger.Debug("document recorded", "document_id", doc.ID, "filename", doc.Filename, "status", doc.Status)
	return nil
}

func (r *documentRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	docs, err := r.list(ctx, func(s *entsql.Selector) {
		s.Where(entsql.EQ("id", id.String()))
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NewAppError(common.CodeNotFound, "document "+id.String(), common.ErrNotFound)
	}
	return docs[0], nil
}

// SeenHash reports whether a file with this content was already processed successfully.
func (r *documentRepository) SeenHash(ctx context.Context, contentHash string) (bool, error) {
	if contentHash == "" {
		return false, nil
	}
	b := r.client.builder()
	stmt, args := b.Select(entsql.Count("*")).
		From(b.Table(TableDocuments)).
		Where(entsql.And(
			entsql.EQ("content_hash", contentHash),
			entsql.NEQ("status", string(constants.DocumentStatusFailed)),
		)).Query()

	var n sql.NullInt64
	err := r.client.backend.query(ctx, stmt, args, func(scan func(dest ...any) error) error {
		return scan(&n)
	})
	if err != nil {
		r.logger.Error("failed to look up content hash", "content_hash", contentHash, "error", err)
		return false, fmt.Errorf("%w: seen hash: %v", common.ErrDatabase, err)
	}
	return n.Int64 > 0, nil
}

// ListRecent returns the newest documents first.
func (r *documentRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.list(ctx, func(s *entsql.Selector) {
		s.OrderBy(entsql.Desc("ingested_at")).Limit(limit)
	})
}

func (r *documentRepository) list(ctx context.Context, shape func(*entsql.Selector)) ([]*entity.Document, error) {
	b := r.client.builder()
	sel := b.Select(documentColumnNames()...).From(b.Table(TableDocuments))
	shape(sel)
	stmt, args := sel.Query()

	var docs []*entity.Document
	err := r.client.backend.query(ctx, stmt, args, func(scan func(dest ...any) error) error {
		var (
			id, filename, sourcePath, hash, format, status, errMsg, ingestedAt sql.NullString
			pages, rowCount                                                    sql.NullInt64
		)
		if err := scan(&id, &filename, &sourcePath, &hash, &format, &pages, &status, &errMsg, &rowCount, &ingestedAt); err != nil {
			return err
		}
		docID, err := uuid.Parse(id.String)
		if err != nil {
			return fmt.Errorf("document id %q: %w", id.String, err)
		}
		at, err := time.Parse(timeLayout, ingestedAt.String)
		if err != nil {
			return fmt.Errorf("document %s ingested_at: %w", id.String, err)
		}
		docs = append(docs, &entity.Document{
			ID:           docID,
			Filename:     filename.String,
			SourcePath:   sourcePath.String,
			ContentHash:  hash.String,
			Format:       format.String,
			Pages:        int(pages.Int64),
			Status:       constants.DocumentStatus(status.String),
			ErrorMessage: errMsg.String,
			RowCount:     int(rowCount.Int64),
			IngestedAt:   at,
		})
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list documents", "error", err)
		return nil, fmt.Errorf("%w: list documents: %v", common.ErrDatabase, err)
	}
	return docs, nil
}
