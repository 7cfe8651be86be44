package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

// CreateDocument вставляет новый бизнес-документ в статусе pending
// и возвращает его ID.
func (s *Storage) CreateDocument(ctx context.Context, doc models.BusinessDocument) (int, error) {
	const op = "storage.CreateDocument"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO business_documents (owner_uid, doc_type, file_key,
			      approval_status, product_id, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		doc.OwnerUID, doc.Type, doc.FileKey, models.DocumentPending,
		doc.ProductID, doc.ExpiresAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadDocument возвращает документ по его ID.
func (s *Storage) ReadDocument(ctx context.Context, id int) (*models.BusinessDocument, error) {
	const op = "storage.ReadDocument"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_uid, doc_type, file_key, approval_status,
			      rejection_reason, product_id, expires_at, created_at, updated_at
			  FROM business_documents WHERE id = $1`
	return s.scanDocument(s.DB.QueryRowContext(ctx, query, id), op)
}

// ListDocumentsByOwner возвращает документы магазина, отсортированные по дате загрузки.
func (s *Storage) ListDocumentsByOwner(ctx context.Context, ownerUID string) ([]*models.BusinessDocument, error) {
	const op = "storage.ListDocumentsByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_uid, doc_type, file_key, approval_status,
			      rejection_reason, product_id, expires_at, created_at, updated_at
			  FROM business_documents
			  WHERE owner_uid = $1
			  ORDER BY created_at DESC`
	return s.queryDocuments(ctx, op, query, ownerUID)
}

// ListPendingDocuments возвращает документы, ожидающие решения, с пагинацией.
func (s *Storage) ListPendingDocuments(ctx context.Context, limit, offset int) ([]*models.BusinessDocument, error) {
	const op = "storage.ListPendingDocuments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, owner_uid, doc_type, file_key, approval_status,
			      rejection_reason, product_id, expires_at, created_at, updated_at
			  FROM business_documents
			  WHERE approval_status = 'pending'
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	return s.queryDocuments(ctx, op, query, limit, offset)
}

// UpdateDocumentDecision записывает решение по документу. Меняет только
// документы в статусе pending: решение терминально и не перезаписывается.
func (s *Storage) UpdateDocumentDecision(ctx context.Context, id int, status, reason string) (int, error) {
	const op = "storage.UpdateDocumentDecision"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE business_documents
			  SET approval_status = $1, rejection_reason = $2, updated_at = NOW()
			  WHERE id = $3 AND approval_status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, status, nullString(reason), id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveDocument удаляет документ владельца, пока тот в статусе pending,
// и возвращает количество удалённых строк.
func (s *Storage) RemoveDocument(ctx context.Context, id int, ownerUID string) (int, error) {
	const op = "storage.RemoveDocument"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM business_documents
			  WHERE id = $1 AND owner_uid = $2 AND approval_status = 'pending'`
	result, err := s.DB.ExecContext(ctx, query, id, ownerUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func (s *Storage) queryDocuments(ctx context.Context, op, query string, args ...any) ([]*models.BusinessDocument, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.BusinessDocument
	for rows.Next() {
		doc, err := scanDocumentRow(rows, op)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanDocument(row *sql.Row, op string) (*models.BusinessDocument, error) {
	doc, err := scanDocumentRow(row, op)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, err
	}
	return doc, nil
}

func scanDocumentRow(row rowScanner, op string) (*models.BusinessDocument, error) {
	var doc models.BusinessDocument
	var reason sql.NullString
	var productID sql.NullInt64
	var expiresAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.OwnerUID, &doc.Type, &doc.FileKey,
		&doc.ApprovalStatus, &reason, &productID, &expiresAt,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if reason.Valid {
		doc.RejectionReason = reason.String
	}
	if productID.Valid {
		id := int(productID.Int64)
		doc.ProductID = &id
	}
	if expiresAt.Valid {
		doc.ExpiresAt = &expiresAt.Time
	}
	return &doc, nil
}
