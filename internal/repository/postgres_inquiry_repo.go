package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hitoshi/pianoclass/internal/model"
)

type inquiryRow struct {
	ID          string    `db:"id"`
	ClassroomID string    `db:"classroom_id"`
	SenderName  string    `db:"sender_name"`
	SenderEmail string    `db:"sender_email"`
	Subject     string    `db:"subject"`
	Message     string    `db:"message"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *inquiryRow) toModel() *model.Inquiry {
	return &model.Inquiry{
		ID:          r.ID,
		ClassroomID: r.ClassroomID,
		SenderName:  r.SenderName,
		SenderEmail: r.SenderEmail,
		Subject:     r.Subject,
		Message:     r.Message,
		Status:      model.InquiryStatus(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

const inquiryColumns = `id, classroom_id, sender_name, sender_email,
	COALESCE(subject, '') AS subject, message, status, created_at`

// PostgresInquiryRepo はPostgreSQLを使用した問い合わせリポジトリ。
type PostgresInquiryRepo struct {
	db *sqlx.DB
}

// NewPostgresInquiryRepo はPostgresInquiryRepoを生成する。
func NewPostgresInquiryRepo(db *sqlx.DB) *PostgresInquiryRepo {
	return &PostgresInquiryRepo{db: db}
}

// Create は問い合わせを作成する。
func (r *PostgresInquiryRepo) Create(ctx context.Context, inq *model.Inquiry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO inquiries (id, classroom_id, sender_name, sender_email, subject, message, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inq.ID, inq.ClassroomID, inq.SenderName, inq.SenderEmail,
		inq.Subject, inq.Message, string(inq.Status), inq.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("問い合わせの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDの問い合わせを取得する。見つからない場合はnilを返す。
func (r *PostgresInquiryRepo) FindByID(ctx context.Context, id string) (*model.Inquiry, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var row inquiryRow
	err := r.db.GetContext(ctx, &row, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("問い合わせの取得に失敗しました: %w", err)
	}
	return row.toModel(), nil
}

// ListByClassroomID は教室への問い合わせを新しい順に返す。
func (r *PostgresInquiryRepo) ListByClassroomID(ctx context.Context, classroomID string) ([]*model.Inquiry, error) {
	if !isUUID(classroomID) {
		return []*model.Inquiry{}, nil
	}
	var rows []inquiryRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+inquiryColumns+` FROM inquiries
		 WHERE classroom_id = $1
		 ORDER BY created_at DESC`,
		classroomID,
	)
	if err != nil {
		return nil, fmt.Errorf("問い合わせ一覧の取得に失敗しました: %w", err)
	}

	inquiries := make([]*model.Inquiry, len(rows))
	for i := range rows {
		inquiries[i] = rows[i].toModel()
	}
	return inquiries, nil
}

// UpdateStatus は問い合わせの対応状態を更新する。
func (r *PostgresInquiryRepo) UpdateStatus(ctx context.Context, id string, status model.InquiryStatus) error {
	if !isUUID(id) {
		return fmt.Errorf("問い合わせが見つかりません: %s", id)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE inquiries SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("問い合わせの状態更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("問い合わせが見つかりません: %s", id)
	}
	return nil
}

// compile-time interface check
var _ InquiryRepository = (*PostgresInquiryRepo)(nil)
