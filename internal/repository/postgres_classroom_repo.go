package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/hitoshi/pianoclass/internal/model"
	"github.com/hitoshi/pianoclass/internal/search"
)

// classroomRow はclassroomsテーブルの1行。sqlxのstruct scan用。
type classroomRow struct {
	ID             string         `db:"id"`
	OwnerID        string         `db:"owner_id"`
	Name           string         `db:"name"`
	Description    string         `db:"description"`
	Address        string         `db:"address"`
	Prefecture     string         `db:"prefecture"`
	City           string         `db:"city"`
	Phone          string         `db:"phone"`
	Email          string         `db:"email"`
	WebsiteURL     string         `db:"website_url"`
	TargetAges     pq.StringArray `db:"target_ages"`
	AvailableDays  pq.StringArray `db:"available_days"`
	AvailableTimes string         `db:"available_times"`
	InstructorInfo string         `db:"instructor_info"`
	PRPoints       string         `db:"pr_points"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *classroomRow) toModel() *model.Classroom {
	return &model.Classroom{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Name:           r.Name,
		Description:    r.Description,
		Address:        r.Address,
		Prefecture:     r.Prefecture,
		City:           r.City,
		Phone:          r.Phone,
		Email:          r.Email,
		WebsiteURL:     r.WebsiteURL,
		TargetAges:     []string(r.TargetAges),
		AvailableDays:  []string(r.AvailableDays),
		AvailableTimes: r.AvailableTimes,
		InstructorInfo: r.InstructorInfo,
		PRPoints:       r.PRPoints,
		Status:         model.ClassroomStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type photoRow struct {
	ID           string    `db:"id"`
	ClassroomID  string    `db:"classroom_id"`
	PhotoURL     string    `db:"photo_url"`
	DisplayOrder int       `db:"display_order"`
	CreatedAt    time.Time `db:"created_at"`
}

type courseRow struct {
	ID             string    `db:"id"`
	ClassroomID    string    `db:"classroom_id"`
	Name           string    `db:"name"`
	TargetAudience string    `db:"target_audience"`
	PriceRange     string    `db:"price_range"`
	Description    string    `db:"description"`
	DisplayOrder   int       `db:"display_order"`
	CreatedAt      time.Time `db:"created_at"`
}

// PostgresClassroomRepo はPostgreSQLを使用した教室リポジトリ。
type PostgresClassroomRepo struct {
	db *sqlx.DB
}

// NewPostgresClassroomRepo はPostgresClassroomRepoを生成する。
func NewPostgresClassroomRepo(db *sqlx.DB) *PostgresClassroomRepo {
	return &PostgresClassroomRepo{db: db}
}

func (r *PostgresClassroomRepo) getOne(ctx context.Context, query string, args ...any) (*model.Classroom, error) {
	var row classroomRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// FindByID は指定IDの教室を取得する。見つからない場合はnilを返す。
func (r *PostgresClassroomRepo) FindByID(ctx context.Context, id string) (*model.Classroom, error) {
	if !isUUID(id) {
		return nil, nil
	}
	c, err := r.getOne(ctx, `SELECT `+search.ClassroomColumns+` FROM classrooms c WHERE c.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("教室の取得に失敗しました: %w", err)
	}
	return c, nil
}

// FindByOwnerID はオーナーの教室を取得する。見つからない場合はnilを返す。
// 複数存在する場合は最も古いものを返す。
func (r *PostgresClassroomRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.Classroom, error) {
	if !isUUID(ownerID) {
		return nil, nil
	}
	c, err := r.getOne(ctx,
		`SELECT `+search.ClassroomColumns+` FROM classrooms c
		 WHERE c.owner_id = $1 ORDER BY c.created_at ASC LIMIT 1`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("オーナーによる教室の検索に失敗しました: %w", err)
	}
	return c, nil
}

// Create は教室を作成する。
func (r *PostgresClassroomRepo) Create(ctx context.Context, c *model.Classroom) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO classrooms (
			id, owner_id, name, description, address, prefecture, city, phone, email,
			website_url, target_ages, available_days, available_times, instructor_info,
			pr_points, status, created_at, updated_at
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		c.ID, c.OwnerID, c.Name, c.Description, c.Address, c.Prefecture, c.City, c.Phone, c.Email,
		c.WebsiteURL, pq.Array(c.TargetAges), pq.Array(c.AvailableDays), c.AvailableTimes, c.InstructorInfo,
		c.PRPoints, string(c.Status), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("教室の作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateDetails は教室の表示項目を更新する。statusは変更しない。
func (r *PostgresClassroomRepo) UpdateDetails(ctx context.Context, c *model.Classroom) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE classrooms SET
			name = $2, description = $3, address = $4, prefecture = $5, city = $6,
			phone = $7, email = $8, website_url = $9, target_ages = $10, available_days = $11,
			available_times = $12, instructor_info = $13, pr_points = $14, updated_at = $15
		 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Address, c.Prefecture, c.City,
		c.Phone, c.Email, c.WebsiteURL, pq.Array(c.TargetAges), pq.Array(c.AvailableDays),
		c.AvailableTimes, c.InstructorInfo, c.PRPoints, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("教室情報の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("教室が見つかりません: %s", c.ID)
	}
	return nil
}

// UpdateStatus は教室の掲載状態とupdated_atを更新する。
func (r *PostgresClassroomRepo) UpdateStatus(ctx context.Context, id string, status model.ClassroomStatus, updatedAt time.Time) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE classrooms SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("教室の掲載状態の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// SearchListed は検索条件に一致する掲載中の教室を作成日時の降順で返す。
func (r *PostgresClassroomRepo) SearchListed(ctx context.Context, filter search.Filter, now time.Time) ([]*model.Classroom, error) {
	q := search.Build(filter, now)

	var rows []classroomRow
	if err := r.db.SelectContext(ctx, &rows, q.SQL, q.Args...); err != nil {
		return nil, fmt.Errorf("教室の検索に失敗しました: %w", err)
	}

	classrooms := make([]*model.Classroom, len(rows))
	for i := range rows {
		classrooms[i] = rows[i].toModel()
	}
	return classrooms, nil
}

// FindListed は指定IDの教室が掲載中の場合のみ返す。それ以外はnilを返す。
func (r *PostgresClassroomRepo) FindListed(ctx context.Context, id string, now time.Time) (*model.Classroom, error) {
	if !isUUID(id) {
		return nil, nil
	}
	q := search.BuildListed(id, now)
	c, err := r.getOne(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, fmt.Errorf("掲載中教室の取得に失敗しました: %w", err)
	}
	return c, nil
}

// ListPhotosByClassroomIDs は教室IDごとの写真一覧をdisplay_order順で返す。
func (r *PostgresClassroomRepo) ListPhotosByClassroomIDs(ctx context.Context, classroomIDs []string) (map[string][]model.ClassroomPhoto, error) {
	result := make(map[string][]model.ClassroomPhoto, len(classroomIDs))
	if len(classroomIDs) == 0 {
		return result, nil
	}

	var rows []photoRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, classroom_id, photo_url, display_order, created_at
		 FROM classroom_photos
		 WHERE classroom_id = ANY($1)
		 ORDER BY classroom_id, display_order ASC, created_at ASC`,
		pq.Array(classroomIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("教室写真の取得に失敗しました: %w", err)
	}

	for _, p := range rows {
		result[p.ClassroomID] = append(result[p.ClassroomID], model.ClassroomPhoto{
			ID:           p.ID,
			ClassroomID:  p.ClassroomID,
			PhotoURL:     p.PhotoURL,
			DisplayOrder: p.DisplayOrder,
			CreatedAt:    p.CreatedAt,
		})
	}
	return result, nil
}

// ListCourses は教室のコース一覧をdisplay_order順で返す。
func (r *PostgresClassroomRepo) ListCourses(ctx context.Context, classroomID string) ([]model.Course, error) {
	if !isUUID(classroomID) {
		return []model.Course{}, nil
	}
	var rows []courseRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, classroom_id, name,
			COALESCE(target_audience, '') AS target_audience,
			COALESCE(price_range, '') AS price_range,
			COALESCE(description, '') AS description,
			display_order, created_at
		 FROM courses
		 WHERE classroom_id = $1
		 ORDER BY display_order ASC, created_at ASC`,
		classroomID,
	)
	if err != nil {
		return nil, fmt.Errorf("コース一覧の取得に失敗しました: %w", err)
	}

	courses := make([]model.Course, len(rows))
	for i, c := range rows {
		courses[i] = model.Course{
			ID:             c.ID,
			ClassroomID:    c.ClassroomID,
			Name:           c.Name,
			TargetAudience: c.TargetAudience,
			PriceRange:     c.PriceRange,
			Description:    c.Description,
			DisplayOrder:   c.DisplayOrder,
			CreatedAt:      c.CreatedAt,
		}
	}
	return courses, nil
}

// compile-time interface check
var _ ClassroomRepository = (*PostgresClassroomRepo)(nil)
