// Package search は教室検索のクエリ構築と実行を提供する。
//
// 検索結果には「公開中」かつ「有効な掲載契約がある」教室のみが含まれる。
// この条件はどの検索条件の組み合わせでも必ず付与され、外すことはできない。
package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/pianoclass/internal/model"
)

// ClassroomColumns は教室一覧・詳細で取得するカラム。NULL許容カラムは空文字列に正規化する。
const ClassroomColumns = `c.id, c.owner_id, c.name,
	COALESCE(c.description, '') AS description,
	COALESCE(c.address, '') AS address,
	COALESCE(c.prefecture, '') AS prefecture,
	COALESCE(c.city, '') AS city,
	COALESCE(c.phone, '') AS phone,
	COALESCE(c.email, '') AS email,
	COALESCE(c.website_url, '') AS website_url,
	c.target_ages, c.available_days,
	COALESCE(c.available_times, '') AS available_times,
	COALESCE(c.instructor_info, '') AS instructor_info,
	COALESCE(c.pr_points, '') AS pr_points,
	c.status, c.created_at, c.updated_at`

// listedPredicate は公開中かつ掲載権がある教室に限定する条件。
// $1 には評価時刻が入る。
const listedPredicate = `c.status = 'published'
  AND EXISTS (
    SELECT 1 FROM subscriptions s
    WHERE s.classroom_id = c.id
      AND s.status = 'active'
      AND s.current_period_end >= $1
  )`

// Filter は検索条件。空文字列のフィールドはその軸で絞り込まないことを意味する。
type Filter struct {
	Prefecture   string
	City         string
	Keyword      string
	TargetAge    string
	AvailableDay string
}

// Validate は選択式の検索条件がカタログに定義された値かどうかを検証する。
// 市区町村とキーワードは自由入力のため検証しない。
func (f Filter) Validate() error {
	if f.Prefecture != "" && !model.IsPrefecture(f.Prefecture) {
		return model.NewInvalidFilterError("prefecture", f.Prefecture)
	}
	if f.TargetAge != "" && !model.IsTargetAge(f.TargetAge) {
		return model.NewInvalidFilterError("target_age", f.TargetAge)
	}
	if f.AvailableDay != "" && !model.IsAvailableDay(f.AvailableDay) {
		return model.NewInvalidFilterError("available_day", f.AvailableDay)
	}
	return nil
}

// Query はプレースホルダ付きSQLと引数の組。
type Query struct {
	SQL  string
	Args []any
}

// Build は検索条件から教室一覧のクエリを構築する。
// 公開中・掲載権ありの条件を常に含み、作成日時の降順で並べる。
func Build(f Filter, now time.Time) Query {
	b := &builder{args: []any{now}}

	if v := strings.TrimSpace(f.Prefecture); v != "" {
		b.where("c.prefecture = %s", v)
	}
	if v := strings.TrimSpace(f.City); v != "" {
		b.where("c.city ILIKE %s", containsPattern(v))
	}
	if v := strings.TrimSpace(f.Keyword); v != "" {
		p := b.arg(containsPattern(v))
		b.conds = append(b.conds, fmt.Sprintf("(c.name ILIKE %[1]s OR c.description ILIKE %[1]s OR c.pr_points ILIKE %[1]s)", p))
	}
	if v := strings.TrimSpace(f.TargetAge); v != "" {
		b.where("c.target_ages @> %s::text[]", pq.Array([]string{v}))
	}
	if v := strings.TrimSpace(f.AvailableDay); v != "" {
		b.where("c.available_days @> %s::text[]", pq.Array([]string{v}))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(ClassroomColumns)
	sb.WriteString("\nFROM classrooms c\nWHERE ")
	sb.WriteString(listedPredicate)
	for _, c := range b.conds {
		sb.WriteString("\n  AND ")
		sb.WriteString(c)
	}
	sb.WriteString("\nORDER BY c.created_at DESC")

	return Query{SQL: sb.String(), Args: b.args}
}

// BuildListed は指定IDの教室が一覧掲載条件を満たす場合のみ1行を返すクエリを構築する。
// 公開詳細ページで使用する。
func BuildListed(classroomID string, now time.Time) Query {
	return Query{
		SQL: "SELECT " + ClassroomColumns + "\nFROM classrooms c\nWHERE " + listedPredicate +
			"\n  AND c.id = $2",
		Args: []any{now, classroomID},
	}
}

type builder struct {
	args  []any
	conds []string
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) where(format string, v any) {
	b.conds = append(b.conds, fmt.Sprintf(format, b.arg(v)))
}

// containsPattern は部分一致用のILIKEパターンを生成する。
// 入力中のワイルドカード文字はエスケープしてリテラルとして扱う。
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
