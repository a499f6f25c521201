package model

// Prefectures は都道府県の一覧（JISコード順）。
var Prefectures = []string{
	"北海道", "青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県", "岐阜県",
	"静岡県", "愛知県", "三重県", "滋賀県", "京都府", "大阪府", "兵庫県",
	"奈良県", "和歌山県", "鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県", "福岡県", "佐賀県", "長崎県",
	"熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

// TargetAges は対象年齢の区分。
var TargetAges = []string{
	"0-3歳", "3-6歳", "小学生", "中学生", "高校生", "大人", "シニア",
}

// AvailableDays はレッスン可能な曜日。
var AvailableDays = []string{
	"月曜日", "火曜日", "水曜日", "木曜日", "金曜日", "土曜日", "日曜日",
}

var (
	prefectureSet   = toSet(Prefectures)
	targetAgeSet    = toSet(TargetAges)
	availableDaySet = toSet(AvailableDays)
)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// IsPrefecture は定義済みの都道府県名かどうかを返す。
func IsPrefecture(v string) bool {
	_, ok := prefectureSet[v]
	return ok
}

// IsTargetAge は定義済みの対象年齢区分かどうかを返す。
func IsTargetAge(v string) bool {
	_, ok := targetAgeSet[v]
	return ok
}

// IsAvailableDay は定義済みの曜日かどうかを返す。
func IsAvailableDay(v string) bool {
	_, ok := availableDaySet[v]
	return ok
}
