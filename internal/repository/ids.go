package repository

import "github.com/google/uuid"

// isUUID はidがUUIDとして解釈できるかを返す。
// UUID列に不正な文字列を渡すとPostgreSQLが22P02を返すため、検索前に弾いて未検出として扱う。
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
