package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/domain/table"
)

// PostgreSQL のエラーコード
const (
	codeInvalidTextRepresent = "22P02"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeExclusionViolation   = "23P01"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var errNoTx = errors.New("トランザクションが必要です")

// mapPQError は制約違反をドメインエラーに変換する。該当しない場合はそのまま返す
func mapPQError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pq.Error
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeExclusionViolation, codeSerializationFailure, codeDeadlockDetected:
		// 排他制約 reservations_no_overlap が最終的な二重予約防止
		return fmt.Errorf("%w: %s", reservation.ErrTableUnavailable, pgErr.Constraint)
	case codeUniqueViolation:
		if pgErr.Constraint == "tables_restaurant_id_table_number_key" {
			return table.ErrDuplicateTableNumber
		}
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// isInvalidID はUUID列に不正な文字列が渡されたかを返す。該当する行は存在しない
func isInvalidID(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == codeInvalidTextRepresent
}

// isNotFound は行が無い場合と、IDの形式が不正な場合に true を返す
func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || isInvalidID(err)
}

// nullableID は空のIDを NULL として渡す
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
