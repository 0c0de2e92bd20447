package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrDuplicate は一意制約違反を示す。errors.Isで判定する。
var ErrDuplicate = errors.New("duplicate key")

// ErrDuplicateEmail はメールアドレス列の一意制約違反を示す。
// ErrDuplicateを包むため、errors.Is(err, ErrDuplicate)も真になる。
// 招待のようにメール重複とコード衝突で扱いが分かれるテーブルで使用する。
var ErrDuplicateEmail = fmt.Errorf("duplicate email: %w", ErrDuplicate)

// uniqueViolation はPostgreSQLのエラーコード23505。
const uniqueViolation = "23505"

// isUniqueViolation はerrが一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

// isUniqueViolationOn はerrが指定制約の一意制約違反かどうかを判定する。
func isUniqueViolationOn(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation && pqErr.Constraint == constraint
	}
	return false
}
