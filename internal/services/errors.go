package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/boardsync/pkg/errors"
)

var (
	// ErrBoardNotFound is returned both when a board does not exist and when the caller lacks
	// the tier an action needs, so probing cannot reveal private boards.
	ErrBoardNotFound = apperrors.New("BOARD_NOT_FOUND", "Board not found", http.StatusNotFound)

	// ErrBoardNameTaken reports a board name collision on create or rename.
	ErrBoardNameTaken = apperrors.New("BOARD_NAME_TAKEN", "A board with this name already exists", http.StatusConflict)

	// ErrSectionNotFound is returned when a section id is not part of the board.
	ErrSectionNotFound = apperrors.New("SECTION_NOT_FOUND", "Section not found", http.StatusNotFound)
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") || strings.Contains(lower, "duplicate")
}
