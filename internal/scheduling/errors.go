package scheduling

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Leganyst/class-scheduler/internal/db"
)

// ErrorKind: вид ошибки.
type ErrorKind string

const (
	KindShape              ErrorKind = "shape"
	KindTimeLogic          ErrorKind = "time_logic"
	KindRoomConflict       ErrorKind = "room_conflict"
	KindInstructorConflict ErrorKind = "instructor_conflict"
	KindCapacity           ErrorKind = "capacity"
	KindAssignment         ErrorKind = "assignment"
	KindIntraBatchConflict ErrorKind = "intra_batch_conflict"
	KindTransient          ErrorKind = "transient_storage"
	KindNotFound           ErrorKind = "not_found"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrTransient = errors.New("transient storage failure")
	ErrCancelled = errors.New("schedule is cancelled")

	errScheduleMoved = errors.New("schedule moved by a concurrent update")
)

// Violation: одно сообщение проверки с видом ошибки.
type Violation struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// ShapeError: запрос некорректен по форме, до хранилища он не доходит.
type ShapeError struct {
	Fields []string
}

func (e *ShapeError) Error() string {
	return "malformed schedule payload: " + strings.Join(e.Fields, "; ")
}

// ConflictError: структурированный отказ одиночного создания или обновления.
// Ничего не записано.
type ConflictError struct {
	Result *ValidationResult
}

func (e *ConflictError) Error() string {
	if e == nil || e.Result == nil {
		return "schedule rejected"
	}
	return "schedule rejected: " + strings.Join(e.Result.Errors, "; ")
}

// Has: есть ли в отказе нарушение вида k.
func (e *ConflictError) Has(k ErrorKind) bool {
	if e == nil || e.Result == nil {
		return false
	}
	for _, v := range e.Result.Violations {
		if v.Kind == k {
			return true
		}
	}
	return false
}

// BulkItemError: все причины отказа одной записи пакета.
type BulkItemError struct {
	Line    int           `json:"line"`
	Payload ScheduleInput `json:"payload"`
	Errors  []string      `json:"errors"`
	Kinds   []ErrorKind   `json:"kinds"`
}

// BulkError отклоняет весь пакет. Ничего не записано.
type BulkError struct {
	Items []BulkItemError
}

func (e *BulkError) Error() string {
	lines := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		lines = append(lines, fmt.Sprintf("line %d: %s", it.Line, strings.Join(it.Errors, "; ")))
	}
	return fmt.Sprintf("bulk create rejected (%d invalid entries): %s", len(e.Items), strings.Join(lines, " | "))
}

// TransientError оборачивает таймауты блокировок, дедлоки и обрывы соединения.
// Операция откачена, её можно повторить без изменений.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v (retry)", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Is(target error) bool { return target == ErrTransient }

// NotFoundError: нет аудитории, курса, преподавателя или занятия.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsTransient: стоит ли повторить операцию.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// storageError переводит ошибку хранилища: временные сбои становятся
// *TransientError, остальное оборачивается с op.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		conflict *ConflictError
		bulk     *BulkError
		notFound *NotFoundError
		trans    *TransientError
	)
	if errors.As(err, &conflict) || errors.As(err, &bulk) || errors.As(err, &notFound) || errors.As(err, &trans) {
		return err
	}
	if errors.Is(err, ErrCancelled) {
		return err
	}
	if db.IsTransient(err) {
		return &TransientError{Op: op, Err: err}
	}
	return errors.Wrap(err, op)
}

// lookupError: отсутствующая строка становится *NotFoundError.
func lookupError(entity string, id uuid.UUID, err error) error {
	if db.IsNotFound(err) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return storageError("load "+entity, err)
}
