package scheduling

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/class-scheduler/internal/db"
	"github.com/Leganyst/class-scheduler/internal/repository"
)

type dayKey struct {
	ID   uuid.UUID
	Date datatypes.Date
}

// lockSet: все строки, от которых зависит решение о записи. Блокировки
// берутся по классам (аудитории, преподаватели, дни аудиторий, дни
// преподавателей), внутри класса в отсортированном порядке.
type lockSet struct {
	rooms          []uuid.UUID
	instructors    []uuid.UUID
	roomDays       []dayKey
	instructorDays []dayKey
}

func newLockSet(reqs ...Request) lockSet {
	var ls lockSet
	seenRoom := map[uuid.UUID]bool{}
	seenInstr := map[uuid.UUID]bool{}
	seenRoomDay := map[dayKey]bool{}
	seenInstrDay := map[dayKey]bool{}

	for _, r := range reqs {
		if !seenRoom[r.RoomID] {
			seenRoom[r.RoomID] = true
			ls.rooms = append(ls.rooms, r.RoomID)
		}
		if !seenInstr[r.InstructorID] {
			seenInstr[r.InstructorID] = true
			ls.instructors = append(ls.instructors, r.InstructorID)
		}
		rd := dayKey{ID: r.RoomID, Date: normalizeDate(r.Date)}
		if !seenRoomDay[rd] {
			seenRoomDay[rd] = true
			ls.roomDays = append(ls.roomDays, rd)
		}
		id := dayKey{ID: r.InstructorID, Date: normalizeDate(r.Date)}
		if !seenInstrDay[id] {
			seenInstrDay[id] = true
			ls.instructorDays = append(ls.instructorDays, id)
		}
	}

	sortIDs(ls.rooms)
	sortIDs(ls.instructors)
	sortDays(ls.roomDays)
	sortDays(ls.instructorDays)
	return ls
}

// sameLockKeys: нужны ли a и b одни и те же блокировки.
func sameLockKeys(a, b Request) bool {
	return a.RoomID == b.RoomID &&
		a.InstructorID == b.InstructorID &&
		normalizeDate(a.Date) == normalizeDate(b.Date)
}

func normalizeDate(d datatypes.Date) datatypes.Date {
	t := time.Time(d)
	return datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
}

func sortDays(keys []dayKey) {
	sort.Slice(keys, func(i, j int) bool {
		if c := bytes.Compare(keys[i].ID[:], keys[j].ID[:]); c != 0 {
			return c < 0
		}
		return time.Time(keys[i].Date).Before(time.Time(keys[j].Date))
	})
}

// acquire берёт блокировки ls через repos, привязанные к открытой транзакции.
// Нет аудитории: *NotFoundError. У пользователя без роли преподавателя
// блокировать нечего, о нём сообщит проверка назначения.
func acquire(ctx context.Context, repos *repository.Repositories, ls lockSet) error {
	for _, id := range ls.rooms {
		if _, err := repos.Rooms.LockByID(ctx, id); err != nil {
			return lookupError("room", id, err)
		}
	}
	for _, id := range ls.instructors {
		if _, err := repos.Users.LockInstructor(ctx, id); err != nil && !db.IsNotFound(err) {
			return storageError("lock instructor", err)
		}
	}
	for _, k := range ls.roomDays {
		id := k.ID
		f := repository.ConfirmedFilter{RoomID: &id, Date: k.Date, ForUpdate: true}
		if _, err := repos.Schedules.ListConfirmed(ctx, f); err != nil {
			return storageError("lock room schedules", err)
		}
	}
	for _, k := range ls.instructorDays {
		id := k.ID
		f := repository.ConfirmedFilter{InstructorID: &id, Date: k.Date, ForUpdate: true}
		if _, err := repos.Schedules.ListConfirmed(ctx, f); err != nil {
			return storageError("lock instructor schedules", err)
		}
	}
	return nil
}

// setLockTimeout ограничивает ожидание блокировок в транзакции.
// Только Postgres, SQLite сам упорядочивает писателей.
func setLockTimeout(tx *gorm.DB, timeout time.Duration) error {
	if timeout <= 0 || !db.IsPostgres(tx) {
		return nil
	}
	// SET не принимает параметры.
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())
	if err := tx.Exec(stmt).Error; err != nil {
		return storageError("set lock timeout", err)
	}
	return nil
}
