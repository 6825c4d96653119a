package scheduling

import (
	"fmt"

	"github.com/Leganyst/class-scheduler/internal/calendar"
)

// BatchEntry: ещё не сохранённая бронь из пакетного запроса.
// Index: позиция в запросе, с нуля.
type BatchEntry struct {
	Index        int
	RoomID       string
	InstructorID string
	Date         any
	StartTime    any
	EndTime      any
}

// InternalConflict: запись Index конфликтует с записью Other того же пакета.
type InternalConflict struct {
	Kind    ErrorKind
	Index   int
	Other   int
	Message string
}

// DetectInternalConflicts сравнивает каждую пару записей пакета.
// Записи на одну дату с пересекающимся временем конфликтуют по аудитории
// и, отдельно, по преподавателю. Конфликт записывается обеим записям,
// в сообщении другая запись указана по номеру (с единицы).
func DetectInternalConflicts(entries []BatchEntry) map[int][]InternalConflict {
	out := make(map[int][]InternalConflict)

	dates := make([]string, len(entries))
	valid := make([]bool, len(entries))
	for i, e := range entries {
		dates[i], valid[i] = calendar.NormalizeDate(e.Date)
	}

	for i := 0; i < len(entries); i++ {
		if !valid[i] {
			continue
		}
		for j := i + 1; j < len(entries); j++ {
			if !valid[j] || dates[i] != dates[j] {
				continue
			}
			a, b := entries[i], entries[j]
			if !calendar.OverlapValues(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
				continue
			}
			if a.RoomID == b.RoomID {
				record(out, KindRoomConflict, a, b, dates[i])
			}
			if a.InstructorID == b.InstructorID {
				record(out, KindInstructorConflict, a, b, dates[i])
			}
		}
	}
	return out
}

func record(out map[int][]InternalConflict, kind ErrorKind, a, b BatchEntry, date string) {
	out[a.Index] = append(out[a.Index], InternalConflict{
		Kind: kind, Index: a.Index, Other: b.Index,
		Message: internalConflictMessage(kind, b, date),
	})
	out[b.Index] = append(out[b.Index], InternalConflict{
		Kind: kind, Index: b.Index, Other: a.Index,
		Message: internalConflictMessage(kind, a, date),
	})
}

func internalConflictMessage(kind ErrorKind, other BatchEntry, date string) string {
	label := "room"
	if kind == KindInstructorConflict {
		label = "instructor"
	}
	window := date
	if r, ok := calendar.NewRange(other.StartTime, other.EndTime); ok {
		window = calendar.FormatWindow(date, r)
	}
	return fmt.Sprintf("[%s] %s conflict with entry #%d in this batch (%s)", KindIntraBatchConflict, label, other.Index+1, window)
}
