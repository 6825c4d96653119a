// Package calendar содержит арифметику времени для расписания: строгий
// предикат пересечения, нормализацию времени суток и дат, форматирование окон.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

var (
	ErrInvalidTime = errors.New("invalid time of day")
	ErrInvalidDate = errors.New("invalid date")
)

// SecondsPerDay: наибольшее допустимое значение секунды суток (24:00:00).
const SecondsPerDay = 24 * 60 * 60

// Range представляет полуоткрытый интервал [Start, End) в секундах от полуночи.
type Range struct {
	Start int
	End   int
}

// Valid: интервал имеет положительную длину.
func (r Range) Valid() bool {
	return r.End > r.Start
}

// Overlaps проверяет пересечение броней. Оба сравнения строгие, поэтому
// касание концами (09:00-10:00 и 10:00-11:00) пересечением не считается.
func Overlaps(a, b Range) bool {
	return a.Start < b.End && a.End > b.Start
}

// Intersection возвращает общее окно a и b.
func Intersection(a, b Range) (Range, bool) {
	if !Overlaps(a, b) {
		return Range{}, false
	}
	return Range{Start: max(a.Start, b.Start), End: min(a.End, b.End)}, true
}

// NewRange нормализует обе границы через SecondOfDay.
func NewRange(start, end any) (Range, bool) {
	s, ok := SecondOfDay(start)
	if !ok {
		return Range{}, false
	}
	e, ok := SecondOfDay(end)
	if !ok {
		return Range{}, false
	}
	return Range{Start: s, End: e}, true
}

// OverlapValues применяет Overlaps к границам произвольного типа.
// Если границу не удалось нормализовать, результат false.
// NULL-значения отбрасывает вызывающий код.
func OverlapValues(aStart, aEnd, bStart, bEnd any) bool {
	a, ok := NewRange(aStart, aEnd)
	if !ok {
		return false
	}
	b, ok := NewRange(bStart, bEnd)
	if !ok {
		return false
	}
	return Overlaps(a, b)
}

// HasOverlap возвращает все интервалы из existing, пересекающиеся с r.
func HasOverlap(r Range, existing []Range) (bool, []Range) {
	var conflicts []Range
	for _, tr := range existing {
		if Overlaps(r, tr) {
			conflicts = append(conflicts, tr)
		}
	}
	return len(conflicts) > 0, conflicts
}

var clockLayouts = []string{
	"15:04:05",
	"15:04:05.999999999",
	"15:04",
	time.RFC3339Nano,
	time.DateTime,
}

// SecondOfDay переводит время суток в секунды от полуночи. Поддерживаются:
//   - строки "HH:MM[:SS]";
//   - метки времени RFC 3339 и "YYYY-MM-DD HH:MM:SS";
//   - time.Time, datatypes.Time, time.Duration;
//   - числа (секунды).
func SecondOfDay(v any) (int, bool) {
	var sec int
	switch t := v.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(t)
		if s == "24:00:00" || s == "24:00" {
			return SecondsPerDay, true
		}
		parsed := false
		for _, layout := range clockLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				sec = clockOf(ts)
				parsed = true
				break
			}
		}
		if !parsed {
			return 0, false
		}
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		sec = clockOf(t)
	case *time.Time:
		if t == nil {
			return 0, false
		}
		return SecondOfDay(*t)
	case datatypes.Time:
		sec = int(time.Duration(t) / time.Second)
	case *datatypes.Time:
		if t == nil {
			return 0, false
		}
		return SecondOfDay(*t)
	case time.Duration:
		sec = int(t / time.Second)
	case int:
		sec = t
	case int32:
		sec = int(t)
	case int64:
		sec = int(t)
	case float64:
		sec = int(t)
	default:
		return 0, false
	}

	if sec < 0 || sec > SecondsPerDay {
		return 0, false
	}
	return sec, true
}

func clockOf(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// ParseClock разбирает "HH:MM:SS" (или "HH:MM") в значение колонки.
func ParseClock(s string) (datatypes.Time, error) {
	sec, ok := SecondOfDay(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return datatypes.NewTime(sec/3600, sec%3600/60, sec%60, 0), nil
}

// ClockRange строит Range из сохранённых значений колонок.
func ClockRange(start, end datatypes.Time) Range {
	return Range{
		Start: int(time.Duration(start) / time.Second),
		End:   int(time.Duration(end) / time.Second),
	}
}

// FormatClock форматирует секунды от полуночи как HH:MM:SS.
func FormatClock(sec int) string {
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
}

// NormalizeDate приводит календарный день к виду YYYY-MM-DD.
func NormalizeDate(v any) (string, bool) {
	switch d := v.(type) {
	case string:
		s := strings.TrimSpace(d)
		if len(s) >= len(time.DateOnly) {
			if t, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err == nil {
				return t.Format(time.DateOnly), true
			}
		}
		return "", false
	case time.Time:
		if d.IsZero() {
			return "", false
		}
		return d.Format(time.DateOnly), true
	case datatypes.Date:
		return NormalizeDate(time.Time(d))
	case *datatypes.Date:
		if d == nil {
			return "", false
		}
		return NormalizeDate(time.Time(*d))
	default:
		return "", false
	}
}

// ParseDate разбирает YYYY-MM-DD в значение колонки (UTC).
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return datatypes.Date(t), nil
}

// FormatWindow форматирует окно как "YYYY-MM-DD HH:MM:SS-HH:MM:SS".
func FormatWindow(date string, r Range) string {
	return fmt.Sprintf("%s %s-%s", date, FormatClock(r.Start), FormatClock(r.End))
}
