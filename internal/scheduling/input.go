package scheduling

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/class-scheduler/internal/calendar"
	"github.com/Leganyst/class-scheduler/internal/model"
)

var validate = validator.New()

// ScheduleInput: запрос на бронь в формате API.
type ScheduleInput struct {
	RoomID       string `json:"room_id" yaml:"room_id" validate:"required,uuid"`
	CourseID     string `json:"course_id" yaml:"course_id" validate:"required,uuid"`
	InstructorID string `json:"instructor_id" yaml:"instructor_id" validate:"required,uuid"`
	Date         string `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" yaml:"start_time" validate:"required,datetime=15:04:05"`
	EndTime      string `json:"end_time" yaml:"end_time" validate:"required,datetime=15:04:05"`
}

// Request: проверенная по форме бронь с типизированными полями.
type Request struct {
	RoomID       uuid.UUID
	CourseID     uuid.UUID
	InstructorID uuid.UUID
	Date         datatypes.Date
	StartTime    datatypes.Time
	EndTime      datatypes.Time
}

// Normalize проверяет форму запроса и преобразует его в Request.
// Ошибка всегда *ShapeError.
func (in ScheduleInput) Normalize() (Request, error) {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return Request{}, &ShapeError{Fields: fields}
		}
		return Request{}, &ShapeError{Fields: []string{err.Error()}}
	}

	date, err := calendar.ParseDate(in.Date)
	if err != nil {
		return Request{}, &ShapeError{Fields: []string{err.Error()}}
	}
	start, err := calendar.ParseClock(in.StartTime)
	if err != nil {
		return Request{}, &ShapeError{Fields: []string{err.Error()}}
	}
	end, err := calendar.ParseClock(in.EndTime)
	if err != nil {
		return Request{}, &ShapeError{Fields: []string{err.Error()}}
	}

	return Request{
		RoomID:       uuid.MustParse(in.RoomID),
		CourseID:     uuid.MustParse(in.CourseID),
		InstructorID: uuid.MustParse(in.InstructorID),
		Date:         date,
		StartTime:    start,
		EndTime:      end,
	}, nil
}

// Range возвращает запрошенное окно в секундах суток.
func (r Request) Range() calendar.Range {
	return calendar.ClockRange(r.StartTime, r.EndTime)
}

func (r Request) DateString() string {
	return time.Time(r.Date).Format(time.DateOnly)
}

// Input возвращает запрос в формат API.
func (r Request) Input() ScheduleInput {
	return ScheduleInput{
		RoomID:       r.RoomID.String(),
		CourseID:     r.CourseID.String(),
		InstructorID: r.InstructorID.String(),
		Date:         r.DateString(),
		StartTime:    r.StartTime.String(),
		EndTime:      r.EndTime.String(),
	}
}

// RequestFromSchedule собирает поля брони из сохранённого занятия.
func RequestFromSchedule(s *model.Schedule) Request {
	return Request{
		RoomID:       s.RoomID,
		CourseID:     s.CourseID,
		InstructorID: s.InstructorID,
		Date:         s.Date,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
	}
}

// ScheduleView: сохранённое занятие в формате API.
type ScheduleView struct {
	ID           string `json:"id"`
	RoomID       string `json:"room_id"`
	CourseID     string `json:"course_id"`
	InstructorID string `json:"instructor_id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Status       string `json:"status"`
	CreatedBy    string `json:"created_by,omitempty"`
}

func NewScheduleView(s model.Schedule) ScheduleView {
	v := ScheduleView{
		ID:           s.ID.String(),
		RoomID:       s.RoomID.String(),
		CourseID:     s.CourseID.String(),
		InstructorID: s.InstructorID.String(),
		Date:         s.DateString(),
		StartTime:    s.StartTime.String(),
		EndTime:      s.EndTime.String(),
		Status:       string(s.Status),
	}
	if s.CreatedBy != nil {
		v.CreatedBy = s.CreatedBy.String()
	}
	return v
}

func newScheduleViews(list []model.Schedule) []ScheduleView {
	out := make([]ScheduleView, 0, len(list))
	for _, s := range list {
		out = append(out, NewScheduleView(s))
	}
	return out
}

// ConflictQuery: занята ли аудитория или преподаватель в окне.
type ConflictQuery struct {
	SubjectID uuid.UUID
	Date      datatypes.Date
	StartTime datatypes.Time
	EndTime   datatypes.Time
	ExcludeID *uuid.UUID
}

// ParseConflictQuery разбирает строки запроса. excludeID может быть пустым.
func ParseConflictQuery(subjectID, date, start, end, excludeID string) (ConflictQuery, error) {
	var (
		q      ConflictQuery
		fields []string
		err    error
	)
	if q.SubjectID, err = uuid.Parse(subjectID); err != nil {
		fields = append(fields, "id must be a uuid")
	}
	if q.Date, err = calendar.ParseDate(date); err != nil {
		fields = append(fields, err.Error())
	}
	if q.StartTime, err = calendar.ParseClock(start); err != nil {
		fields = append(fields, err.Error())
	}
	if q.EndTime, err = calendar.ParseClock(end); err != nil {
		fields = append(fields, err.Error())
	}
	if excludeID != "" {
		id, err := uuid.Parse(excludeID)
		if err != nil {
			fields = append(fields, "exclude_id must be a uuid")
		} else {
			q.ExcludeID = &id
		}
	}
	if len(fields) > 0 {
		return ConflictQuery{}, &ShapeError{Fields: fields}
	}
	return q, nil
}
