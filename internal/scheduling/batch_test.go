package scheduling

import (
	"strings"
	"testing"
)

func TestDetectInternalConflicts_RoomOverlap(t *testing.T) {
	entries := []BatchEntry{
		{Index: 0, RoomID: "room1", InstructorID: "i1", Date: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00"},
		{Index: 1, RoomID: "room1", InstructorID: "i2", Date: "2024-06-01", StartTime: "09:30:00", EndTime: "10:30:00"},
	}

	got := DetectInternalConflicts(entries)
	if len(got) != 2 {
		t.Fatalf("expected conflicts on both entries, got %v", got)
	}
	if len(got[0]) != 1 || got[0][0].Other != 1 || got[0][0].Kind != KindRoomConflict {
		t.Fatalf("unexpected conflicts for entry 0: %+v", got[0])
	}
	if len(got[1]) != 1 || got[1][0].Other != 0 || got[1][0].Kind != KindRoomConflict {
		t.Fatalf("unexpected conflicts for entry 1: %+v", got[1])
	}
	if !strings.Contains(got[0][0].Message, "entry #2") || !strings.Contains(got[0][0].Message, "2024-06-01 09:30:00-10:30:00") {
		t.Fatalf("message should name the other entry and its window: %q", got[0][0].Message)
	}
	if !strings.Contains(got[1][0].Message, "entry #1") || !strings.Contains(got[1][0].Message, "room conflict") {
		t.Fatalf("unexpected message %q", got[1][0].Message)
	}
}

func TestDetectInternalConflicts_RoomAndInstructor(t *testing.T) {
	entries := []BatchEntry{
		{Index: 0, RoomID: "room1", InstructorID: "i1", Date: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00"},
		{Index: 1, RoomID: "room2", InstructorID: "i2", Date: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00"},
		{Index: 2, RoomID: "room1", InstructorID: "i1", Date: "2024-06-01", StartTime: "09:59:59", EndTime: "11:00:00"},
	}

	got := DetectInternalConflicts(entries)
	if _, ok := got[1]; ok {
		t.Fatalf("entry 1 shares nothing with the others: %+v", got[1])
	}
	if len(got[0]) != 2 || len(got[2]) != 2 {
		t.Fatalf("expected room and instructor conflicts, got %+v", got)
	}
	if got[2][0].Kind != KindRoomConflict || got[2][1].Kind != KindInstructorConflict {
		t.Fatalf("unexpected kinds %+v", got[2])
	}
}

func TestDetectInternalConflicts_NoConflict(t *testing.T) {
	cases := map[string][]BatchEntry{
		"touching boundary": {
			{Index: 0, RoomID: "r", InstructorID: "i", Date: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00"},
			{Index: 1, RoomID: "r", InstructorID: "i", Date: "2024-06-01", StartTime: "10:00:00", EndTime: "11:00:00"},
		},
		"different date": {
			{Index: 0, RoomID: "r", InstructorID: "i", Date: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00"},
			{Index: 1, RoomID: "r", InstructorID: "i", Date: "2024-06-02T00:00:00Z", StartTime: "09:00:00", EndTime: "10:00:00"},
		},
		"unparsable time": {
			{Index: 0, RoomID: "r", InstructorID: "i", Date: "2024-06-01", StartTime: "9am", EndTime: "10:00:00"},
			{Index: 1, RoomID: "r", InstructorID: "i", Date: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00"},
		},
		"missing date": {
			{Index: 0, RoomID: "r", InstructorID: "i", StartTime: "09:00:00", EndTime: "10:00:00"},
			{Index: 1, RoomID: "r", InstructorID: "i", StartTime: "09:00:00", EndTime: "10:00:00"},
		},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			if got := DetectInternalConflicts(entries); len(got) != 0 {
				t.Fatalf("expected no conflicts, got %+v", got)
			}
		})
	}
}

func TestDetectInternalConflicts_SameDateDifferentForms(t *testing.T) {
	entries := []BatchEntry{
		{Index: 3, RoomID: "r", InstructorID: "a", Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"},
		{Index: 7, RoomID: "r", InstructorID: "b", Date: "2024-06-01T00:00:00Z", StartTime: 9*3600 + 1800, EndTime: 11 * 3600},
	}
	got := DetectInternalConflicts(entries)
	if len(got[3]) != 1 || got[3][0].Other != 7 {
		t.Fatalf("expected a conflict keyed by request index, got %+v", got)
	}
	if !strings.Contains(got[3][0].Message, "entry #8") {
		t.Fatalf("message should use the 1-based position: %q", got[3][0].Message)
	}
}
