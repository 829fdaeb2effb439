package views

import (
	"time"

	"github.com/icza/gox/timex"

	"rasp.dep406.ru/mirror/modules/maiparser"
)

// Граница недели по ISO-календарю, в зоне института
func weekBounds(t time.Time) (time.Time, time.Time) {
	monday := timex.WeekStart(t.In(maiparser.Location).ISOWeek())
	start := time.Date(monday.Year(), monday.Month(), monday.Day(),
		0, 0, 0, 0, maiparser.Location)

	return start, start.AddDate(0, 0, 7)
}

func sameDay(a, b time.Time) bool {
	a, b = a.In(maiparser.Location), b.In(maiparser.Location)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

// Занятия преподавателя, идущие в данный момент
func LectorLessonsAt(lessons []maiparser.LectorLesson, t time.Time) []maiparser.LectorLesson {
	var found []maiparser.LectorLesson
	for _, lesson := range lessons {
		if lesson.Covers(t) {
			found = append(found, lesson)
		}
	}

	return found
}

// Занятия преподавателя за календарный день
func LectorLessonsOn(lessons []maiparser.LectorLesson, day time.Time) []maiparser.LectorLesson {
	var found []maiparser.LectorLesson
	for _, lesson := range lessons {
		if sameDay(lesson.Start, day) {
			found = append(found, lesson)
		}
	}

	return found
}

// Занятия преподавателя, которые ещё не закончились
func LectorLessonsAfter(lessons []maiparser.LectorLesson, t time.Time) []maiparser.LectorLesson {
	var found []maiparser.LectorLesson
	for _, lesson := range lessons {
		if lesson.End().After(t) {
			found = append(found, lesson)
		}
	}

	return found
}

// Занятия преподавателя за неделю, в которую попадает момент t
func LectorWeek(lessons []maiparser.LectorLesson, t time.Time) []maiparser.LectorLesson {
	start, end := weekBounds(t)
	var found []maiparser.LectorLesson
	for _, lesson := range lessons {
		if !lesson.Start.Before(start) && lesson.Start.Before(end) {
			found = append(found, lesson)
		}
	}

	return found
}

func StudentLessonsAt(lessons []maiparser.StudentLesson, t time.Time) []maiparser.StudentLesson {
	var found []maiparser.StudentLesson
	for _, lesson := range lessons {
		if lesson.Covers(t) {
			found = append(found, lesson)
		}
	}

	return found
}

func StudentLessonsOn(lessons []maiparser.StudentLesson, day time.Time) []maiparser.StudentLesson {
	var found []maiparser.StudentLesson
	for _, lesson := range lessons {
		if sameDay(lesson.Start, day) {
			found = append(found, lesson)
		}
	}

	return found
}

func StudentLessonsAfter(lessons []maiparser.StudentLesson, t time.Time) []maiparser.StudentLesson {
	var found []maiparser.StudentLesson
	for _, lesson := range lessons {
		if lesson.End().After(t) {
			found = append(found, lesson)
		}
	}

	return found
}

func StudentWeek(lessons []maiparser.StudentLesson, t time.Time) []maiparser.StudentLesson {
	start, end := weekBounds(t)
	var found []maiparser.StudentLesson
	for _, lesson := range lessons {
		if !lesson.Start.Before(start) && lesson.Start.Before(end) {
			found = append(found, lesson)
		}
	}

	return found
}
