package maiparser

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Расписание лектора, полученное из origin-документа
// schedule/data/{GUID}.json
type LectorSchedule struct {
	Id      uuid.UUID      `json:"id,omitempty"`
	Name    string         `json:"name"`
	Created time.Time      `json:"created"`
	Groups  map[string]int `json:"groups"`
	Lessons []LectorLesson `json:"lessons"`
}

type LectorLesson struct {
	Name     string               `json:"name"`
	Start    time.Time            `json:"start"`
	Duration time.Duration        `json:"duration"`
	Types    []string             `json:"types"`
	Groups   []string             `json:"groups"`
	Rooms    map[uuid.UUID]string `json:"rooms"`
}

func (l LectorLesson) End() time.Time { return l.Start.Add(l.Duration) }

// Попадает ли момент времени в занятие (интервал [Start, End))
func (l LectorLesson) Covers(t time.Time) bool {
	return !t.Before(l.Start) && t.Before(l.End())
}

func (l LectorLesson) String() string {
	return fmt.Sprintf("[%s %s](%s) %s - %s",
		l.Start.Format("02.01"), l.Start.Format("15:04"),
		strings.Join(l.Types, ","), l.Name, strings.Join(l.Groups, ", "))
}

// Расписание студенческой группы, полученное из origin-документа
// schedule/data/{md5(имя группы)}.json
type StudentSchedule struct {
	Group   string          `json:"group"`
	Created time.Time       `json:"created"`
	Lessons []StudentLesson `json:"lessons"`
}

type StudentLesson struct {
	Name     string               `json:"name"`
	Start    time.Time            `json:"start"`
	Duration time.Duration        `json:"duration"`
	Lectors  map[uuid.UUID]string `json:"lectors"`
	Types    map[string]int       `json:"types"`
	Rooms    map[uuid.UUID]string `json:"rooms"`
	Lms      string               `json:"lms,omitempty"`
	Teams    string               `json:"teams,omitempty"`
	Other    string               `json:"other,omitempty"`
}

func (l StudentLesson) End() time.Time { return l.Start.Add(l.Duration) }

func (l StudentLesson) Covers(t time.Time) bool {
	return !t.Before(l.Start) && t.Before(l.End())
}

// Расписание аудитории никогда не запрашивается у origin:
// оно синтезируется из кешированных занятий групп и лекторов
type RoomSchedule struct {
	Name    string       `json:"name"`
	Id      uuid.UUID    `json:"id"`
	Created time.Time    `json:"created"`
	Lessons []RoomLesson `json:"lessons"`
}

type RoomLesson struct {
	Name     string               `json:"name"`
	Start    time.Time            `json:"start"`
	Duration time.Duration        `json:"duration"`
	Lectors  map[uuid.UUID]string `json:"lectors"`
	Types    []string             `json:"types"`
	Groups   []string             `json:"groups"`
}

func (l RoomLesson) End() time.Time { return l.Start.Add(l.Duration) }

func (l RoomLesson) Covers(t time.Time) bool {
	return !t.Before(l.Start) && t.Before(l.End())
}

// Ссылка на аудиторию или лектора внутри занятия
type Ref struct {
	Id   uuid.UUID
	Name string
}

// Список аудиторий расписания без повторов, в порядке появления
func (s *LectorSchedule) Rooms() []Ref {
	seen := make(map[uuid.UUID]bool)
	var rooms []Ref
	for _, lesson := range s.Lessons {
		for _, id := range sortedKeys(lesson.Rooms) {
			if !seen[id] {
				seen[id] = true
				rooms = append(rooms, Ref{Id: id, Name: lesson.Rooms[id]})
			}
		}
	}

	return rooms
}

func (s *StudentSchedule) Rooms() []Ref {
	seen := make(map[uuid.UUID]bool)
	var rooms []Ref
	for _, lesson := range s.Lessons {
		for _, id := range sortedKeys(lesson.Rooms) {
			if !seen[id] {
				seen[id] = true
				rooms = append(rooms, Ref{Id: id, Name: lesson.Rooms[id]})
			}
		}
	}

	return rooms
}

// Список лекторов группы без повторов
func (s *StudentSchedule) Lectors() []Ref {
	seen := make(map[uuid.UUID]bool)
	var lectors []Ref
	for _, lesson := range s.Lessons {
		for _, id := range sortedKeys(lesson.Lectors) {
			if !seen[id] {
				seen[id] = true
				lectors = append(lectors, Ref{Id: id, Name: lesson.Lectors[id]})
			}
		}
	}

	return lectors
}

func (s *LectorSchedule) String() string {
	return fmt.Sprintf("Расписание %s занятий: %d, групп: %d", s.Name, len(s.Lessons), len(s.Groups))
}
