package views

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"rasp.dep406.ru/mirror/modules/cache"
	"rasp.dep406.ru/mirror/modules/database"
	"rasp.dep406.ru/mirror/modules/maiparser"
)

type lessonKey struct {
	name  string
	start int64
}

// Расписание аудитории собирается из кэша: занятия групп дают
// преподавателей и саму группу, занятия преподавателей дают типы
// занятий и список групп. Склейка по паре (название, время начала)
func BuildRoomSchedule(fc *cache.FileCache, room string) (*maiparser.RoomSchedule, bool, error) {
	roomId, byId := uuid.Nil, false
	if id, err := uuid.Parse(room); err == nil {
		roomId, byId = id, true
	}

	match := func(rooms map[uuid.UUID]string) (uuid.UUID, string, bool) {
		if byId {
			if name, ok := rooms[roomId]; ok {
				return roomId, name, true
			}

			return uuid.Nil, "", false
		}
		for id, name := range rooms {
			if strings.EqualFold(name, room) {
				return id, name, true
			}
		}

		return uuid.Nil, "", false
	}

	sh := &maiparser.RoomSchedule{Name: room, Created: time.Now()}
	lessons := make(map[lessonKey]*maiparser.RoomLesson)

	err := fc.EnumStudents(func(ss *maiparser.StudentSchedule) bool {
		for _, lesson := range ss.Lessons {
			id, name, ok := match(lesson.Rooms)
			if !ok {
				continue
			}
			if sh.Id == uuid.Nil {
				sh.Id, sh.Name = id, name
			}
			merged := lookup(lessons, lesson.Name, lesson.Start, lesson.Duration)
			for lector, lectorName := range lesson.Lectors {
				if _, known := merged.Lectors[lector]; !known {
					merged.Lectors[lector] = lectorName
				}
			}
			for kind := range lesson.Types {
				merged.Types = appendUnique(merged.Types, kind)
			}
			merged.Groups = appendUnique(merged.Groups, ss.Group)
		}

		return true
	})
	if err != nil {
		return nil, false, err
	}

	err = fc.EnumLectors(func(ls *maiparser.LectorSchedule) bool {
		for _, lesson := range ls.Lessons {
			id, name, ok := match(lesson.Rooms)
			if !ok {
				continue
			}
			if sh.Id == uuid.Nil {
				sh.Id, sh.Name = id, name
			}
			merged := lookup(lessons, lesson.Name, lesson.Start, lesson.Duration)
			if _, known := merged.Lectors[ls.Id]; !known && ls.Id != uuid.Nil {
				merged.Lectors[ls.Id] = ls.Name
			}
			for _, kind := range lesson.Types {
				merged.Types = appendUnique(merged.Types, kind)
			}
			for _, group := range lesson.Groups {
				merged.Groups = appendUnique(merged.Groups, group)
			}
		}

		return true
	})
	if err != nil {
		return nil, false, err
	}
	if len(lessons) == 0 {
		return nil, false, nil
	}

	for _, lesson := range lessons {
		sh.Lessons = append(sh.Lessons, *lesson)
	}
	sort.Slice(sh.Lessons, func(i, j int) bool {
		if !sh.Lessons[i].Start.Equal(sh.Lessons[j].Start) {
			return sh.Lessons[i].Start.Before(sh.Lessons[j].Start)
		}

		return sh.Lessons[i].Name < sh.Lessons[j].Name
	})

	return sh, true, nil
}

func lookup(lessons map[lessonKey]*maiparser.RoomLesson,
	name string, start time.Time, duration time.Duration) *maiparser.RoomLesson {
	key := lessonKey{name: name, start: start.Unix()}
	if lesson, ok := lessons[key]; ok {
		return lesson
	}
	lesson := &maiparser.RoomLesson{
		Name:     name,
		Start:    start,
		Duration: duration,
		Lectors:  make(map[uuid.UUID]string),
	}
	lessons[key] = lesson

	return lesson
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}

	return append(list, s)
}

// Итог поиска свободных аудиторий: кто свободен и кем заняты остальные
type FreeRoomsResult struct {
	Free []string                             `json:"free"`
	Used map[string][]maiparser.StudentLesson `json:"used,omitempty"`
}

// Аудитории из справочника, свободные в указанный день недели
// в указанное время. Занятость видна по расписаниям групп; перебор
// прекращается, как только свободных аудиторий не остаётся
func FreeRooms(fc *cache.FileCache, rooms []database.Room,
	day time.Weekday, at time.Duration) (FreeRoomsResult, error) {
	free := make(map[string]database.Room, len(rooms))
	known := make(map[string]string, len(rooms))
	for _, room := range rooms {
		free[room.ScheduleId] = room
		known[room.ScheduleId] = room.Name
	}
	used := make(map[string][]maiparser.StudentLesson)

	err := fc.EnumStudents(func(ss *maiparser.StudentSchedule) bool {
		for _, lesson := range ss.Lessons {
			local := lesson.Start.In(maiparser.Location)
			if local.Weekday() != day {
				continue
			}
			clock := time.Duration(local.Hour())*time.Hour +
				time.Duration(local.Minute())*time.Minute
			if at < clock || at >= clock+lesson.Duration {
				continue
			}
			for id := range lesson.Rooms {
				name, ok := known[id.String()]
				if !ok {
					continue
				}
				delete(free, id.String())
				used[name] = append(used[name], lesson)
			}
			if len(free) == 0 {
				return false
			}
		}

		return true
	})
	if err != nil {
		return FreeRoomsResult{}, err
	}

	names := make([]string, 0, len(free))
	for _, room := range free {
		names = append(names, room.Name)
	}
	sort.Strings(names)

	return FreeRoomsResult{Free: names, Used: used}, nil
}
