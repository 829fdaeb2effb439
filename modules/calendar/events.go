// Выгрузка расписаний в формате iCalendar. В календарях
// преподавателей регулярные занятия сворачиваются в повторяющиеся
// события с правилом RRULE, календари групп и аудиторий отдают
// каждое занятие отдельно
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"rasp.dep406.ru/mirror/modules/maiparser"
)

// Напоминание ставится только перед первым занятием после
// длинного перерыва
const ReminderGap = 10 * time.Hour

type Attendee struct {
	Name string
	URL  string
}

type Event struct {
	Uid         string
	Name        string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	Repeat      string
	Alarm       bool
	Attendees   []Attendee
}

type Options struct {
	Name    string
	Combine bool
	Alarms  bool
}

func ForLector(sh *maiparser.LectorSchedule, opt Options) ([]byte, error) {
	lessons := sh.Lessons
	if opt.Combine {
		lessons = sh.LessonsCombined()
	}

	events := make([]Event, 0, len(lessons))
	for _, lesson := range lessons {
		var attendees []Attendee
		for _, group := range lesson.Groups {
			attendees = append(attendees, Attendee{
				Name: group,
				URL:  maiparser.StudentScheduleURL(group),
			})
		}
		events = append(events, Event{
			Name:        lesson.Name,
			Summary:     summary(lesson.Types, lesson.Name, strings.Join(lesson.Groups, ", ")),
			Location:    joinNames(lesson.Rooms),
			Description: "Группы: " + strings.Join(lesson.Groups, ", "),
			Start:       lesson.Start,
			End:         lesson.End(),
			Attendees:   attendees,
		})
	}
	if opt.Name == "" {
		opt.Name = maiparser.TitleWords(sh.Name)
	}

	return render(compressSeries(prepare(events, opt.Alarms)), opt)
}

func ForStudent(sh *maiparser.StudentSchedule, opt Options) ([]byte, error) {
	lessons := sh.Lessons
	if opt.Combine {
		lessons = sh.LessonsCombined()
	}

	events := make([]Event, 0, len(lessons))
	for _, lesson := range lessons {
		var attendees []Attendee
		types := make([]string, 0, len(lesson.Types))
		for kind := range lesson.Types {
			types = append(types, kind)
		}
		sort.Strings(types)
		for id, name := range lesson.Lectors {
			attendees = append(attendees, Attendee{
				Name: maiparser.TitleWords(name),
				URL:  maiparser.LectorScheduleURL(id),
			})
		}
		sort.Slice(attendees, func(i, j int) bool { return attendees[i].Name < attendees[j].Name })
		events = append(events, Event{
			Name:        lesson.Name,
			Summary:     summary(types, lesson.Name, maiparser.TitleWords(joinNames(lesson.Lectors))),
			Location:    joinNames(lesson.Rooms),
			Description: describeStudent(lesson),
			Start:       lesson.Start,
			End:         lesson.End(),
			Attendees:   attendees,
		})
	}
	if opt.Name == "" {
		opt.Name = sh.Group
	}

	return render(stampUids(prepare(events, opt.Alarms)), opt)
}

func ForRoom(sh *maiparser.RoomSchedule, opt Options) ([]byte, error) {
	lessons := sh.Lessons
	if opt.Combine {
		lessons = sh.LessonsCombined()
	}

	events := make([]Event, 0, len(lessons))
	for _, lesson := range lessons {
		var attendees []Attendee
		for id, name := range lesson.Lectors {
			attendees = append(attendees, Attendee{
				Name: maiparser.TitleWords(name),
				URL:  maiparser.LectorScheduleURL(id),
			})
		}
		sort.Slice(attendees, func(i, j int) bool { return attendees[i].Name < attendees[j].Name })
		events = append(events, Event{
			Name:        lesson.Name,
			Summary:     summary(lesson.Types, lesson.Name, strings.Join(lesson.Groups, ", ")),
			Location:    sh.Name,
			Description: "Группы: " + strings.Join(lesson.Groups, ", "),
			Start:       lesson.Start,
			End:         lesson.End(),
			Attendees:   attendees,
		})
	}
	if opt.Name == "" {
		opt.Name = sh.Name
	}

	return render(stampUids(prepare(events, opt.Alarms)), opt)
}

// Заголовок события: тип занятия, название и кто участвует
func summary(types []string, name, suffix string) string {
	title := name
	if len(types) > 0 {
		title = strings.Join(types, ",") + " " + name
	}
	if suffix != "" {
		title += " (" + suffix + ")"
	}

	return title
}

func joinNames(refs map[uuid.UUID]string) string {
	names := make([]string, 0, len(refs))
	for _, name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, ", ")
}

func describeStudent(lesson maiparser.StudentLesson) string {
	var parts []string
	if names := joinNames(lesson.Lectors); names != "" {
		parts = append(parts, maiparser.TitleWords(names))
	}
	if lesson.Lms != "" {
		parts = append(parts, "LMS: "+lesson.Lms)
	}
	if lesson.Teams != "" {
		parts = append(parts, "Teams: "+lesson.Teams)
	}
	if lesson.Other != "" {
		parts = append(parts, lesson.Other)
	}

	return strings.Join(parts, "\n")
}

// Подготовка событий: хронологический порядок и напоминания после
// длинных перерывов
func prepare(events []Event, alarms bool) []Event {
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })

	if alarms {
		for i := range events {
			events[i].Alarm = i == 0 ||
				events[i].Start.Sub(events[i-1].End) > ReminderGap
		}
	}

	return events
}

// Календари групп и аудиторий отдают каждое занятие отдельным
// событием, без свёртки в серии
func stampUids(events []Event) []Event {
	for i := range events {
		events[i].Uid = eventUid(events[i])
	}

	return events
}

type seriesKey struct {
	weekday time.Weekday
	clock   time.Duration
	name    string
}

func keyOf(e Event) seriesKey {
	local := e.Start.In(maiparser.Location)

	return seriesKey{
		weekday: local.Weekday(),
		clock: time.Duration(local.Hour())*time.Hour +
			time.Duration(local.Minute())*time.Minute,
		name: e.Name,
	}
}

// Занятия одного названия в один день недели и время объединяются
// в серии с постоянным шагом в днях. Применяется только к календарям
// преподавателей. Серия наследует напоминание своего первого занятия
func compressSeries(events []Event) []Event {
	groups := make(map[seriesKey][]Event)
	var order []seriesKey
	for _, e := range events {
		key := keyOf(e)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], e)
	}

	var result []Event
	for _, key := range order {
		run := groups[key]
		for i := 0; i < len(run); {
			n, step := 1, 0
			if i+1 < len(run) {
				step = daysBetween(run[i].Start, run[i+1].Start)
				for i+n < len(run) &&
					daysBetween(run[i+n-1].Start, run[i+n].Start) == step {
					n++
				}
			}
			event := run[i]
			if n > 1 && step > 0 {
				event.Repeat = repeatRule(step, n)
			} else {
				n = 1
			}
			event.Uid = eventUid(event)
			result = append(result, event)
			i += n
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })

	return result
}

func daysBetween(a, b time.Time) int {
	return int(b.In(maiparser.Location).Sub(a.In(maiparser.Location)).Hours() / 24)
}

// Шаг, кратный неделе, выражается недельным правилом
func repeatRule(stepDays, count int) string {
	if stepDays%7 == 0 {
		return fmt.Sprintf("FREQ=WEEKLY;INTERVAL=%d;COUNT=%d", stepDays/7, count)
	}

	return fmt.Sprintf("FREQ=DAILY;INTERVAL=%d;COUNT=%d", stepDays, count)
}

func eventUid(e Event) string {
	seed := e.Summary + e.Start.UTC().Format(time.RFC3339)

	return uuid.NewMD5(uuid.NameSpaceURL, []byte(seed)).String() + "@rasp.dep406.ru"
}
