// Производные представления расписаний: занятия аудиторий,
// свободные аудитории, выборки занятий по времени
package views

import (
	"strings"
	"time"
)

// Распознавание дня недели из запроса
type DayNames map[string]time.Weekday

func NewDayNames() DayNames {
	return DayNames{
		"понедельник": time.Monday,
		"пн":          time.Monday,
		"вторник":     time.Tuesday,
		"вт":          time.Tuesday,
		"среда":       time.Wednesday,
		"среду":       time.Wednesday,
		"ср":          time.Wednesday,
		"четверг":     time.Thursday,
		"чт":          time.Thursday,
		"пятница":     time.Friday,
		"пятницу":     time.Friday,
		"пт":          time.Friday,
		"суббота":     time.Saturday,
		"субботу":     time.Saturday,
		"сб":          time.Saturday,
		"воскресенье": time.Sunday,
		"вс":          time.Sunday,
		"monday":      time.Monday,
		"mon":         time.Monday,
		"tuesday":     time.Tuesday,
		"tue":         time.Tuesday,
		"wednesday":   time.Wednesday,
		"wed":         time.Wednesday,
		"thursday":    time.Thursday,
		"thu":         time.Thursday,
		"friday":      time.Friday,
		"fri":         time.Friday,
		"saturday":    time.Saturday,
		"sat":         time.Saturday,
		"sunday":      time.Sunday,
		"sun":         time.Sunday,
	}
}

func (d DayNames) Parse(s string) (time.Weekday, bool) {
	day, ok := d[strings.ToLower(strings.TrimSpace(s))]

	return day, ok
}

// Разбор времени суток вида "13:45" в смещение от полуночи
func ParseClock(s string) (time.Duration, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, strings.TrimSpace(s))
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}

	return 0, false
}
