package maiparser

import (
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Вывод некритических ошибок тестирования в консоль
func handleError(err error) {
	if err != nil {
		log.Println(err)
	}
}

const roomId = "11111111-2222-3333-4444-555555555555"

const lectorDoc = `{
	"name": "иванов иван иванович",
	"uid": "не используется",
	"groups": {"М3О-325Б-22": 12},
	"schedule": {
		"02.09.2024": {
			"day": "понедельник",
			"pairs": {
				"09:00": {
					"time_start": "09:00:00",
					"time_end": "10:30:00",
					"name": "Математический анализ",
					"groups": ["М3О-325Б-22"],
					"types": ["ЛК"],
					"rooms": {"` + roomId + `": "ГУК Б-420"}
				}
			}
		}
	}
}`

func TestParseLectorSchedule(t *testing.T) {
	sh, err := ParseLectorSchedule(strings.NewReader(lectorDoc))
	if err != nil {
		t.Fatal(err)
	}
	if sh.Name != "Иванов Иван Иванович" {
		t.Errorf("имя не приведено к заглавным: %q", sh.Name)
	}
	if sh.Groups["М3О-325Б-22"] != 12 {
		t.Errorf("потеряны группы: %v", sh.Groups)
	}
	if len(sh.Lessons) != 1 {
		t.Fatalf("занятий %d, ожидалось 1", len(sh.Lessons))
	}

	lesson := sh.Lessons[0]
	want := time.Date(2024, 9, 2, 9, 0, 0, 0, Location)
	if !lesson.Start.Equal(want) {
		t.Errorf("начало %v, ожидалось %v", lesson.Start, want)
	}
	if lesson.Duration != 90*time.Minute {
		t.Errorf("длительность %v, ожидалось 90m", lesson.Duration)
	}
	if lesson.Rooms[uuid.MustParse(roomId)] != "ГУК Б-420" {
		t.Errorf("потеряна аудитория: %v", lesson.Rooms)
	}
	if !lesson.Covers(want.Add(89 * time.Minute)) {
		t.Error("занятие должно идти за минуту до конца")
	}
	if lesson.Covers(lesson.End()) {
		t.Error("конец занятия не входит в интервал")
	}
}

const lectorId = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

const studentDoc = `{
	"group": "М3О-325Б-22",
	"02.09.2024": {
		"pairs": {
			"09:00": {
				"Математический анализ": {
					"time_start": "09:00:00",
					"time_end": "10:30:00",
					"lector": {
						"` + lectorId + `": "ИВАНОВ ИВАН ИВАНОВИЧ",
						"00000000-0000-0000-0000-000000000000": "ВАКАНСИЯ"
					},
					"type": {"ЛК": 1},
					"room": {"` + roomId + `": "ГУК Б-420"},
					"lms": "",
					"teams": " ссылка ",
					"other": ""
				}
			}
		}
	}
}`

func TestParseStudentSchedule(t *testing.T) {
	sh, err := ParseStudentSchedule(strings.NewReader(studentDoc))
	if err != nil {
		t.Fatal(err)
	}
	if sh.Group != "М3О-325Б-22" {
		t.Errorf("группа %q", sh.Group)
	}
	if len(sh.Lessons) != 1 {
		t.Fatalf("занятий %d, ожидалось 1", len(sh.Lessons))
	}

	lesson := sh.Lessons[0]
	if lesson.Name != "Математический анализ" {
		t.Errorf("название %q", lesson.Name)
	}
	// Нулевой GUID лектора выбрасывается при разборе
	if len(lesson.Lectors) != 1 {
		t.Errorf("лекторов %d, ожидался 1: %v", len(lesson.Lectors), lesson.Lectors)
	}
	if lesson.Teams != "ссылка" {
		t.Errorf("teams %q, пробелы должны обрезаться", lesson.Teams)
	}

	lectors := sh.Lectors()
	if len(lectors) != 1 || lectors[0].Id != uuid.MustParse(lectorId) {
		t.Errorf("список лекторов: %v", lectors)
	}
}

func TestParseMalformed(t *testing.T) {
	docs := []string{
		``,
		`[]`,
		`{"groups": {"А": 1}}`,
		`{"name": "иванов"}`,
		`{"name": "иванов", "groups": {"А": 1}, "schedule": {"зима": {}}}`,
		`{"name": "иванов", "groups": {"А": 1}, "schedule": {"02.09.2024":
			{"pairs": {"09:00": {"time_start": "утро", "time_end": "10:30:00"}}}}}`,
	}
	for _, doc := range docs {
		if _, err := ParseLectorSchedule(strings.NewReader(doc)); !errors.Is(err, ErrMalformedDocument) {
			t.Errorf("документ %.40q: ожидалась ошибка формата, получено %v", doc, err)
		}
	}

	// Документ группы обязан начинаться с ключа group
	noGroup := `{"02.09.2024": {"pairs": {}}, "group": "М3О-325Б-22"}`
	if _, err := ParseStudentSchedule(strings.NewReader(noGroup)); !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("ожидалась ошибка формата, получено %v", err)
	}
}

func TestTitleWords(t *testing.T) {
	if got := TitleWords("ИВАНОВ иван ИвАнОвИч"); got != "Иванов Иван Иванович" {
		t.Errorf("TitleWords: %q", got)
	}
}
