package requester

import (
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"rasp.dep406.ru/mirror/modules/cache"
	"rasp.dep406.ru/mirror/modules/database"
	"rasp.dep406.ru/mirror/modules/index"
	"rasp.dep406.ru/mirror/modules/maiparser"
)

var lectorId = uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

const group = "М3О-325Б-22"

const lectorDoc = `{
	"name": "иванов иван иванович",
	"groups": {"М3О-325Б-22": 10},
	"schedule": {"02.09.2024": {"pairs": {"09:00": {
		"time_start": "09:00:00", "time_end": "10:30:00",
		"name": "Информатика", "groups": ["М3О-325Б-22"], "types": ["ЛК"],
		"rooms": {"11111111-2222-3333-4444-555555555555": "Б-420"}
	}}}}
}`

const studentDoc = `{
	"group": "М3О-325Б-22",
	"02.09.2024": {"pairs": {"09:00": {"Информатика": {
		"time_start": "09:00:00", "time_end": "10:30:00",
		"lector": {"aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee": "ИВАНОВ ИВАН ИВАНОВИЧ"},
		"type": {"ЛК": 1},
		"room": {"11111111-2222-3333-4444-555555555555": "Б-420"}
	}}}}
}`

func testRequester(t *testing.T) (*Requester, *int) {
	t.Helper()

	hits := new(int)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		switch r.URL.Path {
		case "/schedule/data/" + lectorId.String() + ".json":
			_, _ = w.Write([]byte(lectorDoc))
		case "/schedule/data/" + maiparser.StudentScheduleId(group) + ".json":
			_, _ = w.Write([]byte(studentDoc))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	maiparser.HeadURL = server.URL

	engine, err := database.Connect(database.DB{
		SQLite: filepath.Join(t.TempDir(), "index.db"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { engine.Close() })

	debug := log.New(os.Stderr, "", log.LstdFlags)
	store := index.NewStore(engine, debug)
	fc := cache.NewFileCache(t.TempDir(), debug)

	return NewRequester(fc, store, debug), hits
}

func TestLectorByIdCaching(t *testing.T) {
	req, hits := testRequester(t)

	sh, err := req.GetLectorScheduleById(lectorId, true)
	if err != nil {
		t.Fatal(err)
	}
	if sh.Name != "Иванов Иван Иванович" {
		t.Errorf("имя %q", sh.Name)
	}

	// Повторный запрос обслуживается из кэша
	if _, err := req.GetLectorScheduleById(lectorId, true); err != nil {
		t.Fatal(err)
	}
	if *hits != 1 {
		t.Errorf("запросов к серверу %d, ожидался 1", *hits)
	}

	// Запрос мимо кэша идёт на сервер заново
	if _, err := req.GetLectorScheduleById(lectorId, false); err != nil {
		t.Fatal(err)
	}
	if *hits != 2 {
		t.Errorf("запросов к серверу %d, ожидалось 2", *hits)
	}
}

func TestLectorByName(t *testing.T) {
	req, _ := testRequester(t)

	// Пока справочник пуст, фамилия никуда не ведёт
	if _, err := req.GetLectorScheduleByName("Иванов", true); err != ErrNotFound {
		t.Errorf("ожидался ErrNotFound, получено %v", err)
	}

	// Загрузка расписания группы попутно регистрирует преподавателя
	if _, err := req.GetStudentSchedule(group, true); err != nil {
		t.Fatal(err)
	}
	sh, err := req.GetLectorScheduleByName("Иванов", true)
	if err != nil {
		t.Fatal(err)
	}
	if sh.Id != lectorId {
		t.Errorf("идентификатор %s", sh.Id)
	}
}

func TestNotFoundDegrade(t *testing.T) {
	req, _ := testRequester(t)

	// Неизвестный документ и недоступный сервер дают один и тот же итог
	if _, err := req.GetLectorScheduleById(uuid.New(), true); err != ErrNotFound {
		t.Errorf("ожидался ErrNotFound, получено %v", err)
	}
	maiparser.HeadURL = "http://127.0.0.1:1"
	if _, err := req.GetStudentSchedule("НЕТ-ТАКОЙ", true); err != ErrNotFound {
		t.Errorf("ожидался ErrNotFound, получено %v", err)
	}
}
