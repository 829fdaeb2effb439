package site

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"rasp.dep406.ru/mirror/modules/cache"
	"rasp.dep406.ru/mirror/modules/crawler"
	"rasp.dep406.ru/mirror/modules/database"
	"rasp.dep406.ru/mirror/modules/index"
	"rasp.dep406.ru/mirror/modules/maiparser"
	"rasp.dep406.ru/mirror/modules/requester"
)

func testServer(t *testing.T) *Server {
	t.Helper()

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
	req := requester.NewRequester(fc, store, debug)
	builder := crawler.NewBuilder(req, store, fc, debug, debug)

	return NewServer(req, store, fc, builder, debug, debug)
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	return w
}

func TestIndexEndpoints(t *testing.T) {
	server := testServer(t)
	if _, err := server.Store.AddLector("Иванов Иван Иванович", uuid.New()); err != nil {
		t.Fatal(err)
	}
	if _, err := server.Store.AddGroup("М3О-325Б-22"); err != nil {
		t.Fatal(err)
	}
	handler := server.Handler()

	w := get(t, handler, "/api/lectors")
	if w.Code != http.StatusOK {
		t.Fatalf("код %d", w.Code)
	}
	var names []string
	if err := json.Unmarshal(w.Body.Bytes(), &names); err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Иванов Иван Иванович" {
		t.Errorf("список преподавателей: %v", names)
	}

	w = get(t, handler, "/api/lectors/count")
	var count map[string]int64
	if err := json.Unmarshal(w.Body.Bytes(), &count); err != nil {
		t.Fatal(err)
	}
	if count["count"] != 1 {
		t.Errorf("счётчик: %v", count)
	}

	w = get(t, handler, "/api/names/similar?name=325")
	var matches index.NameMatches
	if err := json.Unmarshal(w.Body.Bytes(), &matches); err != nil {
		t.Fatal(err)
	}
	if matches.Kind != index.MatchGroups || len(matches.Matches) != 1 {
		t.Errorf("общий поиск: %+v", matches)
	}

	w = get(t, handler, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("статус: код %d", w.Code)
	}
}

func TestNotFound(t *testing.T) {
	server := testServer(t)
	handler := server.Handler()

	// Неизвестный преподаватель и пустой день недели
	if w := get(t, handler, "/api/schedule/lector/Сидоров"); w.Code != http.StatusNotFound {
		t.Errorf("код %d, ожидался 404", w.Code)
	}
	if w := get(t, handler, "/api/rooms/free?day=послезавтра&time=13:45"); w.Code != http.StatusBadRequest {
		t.Errorf("код %d, ожидался 400", w.Code)
	}
	if w := get(t, handler, "/api/rooms/free?day=пн&time=13:45"); w.Code != http.StatusOK {
		t.Errorf("код %d, ожидался 200", w.Code)
	}
}

func TestRoomCalendar(t *testing.T) {
	server := testServer(t)

	lector := uuid.New()
	room := uuid.New()
	sh := &maiparser.StudentSchedule{
		Group:   "М3О-325Б-22",
		Created: time.Now(),
		Lessons: []maiparser.StudentLesson{{
			Name:     "Информатика",
			Start:    time.Date(2024, 9, 2, 9, 0, 0, 0, maiparser.Location),
			Duration: 90 * time.Minute,
			Lectors:  map[uuid.UUID]string{lector: "ИВАНОВ ИВАН ИВАНОВИЧ"},
			Types:    map[string]int{"ЛК": 1},
			Rooms:    map[uuid.UUID]string{room: "Б-420"},
		}},
	}
	if err := server.Cache.SetStudent(sh); err != nil {
		t.Fatal(err)
	}
	handler := server.Handler()

	w := get(t, handler, "/api/schedule/room/Б-420")
	if w.Code != http.StatusOK {
		t.Fatalf("код %d: %s", w.Code, w.Body.String())
	}
	var got maiparser.RoomSchedule
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Id != room || len(got.Lessons) != 1 {
		t.Errorf("расписание аудитории: %+v", got)
	}

	// Выборка по дню опирается на параметры period и date
	w = get(t, handler, "/api/schedule/group/М3О-325Б-22?period=today&date=2024-09-02")
	var day maiparser.StudentSchedule
	if err := json.Unmarshal(w.Body.Bytes(), &day); err != nil {
		t.Fatal(err)
	}
	if len(day.Lessons) != 1 {
		t.Errorf("занятий за день %d, ожидалось 1", len(day.Lessons))
	}
	w = get(t, handler, "/api/schedule/group/М3О-325Б-22?period=today&date=2024-09-03")
	if err := json.Unmarshal(w.Body.Bytes(), &day); err != nil {
		t.Fatal(err)
	}
	if len(day.Lessons) != 0 {
		t.Errorf("во вторник занятий быть не должно: %v", day.Lessons)
	}

	w = get(t, handler, "/api/ics/room/Б-420")
	if w.Code != http.StatusOK {
		t.Fatalf("календарь: код %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("тип содержимого %q", ct)
	}
}
