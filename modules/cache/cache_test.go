package cache

import (
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"rasp.dep406.ru/mirror/modules/maiparser"
)

func testCache(t *testing.T) *FileCache {
	t.Helper()

	return NewFileCache(t.TempDir(), log.New(os.Stderr, "", log.LstdFlags))
}

func testLector(name string) *maiparser.LectorSchedule {
	return &maiparser.LectorSchedule{
		Id:      uuid.NewMD5(uuid.NameSpaceOID, []byte(name)),
		Name:    name,
		Created: time.Now(),
		Groups:  map[string]int{"М3О-325Б-22": 10},
		Lessons: []maiparser.LectorLesson{{
			Name:     "Информатика",
			Start:    time.Date(2024, 9, 2, 9, 0, 0, 0, maiparser.Location),
			Duration: 90 * time.Minute,
			Rooms:    map[uuid.UUID]string{uuid.NewMD5(uuid.NameSpaceOID, []byte("Б-420")): "Б-420"},
		}},
	}
}

func TestLectorRoundTrip(t *testing.T) {
	fc := testCache(t)
	sh := testLector("Иванов Иван Иванович")
	if err := fc.SetLector(sh); err != nil {
		t.Fatal(err)
	}

	got, ok := fc.GetLector(sh.Id)
	if !ok {
		t.Fatal("документ не найден в кэше")
	}
	if got.Name != sh.Name || len(got.Lessons) != 1 {
		t.Errorf("документ искажён: %+v", got)
	}
	lesson := got.Lessons[0]
	if !lesson.Start.Equal(sh.Lessons[0].Start) || lesson.Duration != 90*time.Minute {
		t.Errorf("время занятия искажено: %v %v", lesson.Start, lesson.Duration)
	}

	if _, ok := fc.GetLector(uuid.New()); ok {
		t.Error("найден несуществующий документ")
	}
}

func TestFreshness(t *testing.T) {
	fc := testCache(t)
	sh := testLector("Иванов Иван Иванович")
	if err := fc.SetLector(sh); err != nil {
		t.Fatal(err)
	}

	// Документ старше трёх суток считается отсутствующим
	old := time.Now().Add(-FreshFor - time.Hour)
	name := "Иванов Иван Иванович[" + sh.Id.String() + "].json"
	if err := os.Chtimes(filepath.Join(fc.Root, "lectors", name), old, old); err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.GetLector(sh.Id); ok {
		t.Error("устаревший документ выдан как свежий")
	}

	// Граница включительная: документу ровно три дня и он уже не свежий
	boundary := time.Now().Add(-FreshFor)
	if err := os.Chtimes(filepath.Join(fc.Root, "lectors", name), boundary, boundary); err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.GetLector(sh.Id); ok {
		t.Error("документ трёхдневной давности выдан как свежий")
	}

	// Но при полном переборе корпуса он по-прежнему виден
	count := 0
	err := fc.EnumLectors(func(*maiparser.LectorSchedule) bool {
		count++

		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("в корпусе %d документов, ожидался 1", count)
	}
}

func TestStudentRoundTrip(t *testing.T) {
	fc := testCache(t)
	sh := &maiparser.StudentSchedule{
		Group:   "М3О-325Б-22",
		Created: time.Now(),
		Lessons: []maiparser.StudentLesson{{
			Name:     "Информатика",
			Start:    time.Date(2024, 9, 2, 9, 0, 0, 0, maiparser.Location),
			Duration: 90 * time.Minute,
		}},
	}
	if err := fc.SetStudent(sh); err != nil {
		t.Fatal(err)
	}

	got, ok := fc.GetStudent("М3О-325Б-22")
	if !ok {
		t.Fatal("документ группы не найден")
	}
	if got.Group != sh.Group || len(got.Lessons) != 1 {
		t.Errorf("документ искажён: %+v", got)
	}
}

func TestClear(t *testing.T) {
	fc := testCache(t)

	existed, err := fc.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Error("в пустом кэше нечего удалять")
	}

	if err := fc.SetLector(testLector("Иванов Иван Иванович")); err != nil {
		t.Fatal(err)
	}
	existed, err = fc.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if !existed {
		t.Error("удаление документов не замечено")
	}
	if _, ok := fc.LastUpdate(); ok {
		t.Error("после очистки кэш должен быть пуст")
	}
}
