// Выдача расписаний по запросу: сначала горячий кэш в памяти,
// затем файловый кэш, в последнюю очередь сервер института
package requester

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"rasp.dep406.ru/mirror/modules/cache"
	"rasp.dep406.ru/mirror/modules/index"
	"rasp.dep406.ru/mirror/modules/maiparser"
	"rasp.dep406.ru/mirror/modules/views"
)

// Запрошенного расписания нет ни в кэше, ни на сервере
var ErrNotFound = errors.New("расписание не найдено")

type Requester struct {
	Cache *cache.FileCache
	Store *index.Store
	Debug *log.Logger

	hot *gocache.Cache
}

func NewRequester(fc *cache.FileCache, store *index.Store, debug *log.Logger) *Requester {
	return &Requester{
		Cache: fc,
		Store: store,
		Debug: debug,
		hot:   gocache.New(30*time.Minute, 10*time.Minute),
	}
}

// Сброс горячего кэша. Нужен при перестроении зеркала, иначе
// старые расписания переживут очистку справочника и файлов
func (r *Requester) Flush() {
	r.hot.Flush()
}

// Расписание преподавателя по идентификатору документа.
// useCache == false заставляет сходить на сервер заново
func (r *Requester) GetLectorScheduleById(id uuid.UUID, useCache bool) (*maiparser.LectorSchedule, error) {
	key := "lector:" + id.String()
	if useCache {
		if cached, ok := r.hot.Get(key); ok {
			return cached.(*maiparser.LectorSchedule), nil
		}
		if sh, ok := r.Cache.GetLector(id); ok {
			r.hot.SetDefault(key, sh)

			return sh, nil
		}
	}

	sh, err := maiparser.DownloadLectorSchedule(id)
	if err != nil {
		r.Debug.Printf("документ преподавателя %s недоступен: %s", id, err)

		return nil, ErrNotFound
	}
	if err := r.Cache.SetLector(sh); err != nil {
		r.Debug.Printf("не удалось сохранить документ %s: %s", id, err)
	}
	if _, err := r.Store.AddLector(sh.Name, sh.Id); err != nil {
		r.Debug.Printf("не удалось записать преподавателя %s: %s", sh.Name, err)
	}
	r.hot.SetDefault(key, sh)

	return sh, nil
}

// Расписание преподавателя по фамилии, через справочник
func (r *Requester) GetLectorScheduleByName(name string, useCache bool) (*maiparser.LectorSchedule, error) {
	id, found, err := r.Store.ResolveLector(name)
	if err != nil {
		r.Debug.Printf("справочник недоступен: %s", err)

		return nil, ErrNotFound
	}
	if !found {
		return nil, ErrNotFound
	}

	return r.GetLectorScheduleById(id, useCache)
}

// Расписание группы. Упомянутые в нём преподаватели
// попутно регистрируются в справочнике
func (r *Requester) GetStudentSchedule(group string, useCache bool) (*maiparser.StudentSchedule, error) {
	key := "group:" + group
	if useCache {
		if cached, ok := r.hot.Get(key); ok {
			return cached.(*maiparser.StudentSchedule), nil
		}
		if sh, ok := r.Cache.GetStudent(group); ok {
			r.hot.SetDefault(key, sh)

			return sh, nil
		}
	}

	sh, err := maiparser.DownloadStudentSchedule(group)
	if err != nil {
		r.Debug.Printf("документ группы %s недоступен: %s", group, err)

		return nil, ErrNotFound
	}
	if err := r.Cache.SetStudent(sh); err != nil {
		r.Debug.Printf("не удалось сохранить документ группы %s: %s", group, err)
	}
	if _, err := r.Store.AddGroup(sh.Group); err != nil {
		r.Debug.Printf("не удалось записать группу %s: %s", sh.Group, err)
	}
	if err := r.Store.AddLectors(sh.Lectors()); err != nil {
		r.Debug.Printf("не удалось пополнить справочник: %s", err)
	}
	r.hot.SetDefault(key, sh)

	return sh, nil
}

// Расписание аудитории целиком собирается из кэша.
// Сначала имя уточняется по справочнику, иначе берётся как есть
func (r *Requester) GetRoomSchedule(room string) (*maiparser.RoomSchedule, error) {
	if known, found, err := r.Store.ResolveRoom(room); err == nil && found {
		room = known.Name
	}

	sh, found, err := views.BuildRoomSchedule(r.Cache, room)
	if err != nil {
		r.Debug.Printf("сборка расписания аудитории %s: %s", room, err)

		return nil, ErrNotFound
	}
	if !found {
		return nil, ErrNotFound
	}

	return sh, nil
}

// Свободные аудитории из числа известных справочнику
func (r *Requester) GetFreeRooms(day time.Weekday, at time.Duration) (views.FreeRoomsResult, error) {
	rooms, err := r.Store.Rooms(0, 0)
	if err != nil {
		return views.FreeRoomsResult{}, err
	}

	return views.FreeRooms(r.Cache, rooms, day, at)
}
