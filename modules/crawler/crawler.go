// Обходчик двудольного графа преподаватель-группа. Начинает с одного
// расписания и по ссылкам в занятиях добирается до всех остальных,
// попутно наполняя справочник и файловый кэш
package crawler

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"rasp.dep406.ru/mirror/modules/cache"
	"rasp.dep406.ru/mirror/modules/index"
	"rasp.dep406.ru/mirror/modules/maiparser"
	"rasp.dep406.ru/mirror/modules/requester"
)

type Builder struct {
	Requester *requester.Requester
	Store     *index.Store
	Cache     *cache.FileCache
	Info      *log.Logger
	Debug     *log.Logger
}

func NewBuilder(r *requester.Requester, store *index.Store,
	fc *cache.FileCache, info, debug *log.Logger) *Builder {
	return &Builder{Requester: r, Store: store, Cache: fc, Info: info, Debug: debug}
}

// Состояние одного обхода: очередь и посещённые вершины.
// Живёт только до конца обхода
type crawl struct {
	seenLectors map[uuid.UUID]bool
	seenGroups  map[string]bool
	seenRooms   map[uuid.UUID]bool
	lectors     int
}

func newCrawl() *crawl {
	return &crawl{
		seenLectors: make(map[uuid.UUID]bool),
		seenGroups:  make(map[string]bool),
		seenRooms:   make(map[uuid.UUID]bool),
	}
}

// Полное перестроение зеркала от расписания преподавателя.
// В очереди лежат преподаватели, группы разворачиваются на месте.
// Возвращает число обойдённых преподавателей
func (b *Builder) RebuildFromLector(ctx context.Context, seed uuid.UUID, clear bool) (int, error) {
	if clear {
		if err := b.clear(); err != nil {
			return 0, err
		}
	}

	state := newCrawl()
	queue := []uuid.UUID{seed}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			b.Info.Printf("обход прерван, пройдено преподавателей: %d", state.lectors)

			return state.lectors, err
		}

		id := queue[0]
		queue = queue[1:]
		if state.seenLectors[id] {
			continue
		}
		state.seenLectors[id] = true

		sh, err := b.Requester.GetLectorScheduleById(id, true)
		if err != nil {
			b.Debug.Printf("преподаватель %s пропущен: %s", id, err)

			continue
		}
		state.lectors++
		b.registerLector(sh)
		b.registerRooms(state, sh.Rooms())

		for group := range sh.Groups {
			if state.seenGroups[group] {
				continue
			}
			state.seenGroups[group] = true

			gsh, err := b.Requester.GetStudentSchedule(group, true)
			if err != nil {
				b.Debug.Printf("группа %s пропущена: %s", group, err)

				continue
			}
			b.registerGroup(gsh)
			b.registerRooms(state, gsh.Rooms())
			for _, lector := range gsh.Lectors() {
				if !state.seenLectors[lector.Id] {
					queue = append(queue, lector.Id)
				}
			}
		}
	}
	b.finish(state)

	return state.lectors, nil
}

// Полное перестроение зеркала от расписания группы. Зеркальный
// вариант: в очереди группы, преподаватели разворачиваются на месте
func (b *Builder) RebuildFromGroup(ctx context.Context, seed string, clear bool) (int, error) {
	if clear {
		if err := b.clear(); err != nil {
			return 0, err
		}
	}

	state := newCrawl()
	queue := []string{seed}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			b.Info.Printf("обход прерван, пройдено преподавателей: %d", state.lectors)

			return state.lectors, err
		}

		group := queue[0]
		queue = queue[1:]
		if state.seenGroups[group] {
			continue
		}
		state.seenGroups[group] = true

		gsh, err := b.Requester.GetStudentSchedule(group, true)
		if err != nil {
			b.Debug.Printf("группа %s пропущена: %s", group, err)

			continue
		}
		b.registerGroup(gsh)
		b.registerRooms(state, gsh.Rooms())

		for _, lector := range gsh.Lectors() {
			if state.seenLectors[lector.Id] {
				continue
			}
			state.seenLectors[lector.Id] = true

			sh, err := b.Requester.GetLectorScheduleById(lector.Id, true)
			if err != nil {
				b.Debug.Printf("преподаватель %s пропущен: %s", lector.Id, err)

				continue
			}
			state.lectors++
			b.registerLector(sh)
			b.registerRooms(state, sh.Rooms())
			for next := range sh.Groups {
				if !state.seenGroups[next] {
					queue = append(queue, next)
				}
			}
		}
	}
	b.finish(state)

	return state.lectors, nil
}

// Справочник и кэш очищаются параллельно, обход начинается
// только после обеих очисток. Горячий кэш сбрасывается тоже,
// иначе он переживёт очистку и обход не дойдёт до сервера
func (b *Builder) clear() error {
	var wg sync.WaitGroup
	var indexErr, cacheErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, indexErr = b.Store.Clear()
	}()
	go func() {
		defer wg.Done()
		_, cacheErr = b.Cache.Clear()
	}()
	wg.Wait()
	b.Requester.Flush()

	if indexErr != nil {
		return indexErr
	}

	return cacheErr
}

// Каждая посещённая вершина попадает в справочник независимо от
// того, откуда пришло расписание. Запрошенное из кэша расписание
// иначе осталось бы незарегистрированным
func (b *Builder) registerLector(sh *maiparser.LectorSchedule) {
	if _, err := b.Store.AddLector(sh.Name, sh.Id); err != nil {
		b.Debug.Printf("не удалось записать преподавателя %s: %s", sh.Name, err)
	}
}

func (b *Builder) registerGroup(sh *maiparser.StudentSchedule) {
	if _, err := b.Store.AddGroup(sh.Group); err != nil {
		b.Debug.Printf("не удалось записать группу %s: %s", sh.Group, err)
	}
}

// Ошибка записи аудитории не останавливает обход
func (b *Builder) registerRooms(state *crawl, rooms []maiparser.Ref) {
	for _, room := range rooms {
		if state.seenRooms[room.Id] {
			continue
		}
		state.seenRooms[room.Id] = true
		if _, err := b.Store.AddRoom(room.Name, room.Id); err != nil {
			b.Debug.Printf("не удалось записать аудиторию %s: %s", room.Name, err)
		}
	}
}

func (b *Builder) finish(state *crawl) {
	b.Info.Printf("обход завершён, преподавателей: %d, групп: %d, аудиторий: %d",
		state.lectors, len(state.seenGroups), len(state.seenRooms))
}
