package site

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mergestat/timediff"

	"rasp.dep406.ru/mirror/modules/calendar"
	"rasp.dep406.ru/mirror/modules/maiparser"
	"rasp.dep406.ru/mirror/modules/views"
)

func (s *Server) getLectors(w http.ResponseWriter, r *http.Request) {
	skip, take := paging(r)
	names, err := s.Store.Lectors(skip, take)
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) getLectorsCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.Store.LectorsCount()
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) getSimilarLectors(w http.ResponseWriter, r *http.Request) {
	skip, take := paging(r)
	names, err := s.Store.SimilarLectors(r.URL.Query().Get("name"), skip, take)
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) getGroups(w http.ResponseWriter, r *http.Request) {
	skip, take := paging(r)
	names, err := s.Store.Groups(skip, take)
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) getGroupsCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.Store.GroupsCount()
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) getSimilarGroups(w http.ResponseWriter, r *http.Request) {
	skip, take := paging(r)
	names, err := s.Store.SimilarGroups(r.URL.Query().Get("name"), skip, take)
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) getSimilarNames(w http.ResponseWriter, r *http.Request) {
	skip, take := paging(r)
	matches, err := s.Store.SimilarNames(r.URL.Query().Get("name"), skip, take)
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, matches)
}

// Расписание преподавателя по идентификатору документа или фамилии
func (s *Server) lectorSchedule(r *http.Request) (*maiparser.LectorSchedule, error) {
	key := mux.Vars(r)["key"]
	if id, err := uuid.Parse(key); err == nil {
		return s.Requester.GetLectorScheduleById(id, useCache(r))
	}

	return s.Requester.GetLectorScheduleByName(key, useCache(r))
}

// Точка отсчёта для выборок: параметр date или текущий момент
func pivot(r *http.Request) time.Time {
	if date := r.URL.Query().Get("date"); date != "" {
		if t, err := time.ParseInLocation("2006-01-02", date, maiparser.Location); err == nil {
			return t.Add(12 * time.Hour)
		}
	}

	return time.Now()
}

func (s *Server) getLectorSchedule(w http.ResponseWriter, r *http.Request) {
	sh, err := s.lectorSchedule(r)
	if err != nil {
		http.Error(w, "Сервису не известен преподаватель "+mux.Vars(r)["key"],
			http.StatusNotFound)

		return
	}

	// Выборки строятся на копии, оригинал остаётся в горячем кэше
	view := *sh
	at := pivot(r)
	switch r.URL.Query().Get("period") {
	case "now":
		view.Lessons = views.LectorLessonsAt(view.Lessons, at)
	case "today":
		view.Lessons = views.LectorLessonsOn(view.Lessons, at)
	case "week":
		view.Lessons = views.LectorWeek(view.Lessons, at)
	case "future":
		view.Lessons = views.LectorLessonsAfter(view.Lessons, at)
	}
	if r.URL.Query().Get("combined") == "true" {
		view.Lessons = view.LessonsCombined()
	}
	s.writeJSON(w, http.StatusOK, &view)
}

func (s *Server) getGroupSchedule(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sh, err := s.Requester.GetStudentSchedule(name, useCache(r))
	if err != nil {
		http.Error(w, "Сервису не известна группа "+name, http.StatusNotFound)

		return
	}

	view := *sh
	at := pivot(r)
	switch r.URL.Query().Get("period") {
	case "now":
		view.Lessons = views.StudentLessonsAt(view.Lessons, at)
	case "today":
		view.Lessons = views.StudentLessonsOn(view.Lessons, at)
	case "week":
		view.Lessons = views.StudentWeek(view.Lessons, at)
	case "future":
		view.Lessons = views.StudentLessonsAfter(view.Lessons, at)
	}
	if r.URL.Query().Get("combined") == "true" {
		view.Lessons = view.LessonsCombined()
	}
	s.writeJSON(w, http.StatusOK, &view)
}

func (s *Server) getRoomSchedule(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sh, err := s.Requester.GetRoomSchedule(name)
	if err != nil {
		http.Error(w, "Сервису не известна аудитория "+name, http.StatusNotFound)

		return
	}
	s.writeJSON(w, http.StatusOK, sh)
}

func calendarOptions(r *http.Request) calendar.Options {
	query := r.URL.Query()

	return calendar.Options{
		Combine: query.Get("combine") != "false",
		Alarms:  query.Get("alarms") != "false",
	}
}

func (s *Server) writeCalendar(w http.ResponseWriter, name string, data []byte, err error) {
	if err != nil {
		s.serverError(w, err)

		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"%s.ics\"", name))
	if _, err := w.Write(data); err != nil {
		s.Debug.Printf("не удалось отправить календарь: %s", err)
	}
}

func (s *Server) getLectorCalendar(w http.ResponseWriter, r *http.Request) {
	sh, err := s.lectorSchedule(r)
	if err != nil {
		http.Error(w, "Сервису не известен преподаватель "+mux.Vars(r)["key"],
			http.StatusNotFound)

		return
	}
	data, err := calendar.ForLector(sh, calendarOptions(r))
	s.writeCalendar(w, sh.Name, data, err)
}

func (s *Server) getGroupCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sh, err := s.Requester.GetStudentSchedule(name, useCache(r))
	if err != nil {
		http.Error(w, "Сервису не известна группа "+name, http.StatusNotFound)

		return
	}
	data, err := calendar.ForStudent(sh, calendarOptions(r))
	s.writeCalendar(w, sh.Group, data, err)
}

func (s *Server) getRoomCalendar(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sh, err := s.Requester.GetRoomSchedule(name)
	if err != nil {
		http.Error(w, "Сервису не известна аудитория "+name, http.StatusNotFound)

		return
	}
	data, err := calendar.ForRoom(sh, calendarOptions(r))
	s.writeCalendar(w, sh.Name, data, err)
}

func (s *Server) getFreeRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	day, ok := s.Days.Parse(query.Get("day"))
	if !ok {
		http.Error(w, "Не удалось разобрать день недели "+query.Get("day"),
			http.StatusBadRequest)

		return
	}
	at, ok := views.ParseClock(query.Get("time"))
	if !ok {
		http.Error(w, "Не удалось разобрать время "+query.Get("time"),
			http.StatusBadRequest)

		return
	}

	free, err := s.Requester.GetFreeRooms(day, at)
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, free)
}

// Запуск полного обхода. Одновременно идёт не больше одного
func (s *Server) postRebuild(w http.ResponseWriter, r *http.Request) {
	if !s.building.TryLock() {
		http.Error(w, "Построение уже идёт", http.StatusConflict)

		return
	}
	defer s.building.Unlock()

	query := r.URL.Query()
	clear := query.Get("clear") != "false"
	ctx := r.Context()

	var count int
	var err error
	switch {
	case query.Get("lector") != "":
		var id uuid.UUID
		id, err = uuid.Parse(query.Get("lector"))
		if err != nil {
			http.Error(w, "Не удалось разобрать идентификатор преподавателя",
				http.StatusBadRequest)

			return
		}
		count, err = s.Builder.RebuildFromLector(ctx, id, clear)
	case query.Get("group") != "":
		count, err = s.Builder.RebuildFromGroup(ctx, query.Get("group"), clear)
	default:
		http.Error(w, "Нужен параметр lector или group", http.StatusBadRequest)

		return
	}
	if err != nil && err != context.Canceled {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"lectors": count})
}

func (s *Server) postClear(w http.ResponseWriter, r *http.Request) {
	hadIndex, err := s.Store.Clear()
	if err != nil {
		s.serverError(w, err)

		return
	}
	hadCache, err := s.Cache.Clear()
	if err != nil {
		s.serverError(w, err)

		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"cleared": hadIndex || hadCache})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	lectors, err := s.Store.LectorsCount()
	if err != nil {
		s.serverError(w, err)

		return
	}
	groups, _ := s.Store.GroupsCount()
	rooms, _ := s.Store.RoomsCount()

	status := map[string]any{
		"lectors": lectors,
		"groups":  groups,
		"rooms":   rooms,
		"started": timediff.TimeDiff(s.started),
	}
	if updated, ok := s.Cache.LastUpdate(); ok {
		status["cacheUpdated"] = timediff.TimeDiff(updated)
	}
	s.writeJSON(w, http.StatusOK, status)
}
