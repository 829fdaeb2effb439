// HTTP-интерфейс зеркала: справочник, расписания, календари,
// свободные аудитории и управление обходом
package site

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"rasp.dep406.ru/mirror/modules/cache"
	"rasp.dep406.ru/mirror/modules/crawler"
	"rasp.dep406.ru/mirror/modules/index"
	"rasp.dep406.ru/mirror/modules/requester"
	"rasp.dep406.ru/mirror/modules/views"
)

type Server struct {
	Requester *requester.Requester
	Store     *index.Store
	Cache     *cache.FileCache
	Builder   *crawler.Builder
	Days      views.DayNames
	Info      *log.Logger
	Debug     *log.Logger

	started  time.Time
	building sync.Mutex
}

func NewServer(r *requester.Requester, store *index.Store, fc *cache.FileCache,
	builder *crawler.Builder, info, debug *log.Logger) *Server {
	return &Server{
		Requester: r,
		Store:     store,
		Cache:     fc,
		Builder:   builder,
		Days:      views.NewDayNames(),
		Info:      info,
		Debug:     debug,
		started:   time.Now(),
	}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/api/lectors", s.getLectors).Methods(http.MethodGet)
	router.HandleFunc("/api/lectors/count", s.getLectorsCount).Methods(http.MethodGet)
	router.HandleFunc("/api/lectors/similar", s.getSimilarLectors).Methods(http.MethodGet)
	router.HandleFunc("/api/groups", s.getGroups).Methods(http.MethodGet)
	router.HandleFunc("/api/groups/count", s.getGroupsCount).Methods(http.MethodGet)
	router.HandleFunc("/api/groups/similar", s.getSimilarGroups).Methods(http.MethodGet)
	router.HandleFunc("/api/names/similar", s.getSimilarNames).Methods(http.MethodGet)

	router.HandleFunc("/api/schedule/lector/{key}", s.getLectorSchedule).Methods(http.MethodGet)
	router.HandleFunc("/api/schedule/group/{name}", s.getGroupSchedule).Methods(http.MethodGet)
	router.HandleFunc("/api/schedule/room/{name}", s.getRoomSchedule).Methods(http.MethodGet)

	router.HandleFunc("/api/ics/lector/{key}", s.getLectorCalendar).Methods(http.MethodGet)
	router.HandleFunc("/api/ics/group/{name}", s.getGroupCalendar).Methods(http.MethodGet)
	router.HandleFunc("/api/ics/room/{name}", s.getRoomCalendar).Methods(http.MethodGet)

	router.HandleFunc("/api/rooms/free", s.getFreeRooms).Methods(http.MethodGet)

	router.HandleFunc("/api/rebuild", s.postRebuild).Methods(http.MethodPost)
	router.HandleFunc("/api/clear", s.postClear).Methods(http.MethodPost)
	router.HandleFunc("/api/status", s.getStatus).Methods(http.MethodGet)

	return cors.Default().Handler(router)
}

func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	s.Info.Printf("сервер слушает %s", addr)

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Debug.Printf("не удалось отправить ответ: %s", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.Debug.Printf("внутренняя ошибка: %s", err)
	http.Error(w, "Внутренняя ошибка сервиса", http.StatusInternalServerError)
}

// Смещение и размер страницы из строки запроса
func paging(r *http.Request) (int, int) {
	query := r.URL.Query()
	skip, _ := strconv.Atoi(query.Get("skip"))
	take, _ := strconv.Atoi(query.Get("take"))
	page, _ := strconv.Atoi(query.Get("page"))

	return index.EffectiveSkip(skip, take, page), take
}

func useCache(r *http.Request) bool {
	return r.URL.Query().Get("useCache") != "false"
}
