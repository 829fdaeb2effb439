// Справочник известных преподавателей, групп и аудиторий.
// Наполняется обходчиком, используется для поиска расписаний по имени
package index

import (
	"log"
	"strings"

	"github.com/google/uuid"
	"xorm.io/builder"
	"xorm.io/xorm"

	"rasp.dep406.ru/mirror/modules/database"
	"rasp.dep406.ru/mirror/modules/maiparser"
)

type Store struct {
	DB    *xorm.Engine
	Debug *log.Logger
}

func NewStore(db *xorm.Engine, debug *log.Logger) *Store {
	return &Store{DB: db, Debug: debug}
}

// Окончательное смещение выборки.
// Номер страницы вместе с её размером перекрывают явное смещение
func EffectiveSkip(skip, take, page int) int {
	if page > 0 && take > 0 {
		return page * take
	}

	return skip
}

const allRows = int(^uint(0) >> 1)

func pageOf(session *xorm.Session, skip, take int) *xorm.Session {
	if take <= 0 {
		take = allRows
	}

	return session.Limit(take, skip)
}

// Регистрация преподавателя. Повторы пропускаются молча
func (s *Store) AddLector(name string, id uuid.UUID) (bool, error) {
	name = strings.ToUpper(strings.TrimSpace(name))

	exist, err := s.DB.Where("Name = ? OR ScheduleId = ?", name, id.String()).
		Exist(&database.Lector{})
	if err != nil {
		return false, err
	}
	if exist {
		s.Debug.Printf("преподаватель %s уже есть в справочнике", name)

		return false, nil
	}

	_, err = s.DB.InsertOne(&database.Lector{Name: name, ScheduleId: id.String()})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) AddLectors(refs []maiparser.Ref) error {
	for _, ref := range refs {
		if _, err := s.AddLector(ref.Name, ref.Id); err != nil {
			return err
		}
	}

	return nil
}

// Регистрация группы. Идентификатором документа служит md5 от названия
func (s *Store) AddGroup(name string) (bool, error) {
	name = strings.TrimSpace(name)
	id := maiparser.StudentScheduleId(name)

	exist, err := s.DB.Where("Name = ? OR ScheduleId = ?", name, id).
		Exist(&database.Group{})
	if err != nil {
		return false, err
	}
	if exist {
		s.Debug.Printf("группа %s уже есть в справочнике", name)

		return false, nil
	}

	_, err = s.DB.InsertOne(&database.Group{Name: name, ScheduleId: id})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) AddRoom(name string, id uuid.UUID) (bool, error) {
	name = strings.TrimSpace(name)

	exist, err := s.DB.Where("Name = ? OR ScheduleId = ?", name, id.String()).
		Exist(&database.Room{})
	if err != nil {
		return false, err
	}
	if exist {
		return false, nil
	}

	_, err = s.DB.InsertOne(&database.Room{Name: name, ScheduleId: id.String()})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) LectorsCount() (int64, error) {
	return s.DB.Count(&database.Lector{})
}

func (s *Store) GroupsCount() (int64, error) {
	return s.DB.Count(&database.Group{})
}

func (s *Store) RoomsCount() (int64, error) {
	return s.DB.Count(&database.Room{})
}

// Страница справочника преподавателей по алфавиту
func (s *Store) Lectors(skip, take int) ([]string, error) {
	var lectors []database.Lector
	err := pageOf(s.DB.Asc("Name"), skip, take).Find(&lectors)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(lectors))
	for _, lector := range lectors {
		names = append(names, maiparser.TitleWords(lector.Name))
	}

	return names, nil
}

func (s *Store) Groups(skip, take int) ([]string, error) {
	var groups []database.Group
	err := pageOf(s.DB.Asc("Name"), skip, take).Find(&groups)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(groups))
	for _, group := range groups {
		names = append(names, group.Name)
	}

	return names, nil
}

func (s *Store) Rooms(skip, take int) ([]database.Room, error) {
	var rooms []database.Room
	err := pageOf(s.DB.Asc("Name"), skip, take).Find(&rooms)

	return rooms, err
}

// Имена преподавателей, похожие на запрос.
// Латинский запрос перед поиском транслитерируется
func (s *Store) SimilarLectors(name string, skip, take int) ([]string, error) {
	var lectors []database.Lector
	err := pageOf(s.DB.Where(builder.Like{"Name", lectorQuery(name)}).Asc("Name"), skip, take).
		Find(&lectors)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(lectors))
	for _, lector := range lectors {
		names = append(names, maiparser.TitleWords(lector.Name))
	}

	return names, nil
}

func (s *Store) SimilarGroups(name string, skip, take int) ([]string, error) {
	name = strings.TrimSpace(name)
	if HasLatin(name) {
		name = Transliterate(strings.ToUpper(name))
	}

	var groups []database.Group
	err := pageOf(s.DB.Where(builder.Like{"Name", name}).Asc("Name"), skip, take).
		Find(&groups)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(groups))
	for _, group := range groups {
		names = append(names, group.Name)
	}

	return names, nil
}

type MatchKind string

const (
	MatchLectors MatchKind = "lectors"
	MatchGroups  MatchKind = "groups"
)

// Результат общего поиска: либо преподаватели, либо группы
type NameMatches struct {
	Kind    MatchKind `json:"kind"`
	Matches []string  `json:"matches"`
}

// Общий поиск по имени. Запрос из одних букв считается
// фамилией преподавателя, любой другой ищется среди групп
func (s *Store) SimilarNames(name string, skip, take int) (NameMatches, error) {
	if isAlphabetic(strings.TrimSpace(name)) {
		matches, err := s.SimilarLectors(name, skip, take)

		return NameMatches{Kind: MatchLectors, Matches: matches}, err
	}

	matches, err := s.SimilarGroups(name, skip, take)

	return NameMatches{Kind: MatchGroups, Matches: matches}, err
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		latin := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
		cyrillic := (r >= 'А' && r <= 'я') || r == 'Ё' || r == 'ё'
		if !latin && !cyrillic && r != ' ' && r != '.' {
			return false
		}
	}

	return true
}

// Поиск идентификатора документа преподавателя по фамилии.
// Сначала точное совпадение, затем по началу имени, затем по подстроке
func (s *Store) ResolveLector(name string) (uuid.UUID, bool, error) {
	rus := lectorQuery(name)

	var lector database.Lector
	found, err := s.DB.Where("Name = ?", rus).Get(&lector)
	if err != nil {
		return uuid.Nil, false, err
	}
	if !found {
		found, err = s.DB.Where("Name LIKE ?", rus+"%").Asc("Name").Get(&lector)
		if err != nil {
			return uuid.Nil, false, err
		}
	}
	if !found {
		found, err = s.DB.Where(builder.Like{"Name", rus}).Asc("Name").Get(&lector)
		if err != nil || !found {
			return uuid.Nil, false, err
		}
	}

	id, err := uuid.Parse(lector.ScheduleId)
	if err != nil {
		return uuid.Nil, false, err
	}

	return id, true, nil
}

// Поиск аудитории: сначала точное имя, затем по началу
func (s *Store) ResolveRoom(name string) (database.Room, bool, error) {
	name = strings.TrimSpace(name)

	var room database.Room
	found, err := s.DB.Where("Name = ?", name).Get(&room)
	if err != nil || found {
		return room, found, err
	}
	found, err = s.DB.Where("Name LIKE ?", name+"%").Asc("Name").Get(&room)

	return room, found, err
}

func (s *Store) GroupByScheduleId(id string) (database.Group, bool, error) {
	var group database.Group
	found, err := s.DB.Where("ScheduleId = ?", id).Get(&group)

	return group, found, err
}

// Полная очистка справочника. Возвращает, были ли в нём записи
func (s *Store) Clear() (bool, error) {
	lectors, err := s.LectorsCount()
	if err != nil {
		return false, err
	}
	groups, err := s.GroupsCount()
	if err != nil {
		return false, err
	}
	rooms, err := s.RoomsCount()
	if err != nil {
		return false, err
	}

	err = s.DB.DropTables(&database.Lector{}, &database.Group{}, &database.Room{})
	if err != nil {
		return false, err
	}
	err = s.DB.Sync(&database.Lector{}, &database.Group{}, &database.Room{})
	if err != nil {
		return false, err
	}

	return lectors+groups+rooms > 0, nil
}

// Нормализация запроса по преподавателю с точечными правками
// под известные неоднозначные сокращения
func lectorQuery(name string) string {
	name = strings.TrimSpace(name)
	upper := strings.ToUpper(name)

	switch {
	case strings.HasPrefix(upper, "SHMA"):
		return "ШМАЧИЛИН ПАВЕЛ АЛЕКСАНДРОВИЧ"
	case strings.HasPrefix(upper, "KONDR"):
		return "КОНДРАТЬЕВА СВЕТЛАНА ГЕННАДЬЕВНА"
	}

	if HasLatin(upper) {
		upper = Transliterate(upper)
	}
	if strings.HasPrefix(upper, "КОНДР") && len([]rune(upper)) < 10 {
		return "КОНДРАТЬЕВА СВЕТЛАНА ГЕННАДЬЕВНА"
	}

	return upper
}
