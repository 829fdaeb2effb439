// Файловый кэш расписаний. Документы преподавателей лежат в
// lectors/{Имя}[{GUID}].json, документы групп в students/{Группа}.json
package cache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rasp.dep406.ru/mirror/modules/maiparser"
)

// Срок годности сохранённого документа
const FreshFor = 3 * 24 * time.Hour

type FileCache struct {
	Root  string
	Debug *log.Logger
}

func NewFileCache(root string, debug *log.Logger) *FileCache {
	return &FileCache{Root: root, Debug: debug}
}

func (c *FileCache) lectorsDir() string {
	return filepath.Join(c.Root, "lectors")
}

func (c *FileCache) studentsDir() string {
	return filepath.Join(c.Root, "students")
}

// В имени файла не место разделителям путей
func safeName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")

	return strings.ReplaceAll(name, "\\", "_")
}

func (c *FileCache) SetLector(sh *maiparser.LectorSchedule) error {
	err := os.MkdirAll(c.lectorsDir(), 0o755)
	if err != nil {
		return err
	}

	data, err := json.Marshal(sh)
	if err != nil {
		return err
	}
	name := safeName(sh.Name) + "[" + sh.Id.String() + "].json"

	return os.WriteFile(filepath.Join(c.lectorsDir(), name), data, 0o644)
}

// Поиск свежего документа преподавателя по идентификатору.
// Имя в начале файла неизвестно, поэтому каталог перебирается целиком,
// из нескольких совпадений берётся самое новое
func (c *FileCache) GetLector(id uuid.UUID) (*maiparser.LectorSchedule, bool) {
	entries, err := os.ReadDir(c.lectorsDir())
	if err != nil {
		return nil, false
	}

	suffix := "[" + id.String() + "].json"
	var path string
	var newest time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if path == "" || info.ModTime().After(newest) {
			path = filepath.Join(c.lectorsDir(), entry.Name())
			newest = info.ModTime()
		}
	}
	if path == "" {
		return nil, false
	}
	if time.Since(newest) >= FreshFor {
		c.Debug.Printf("документ %s устарел", path)

		return nil, false
	}

	return c.readLector(path)
}

func (c *FileCache) readLector(path string) (*maiparser.LectorSchedule, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		c.Debug.Printf("не удалось прочитать %s: %s", path, err)

		return nil, false
	}
	var sh maiparser.LectorSchedule
	if err := json.Unmarshal(data, &sh); err != nil {
		c.Debug.Printf("повреждённый документ %s: %s", path, err)

		return nil, false
	}

	return &sh, true
}

func (c *FileCache) SetStudent(sh *maiparser.StudentSchedule) error {
	err := os.MkdirAll(c.studentsDir(), 0o755)
	if err != nil {
		return err
	}

	data, err := json.Marshal(sh)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(c.studentsDir(), safeName(sh.Group)+".json"), data, 0o644)
}

func (c *FileCache) GetStudent(group string) (*maiparser.StudentSchedule, bool) {
	path := filepath.Join(c.studentsDir(), safeName(group)+".json")
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) >= FreshFor {
		c.Debug.Printf("документ %s устарел", path)

		return nil, false
	}

	return c.readStudent(path)
}

func (c *FileCache) readStudent(path string) (*maiparser.StudentSchedule, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		c.Debug.Printf("не удалось прочитать %s: %s", path, err)

		return nil, false
	}
	var sh maiparser.StudentSchedule
	if err := json.Unmarshal(data, &sh); err != nil {
		c.Debug.Printf("повреждённый документ %s: %s", path, err)

		return nil, false
	}

	return &sh, true
}

// Обход всех сохранённых документов преподавателей, включая устаревшие.
// Обратный вызов возвращает false, чтобы остановить перебор
func (c *FileCache) EnumLectors(walk func(*maiparser.LectorSchedule) bool) error {
	entries, err := os.ReadDir(c.lectorsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		sh, ok := c.readLector(filepath.Join(c.lectorsDir(), entry.Name()))
		if !ok {
			continue
		}
		if !walk(sh) {
			return nil
		}
	}

	return nil
}

func (c *FileCache) EnumStudents(walk func(*maiparser.StudentSchedule) bool) error {
	entries, err := os.ReadDir(c.studentsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		sh, ok := c.readStudent(filepath.Join(c.studentsDir(), entry.Name()))
		if !ok {
			continue
		}
		if !walk(sh) {
			return nil
		}
	}

	return nil
}

// Возраст самого нового документа в кэше, для страницы состояния
func (c *FileCache) LastUpdate() (time.Time, bool) {
	var newest time.Time
	for _, dir := range []string{c.lectorsDir(), c.studentsDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || entry.IsDir() {
				continue
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
			}
		}
	}

	return newest, !newest.IsZero()
}

// Удаление всех сохранённых документов.
// Возвращает, было ли что удалять
func (c *FileCache) Clear() (bool, error) {
	existed := false
	for _, dir := range []string{c.lectorsDir(), c.studentsDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return existed, err
		}
		if len(entries) > 0 {
			existed = true
		}
		if err := os.RemoveAll(dir); err != nil {
			return existed, err
		}
	}

	return existed, nil
}
