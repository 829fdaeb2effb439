package maiparser

import (
	"crypto/md5" // #nosec G501
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Адрес основного сайта (прод или тестовый)
var HeadURL = "https://public.mai.ru"

var client = &http.Client{Timeout: 30 * time.Second}

// Адрес документа расписания лектора по его GUID
func LectorScheduleURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/schedule/data/%s.json", HeadURL, id)
}

// Идентификатор документа группы: md5-хеш от имени группы в UTF-8,
// строчными шестнадцатеричными цифрами
func StudentScheduleId(group string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(group))) // #nosec G401
}

// Адрес документа расписания студенческой группы
func StudentScheduleURL(group string) string {
	return fmt.Sprintf("%s/schedule/data/%s.json", HeadURL, StudentScheduleId(group))
}

// Загрузка и разбор расписания лектора с origin. Без повторных попыток
func DownloadLectorSchedule(id uuid.UUID) (*LectorSchedule, error) {
	url := LectorScheduleURL(id)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("responce %s: %s", resp.Status, url)
	}

	sh, err := ParseLectorSchedule(resp.Body)
	if err != nil {
		return nil, err
	}
	sh.Id = id

	return sh, nil
}

// Загрузка и разбор расписания студенческой группы с origin
func DownloadStudentSchedule(group string) (*StudentSchedule, error) {
	url := StudentScheduleURL(group)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("responce %s: %s", resp.Status, url)
	}

	return ParseStudentSchedule(resp.Body)
}
