package maiparser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Документ не соответствует ожидаемой структуре origin
var ErrMalformedDocument = errors.New("malformed schedule document")

// Часовой пояс origin (Москва, UTC+3 без переходов)
var Location = time.FixedZone("MSK", 3*60*60)

// Разбор документа расписания лектора напрямую из потока токенов:
// {"name": ..., "groups": {...}, "schedule": {"дата": {"pairs": {"время": {...}}}}}
func ParseLectorSchedule(r io.Reader) (*LectorSchedule, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var sh LectorSchedule
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		switch key {
		case "name":
			var name string
			if err := dec.Decode(&name); err != nil {
				return nil, fmt.Errorf("%w: name: %v", ErrMalformedDocument, err)
			}
			sh.Name = TitleWords(name)
		case "groups":
			if err := dec.Decode(&sh.Groups); err != nil {
				return nil, fmt.Errorf("%w: groups: %v", ErrMalformedDocument, err)
			}
		case "schedule":
			if err := parseLectorDays(dec, &sh); err != nil {
				return nil, err
			}
		default:
			if err := skipValue(dec); err != nil {
				return nil, err
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	if sh.Name == "" || sh.Groups == nil {
		return nil, fmt.Errorf("%w: name or groups missed", ErrMalformedDocument)
	}
	sh.Created = time.Now()

	return &sh, nil
}

func parseLectorDays(dec *json.Decoder, sh *LectorSchedule) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		dateKey, err := readKey(dec)
		if err != nil {
			return err
		}
		date, err := time.ParseInLocation("02.01.2006", dateKey, Location)
		if err != nil {
			return fmt.Errorf("%w: date %q: %v", ErrMalformedDocument, dateKey, err)
		}

		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			key, err := readKey(dec)
			if err != nil {
				return err
			}
			if key != "pairs" {
				if err := skipValue(dec); err != nil {
					return err
				}

				continue
			}

			if err := expectDelim(dec, '{'); err != nil {
				return err
			}
			for dec.More() {
				if _, err := readKey(dec); err != nil {
					return err
				}
				var raw struct {
					TimeStart string               `json:"time_start"`
					TimeEnd   string               `json:"time_end"`
					Name      string               `json:"name"`
					Groups    []string             `json:"groups"`
					Types     []string             `json:"types"`
					Rooms     map[uuid.UUID]string `json:"rooms"`
				}
				if err := dec.Decode(&raw); err != nil {
					return fmt.Errorf("%w: lesson: %v", ErrMalformedDocument, err)
				}
				start, duration, err := composeTime(date, raw.TimeStart, raw.TimeEnd)
				if err != nil {
					return err
				}
				sh.Lessons = append(sh.Lessons, LectorLesson{
					Name:     strings.TrimSpace(raw.Name),
					Start:    start,
					Duration: duration,
					Types:    raw.Types,
					Groups:   raw.Groups,
					Rooms:    raw.Rooms,
				})
			}
			if _, err := dec.Token(); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
			}
		}
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	return nil
}

// Разбор документа расписания студенческой группы. Первым ключом обязан
// идти "group", далее дни расписания лежат прямо в корне документа:
// {"group": ..., "дата": {"pairs": {"время": {"имя занятия": {...}}}}}
func ParseStudentSchedule(r io.Reader) (*StudentSchedule, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	key, err := readKey(dec)
	if err != nil {
		return nil, err
	}
	if key != "group" {
		return nil, fmt.Errorf("%w: first key %q, want \"group\"", ErrMalformedDocument, key)
	}
	var group string
	if err := dec.Decode(&group); err != nil {
		return nil, fmt.Errorf("%w: group: %v", ErrMalformedDocument, err)
	}

	sh := StudentSchedule{Group: norm.NFC.String(group)}
	for dec.More() {
		dateKey, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		date, err := time.ParseInLocation("02.01.2006", dateKey, Location)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q: %v", ErrMalformedDocument, dateKey, err)
		}
		if err := parseStudentDay(dec, date, &sh); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	sh.Created = time.Now()

	return &sh, nil
}

func parseStudentDay(dec *json.Decoder, date time.Time, sh *StudentSchedule) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		if key != "pairs" {
			if err := skipValue(dec); err != nil {
				return err
			}

			continue
		}

		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			// Ключ времени дублирует time_start занятий, используем сами занятия
			if _, err := readKey(dec); err != nil {
				return err
			}
			if err := expectDelim(dec, '{'); err != nil {
				return err
			}
			for dec.More() {
				name, err := readKey(dec)
				if err != nil {
					return err
				}
				var raw struct {
					TimeStart string               `json:"time_start"`
					TimeEnd   string               `json:"time_end"`
					Lector    map[uuid.UUID]string `json:"lector"`
					Type      map[string]int       `json:"type"`
					Room      map[uuid.UUID]string `json:"room"`
					Lms       string               `json:"lms"`
					Teams     string               `json:"teams"`
					Other     string               `json:"other"`
				}
				if err := dec.Decode(&raw); err != nil {
					return fmt.Errorf("%w: lesson %q: %v", ErrMalformedDocument, name, err)
				}
				start, duration, err := composeTime(date, raw.TimeStart, raw.TimeEnd)
				if err != nil {
					return err
				}
				// Нулевой GUID лектора означает "лектор не назначен"
				delete(raw.Lector, uuid.Nil)
				sh.Lessons = append(sh.Lessons, StudentLesson{
					Name:     strings.TrimSpace(name),
					Start:    start,
					Duration: duration,
					Lectors:  raw.Lector,
					Types:    raw.Type,
					Rooms:    raw.Room,
					Lms:      strings.TrimSpace(raw.Lms),
					Teams:    strings.TrimSpace(raw.Teams),
					Other:    strings.TrimSpace(raw.Other),
				})
			}
			if _, err := dec.Token(); err != nil {
				return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
			}
		}
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	return nil
}

// Начало занятия складывается из ключа даты и времени начала самого занятия
func composeTime(date time.Time, startStr, endStr string) (time.Time, time.Duration, error) {
	start, err := parseClock(startStr)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: time_start %q: %v", ErrMalformedDocument, startStr, err)
	}
	end, err := parseClock(endStr)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: time_end %q: %v", ErrMalformedDocument, endStr, err)
	}

	return date.Add(start), end - start, nil
}

var clockLayouts = []string{"15:04:05", "15:04"}

func parseClock(s string) (time.Duration, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}

	return 0, fmt.Errorf("unknown clock format %q", s)
}

// Приведение имени к виду "Каждое Слово С Заглавной Буквы"
func TitleWords(s string) string {
	caser := cases.Title(language.Russian)
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = caser.String(strings.ToLower(word))
	}

	return strings.Join(words, " ")
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("%w: got %v, want %v", ErrMalformedDocument, tok, want)
	}

	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: got %v, want object key", ErrMalformedDocument, tok)
	}

	return key, nil
}

func skipValue(dec *json.Decoder) error {
	var skip json.RawMessage
	if err := dec.Decode(&skip); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	return nil
}
