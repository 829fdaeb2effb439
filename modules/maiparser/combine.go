package maiparser

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Максимальный перерыв между занятиями, при котором они считаются
// одним сдвоенным занятием
const CombineGap = 45 * time.Minute

// Объединение соседних одноимённых занятий с перерывом не более 45 минут
// в одно занятие. Один прямой проход по списку, без изменения исходного
func (s *LectorSchedule) LessonsCombined() []LectorLesson {
	var combined []LectorLesson
	var first *LectorLesson
	for _, lesson := range s.Lessons {
		if first != nil && first.Name == lesson.Name &&
			lesson.Start.Sub(first.End()) <= CombineGap {
			merged := LectorLesson{
				Name:     lesson.Name,
				Start:    first.Start,
				Duration: lesson.End().Sub(first.Start),
				Types:    unionStrings(first.Types, lesson.Types),
				Groups:   unionStrings(first.Groups, lesson.Groups),
				Rooms:    unionRefs(first.Rooms, lesson.Rooms),
			}
			first = &merged

			continue
		}
		if first != nil {
			combined = append(combined, *first)
		}
		lesson := lesson
		first = &lesson
	}
	if first != nil {
		combined = append(combined, *first)
	}

	return combined
}

func (s *StudentSchedule) LessonsCombined() []StudentLesson {
	var combined []StudentLesson
	var first *StudentLesson
	for _, lesson := range s.Lessons {
		if first != nil && first.Name == lesson.Name &&
			lesson.Start.Sub(first.End()) <= CombineGap {
			merged := StudentLesson{
				Name:     lesson.Name,
				Start:    first.Start,
				Duration: lesson.End().Sub(first.Start),
				Lectors:  unionRefs(first.Lectors, lesson.Lectors),
				Types:    unionCounts(first.Types, lesson.Types),
				Rooms:    unionRefs(first.Rooms, lesson.Rooms),
				Lms:      first.Lms,
				Teams:    first.Teams,
				Other:    first.Other,
			}
			first = &merged

			continue
		}
		if first != nil {
			combined = append(combined, *first)
		}
		lesson := lesson
		first = &lesson
	}
	if first != nil {
		combined = append(combined, *first)
	}

	return combined
}

func (s *RoomSchedule) LessonsCombined() []RoomLesson {
	var combined []RoomLesson
	var first *RoomLesson
	for _, lesson := range s.Lessons {
		if first != nil && first.Name == lesson.Name &&
			lesson.Start.Sub(first.End()) <= CombineGap {
			merged := RoomLesson{
				Name:     lesson.Name,
				Start:    first.Start,
				Duration: lesson.End().Sub(first.Start),
				Lectors:  unionRefs(first.Lectors, lesson.Lectors),
				Types:    unionStrings(first.Types, lesson.Types),
				Groups:   unionStrings(first.Groups, lesson.Groups),
			}
			first = &merged

			continue
		}
		if first != nil {
			combined = append(combined, *first)
		}
		lesson := lesson
		first = &lesson
	}
	if first != nil {
		combined = append(combined, *first)
	}

	return combined
}

func unionStrings(a, b []string) []string {
	result := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	return result
}

func unionRefs(a, b map[uuid.UUID]string) map[uuid.UUID]string {
	result := make(map[uuid.UUID]string, len(a)+len(b))
	for id, name := range a {
		result[id] = name
	}
	for id, name := range b {
		if _, ok := result[id]; !ok {
			result[id] = name
		}
	}

	return result
}

func unionCounts(a, b map[string]int) map[string]int {
	result := make(map[string]int, len(a)+len(b))
	for k, v := range a {
		result[k] = v
	}
	for k, v := range b {
		if _, ok := result[k]; !ok {
			result[k] = v
		}
	}

	return result
}

func sortedKeys[V any](m map[uuid.UUID]V) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	return keys
}
