package calendar

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"rasp.dep406.ru/mirror/modules/maiparser"
)

const icsTemplate = `BEGIN:VCALENDAR
PRODID:-//dep406//rasp//RU
VERSION:2.0
CALSCALE:GREGORIAN
METHOD:PUBLISH
X-WR-CALNAME:{{.Name}}
X-WR-TIMEZONE:Europe/Moscow
BEGIN:VTIMEZONE
TZID:Europe/Moscow
BEGIN:STANDARD
TZOFFSETFROM:+0300
TZOFFSETTO:+0300
TZNAME:MSK
DTSTART:19700101T000000
END:STANDARD
END:VTIMEZONE
{{range .Events}}BEGIN:VEVENT
UID:{{.Uid}}
DTSTAMP:{{$.Stamp}}
DTSTART;TZID=Europe/Moscow:{{ics .Start}}
DTEND;TZID=Europe/Moscow:{{ics .End}}
{{if .Repeat}}RRULE:{{.Repeat}}
{{end}}SUMMARY:{{esc .Summary}}
{{if .Location}}LOCATION:{{esc .Location}}
{{end}}{{if .Description}}DESCRIPTION:{{esc .Description}}
{{end}}{{range .Attendees}}ATTENDEE;CN={{esc .Name}};ROLE=REQ-PARTICIPANT;RSVP=FALSE:{{.URL}}
{{end}}{{if .Alarm}}BEGIN:VALARM
ACTION:DISPLAY
DESCRIPTION:{{esc .Summary}}
TRIGGER:-PT2H
END:VALARM
BEGIN:VALARM
ACTION:DISPLAY
DESCRIPTION:{{esc .Summary}}
TRIGGER:-PT10M
END:VALARM
{{end}}END:VEVENT
{{end}}END:VCALENDAR
`

var calendarTemplate = template.Must(template.New("ics").Funcs(template.FuncMap{
	"ics": func(t time.Time) string {
		return t.In(maiparser.Location).Format("20060102T150405")
	},
	"esc": escapeText,
}).Parse(icsTemplate))

// Экранирование текста по RFC 5545
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)

	return strings.ReplaceAll(s, "\n", `\n`)
}

func render(events []Event, opt Options) ([]byte, error) {
	var buf bytes.Buffer
	err := calendarTemplate.Execute(&buf, struct {
		Name   string
		Stamp  string
		Events []Event
	}{
		Name:   opt.Name,
		Stamp:  time.Now().UTC().Format("20060102T150405Z"),
		Events: events,
	})
	if err != nil {
		return nil, err
	}

	// календарю положены переводы строк CRLF
	return bytes.ReplaceAll(buf.Bytes(), []byte("\n"), []byte("\r\n")), nil
}
