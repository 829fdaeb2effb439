package database

import (
	"io"
	"log"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
)

type LogFiles struct {
	DBLogFile io.Writer
	DebugFile io.Writer

	closers []io.Closer
}

// Создание ротируемого файла журнала в каталоге logs
func CreateLog(name string) *rotatelogs.RotateLogs {
	logs, err := rotatelogs.New(
		"logs/"+name+".%Y%m%d.log",
		rotatelogs.WithLinkName("logs/"+name+".log"),
		rotatelogs.WithMaxAge(14*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatal(err)
	}

	return logs
}

// Открытие всех журналов сервиса
func OpenLogs() LogFiles {
	db := CreateLog("sql")
	debug := CreateLog("debug")

	return LogFiles{
		DBLogFile: db,
		DebugFile: debug,
		closers:   []io.Closer{db, debug},
	}
}

func (f *LogFiles) CloseAll() {
	for _, c := range f.closers {
		c.Close()
	}
}
