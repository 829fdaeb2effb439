package database

import (
	"fmt"
	"io"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"xorm.io/xorm"
	xlog "xorm.io/xorm/log"
	"xorm.io/xorm/names"
)

type DB struct {
	User   string
	Pass   string
	Schema string
	// Путь к файлу SQLite; если задан, MySQL не используется
	SQLite string
}

// Подключение к БД индекса и синхронизация таблиц
func Connect(db DB, logFile io.Writer) (*xorm.Engine, error) {
	var engine *xorm.Engine
	var err error
	if db.SQLite != "" {
		engine, err = xorm.NewEngine("sqlite3", db.SQLite)
	} else {
		dsn := fmt.Sprintf("%s:%s@tcp(localhost:3306)/%s?charset=utf8", db.User, db.Pass, db.Schema)
		engine, err = xorm.NewEngine("mysql", dsn)
	}
	if err != nil {
		return nil, err
	}

	if logFile != nil {
		engine.SetLogger(xlog.NewSimpleLogger(logFile))
		engine.ShowSQL(true)
	}
	engine.SetMapper(names.SameMapper{})

	if err := engine.Sync(&Lector{}, &Group{}, &Room{}); err != nil {
		return nil, err
	}

	return engine, nil
}
