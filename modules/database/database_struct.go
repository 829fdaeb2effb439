package database

// Записи индекса: каноническое имя сущности и непрозрачный идентификатор
// её origin-документа. Имя и идентификатор уникальны каждый сам по себе

type Lector struct {
	Id         int64  `xorm:"pk autoincr"`
	Name       string `xorm:"unique notnull"` // нормализованное, в верхнем регистре
	ScheduleId string `xorm:"unique notnull"` // GUID
}

type Group struct {
	Id         int64  `xorm:"pk autoincr"`
	Name       string `xorm:"unique notnull"`
	ScheduleId string `xorm:"unique notnull"` // md5 от имени группы
}

type Room struct {
	Id         int64  `xorm:"pk autoincr"`
	Name       string `xorm:"unique notnull"`
	ScheduleId string `xorm:"unique notnull"` // GUID
}
