package metrics

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const startKey = "metrics:query_start"

// GormPlugin пишет длительность каждого запроса в db_query_duration_seconds
type GormPlugin struct {
	m *Metrics
}

func (m *Metrics) GormPlugin() *GormPlugin {
	return &GormPlugin{m: m}
}

func (p *GormPlugin) Name() string {
	return "metrics"
}

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	hooks := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		if err := h.before("metrics:before_"+h.op, before); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+h.op, p.after(h.op)); err != nil {
			return err
		}
	}
	return nil
}

func before(db *gorm.DB) {
	db.InstanceSet(startKey, time.Now())
}

func (p *GormPlugin) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		success := db.Error == nil || errors.Is(db.Error, gorm.ErrRecordNotFound)
		p.m.ObserveDBQuery(op, table, success, time.Since(start))
	}
}
