package database

import (
	"time"

	"x-lotto/database/model"
	"x-lotto/util/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errNotInitialized = common.NewError("database not initialized")

// KVStore 把 kv_entries 表暴露为 lottery.KeyValueStore。
type KVStore struct{}

func (KVStore) Get(key string) ([]byte, bool, error) {
	if db == nil {
		return nil, false, errNotInitialized
	}
	var entry model.KVEntry
	err := db.Where("name = ?", key).First(&entry).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(entry.Value), true, nil
}

// Set 以 upsert 的方式写入，同一个键永远只有一行。
func (KVStore) Set(key string, value []byte) error {
	if db == nil {
		return errNotInitialized
	}
	return db.Transaction(func(tx *gorm.DB) error {
		entry := &model.KVEntry{
			Name:      key,
			Value:     string(value),
			UpdatedAt: time.Now(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(entry).Error
	})
}

// Delete 在一个事务里删除全部给定的键，缺失的键不算错误。
func (KVStore) Delete(keys ...string) error {
	if db == nil {
		return errNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("name IN ?", keys).Delete(&model.KVEntry{}).Error
	})
}
