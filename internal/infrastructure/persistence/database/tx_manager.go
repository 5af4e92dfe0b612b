package database

import (
	"context"

	"gorm.io/gorm"
)

// txKey 事务DB在context中的key
type txKey struct{}

// TxManager 事务管理器
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 嵌套调用时复用外层事务(GORM自动使用Savepoint)
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn返回error时ROLLBACK,返回nil时COMMIT;panic时同样回滚
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    r, err := reviewRepo.LockByID(ctx, id)   // SELECT ... FOR UPDATE
//	    if err != nil {
//	        return err
//	    }
//	    return reviewRepo.Update(ctx, r)          // 同一事务
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return getDB(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
