package repository

import (
	"context"
	"time"

	"robotconsole/internal/model"
	"robotconsole/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const snapshotCollection = "login_data_snapshots"

// LoginDataSnapshotRepository 登录数据归档仓储接口
type LoginDataSnapshotRepository interface {
	Create(ctx context.Context, snapshot *model.LoginDataSnapshot) error
	ListByRobot(ctx context.Context, robotID int64, limit int64) ([]*model.LoginDataSnapshot, error)
}

// loginDataSnapshotRepository MongoDB 实现
type loginDataSnapshotRepository struct {
	mongo *database.MongoClient
}

// NewLoginDataSnapshotRepository 创建登录数据归档仓储实例
func NewLoginDataSnapshotRepository(mongo *database.MongoClient) LoginDataSnapshotRepository {
	return &loginDataSnapshotRepository{mongo: mongo}
}

// Create 写入快照
func (r *loginDataSnapshotRepository) Create(ctx context.Context, snapshot *model.LoginDataSnapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}
	_, err := r.mongo.Collection(snapshotCollection).InsertOne(ctx, snapshot)
	return err
}

// ListByRobot 最新的若干条快照（不含数据正文）
func (r *loginDataSnapshotRepository) ListByRobot(ctx context.Context, robotID int64, limit int64) ([]*model.LoginDataSnapshot, error) {
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit).
		SetProjection(bson.M{"data": 0})

	cursor, err := r.mongo.Collection(snapshotCollection).Find(ctx, bson.M{"robot_id": robotID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snapshots []*model.LoginDataSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}
