package job

import (
	"x-lotto/database"
	"x-lotto/logger"
)

// CheckpointJob 定期把 SQLite 的 WAL 合并回主数据库文件。
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	if database.GetDB() == nil {
		return
	}
	if err := database.Checkpoint(); err != nil {
		logger.Warning("database checkpoint failed:", err)
		return
	}
	logger.Debug("database checkpoint done")
}
