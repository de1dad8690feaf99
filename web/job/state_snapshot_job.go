package job

import (
	"x-lotto/logger"
	"x-lotto/web/service"
)

// StateSnapshotJob 定期保存抽取状态并记录一行摘要。
type StateSnapshotJob struct {
	drawService *service.DrawService
}

func NewStateSnapshotJob(drawService *service.DrawService) *StateSnapshotJob {
	return &StateSnapshotJob{drawService: drawService}
}

func (j *StateSnapshotJob) Run() {
	if err := j.drawService.Save(); err != nil {
		logger.Warning("state snapshot failed:", err)
		return
	}
	st := j.drawService.Status()
	logger.Infof("state snapshot: universe %d, %d/%d drawn, %d history entries",
		st.Session.UniverseSize, len(st.Session.DrawnNumbers), st.Session.UniverseSize, len(st.History))
}
