// Package scheduler runs the periodic housekeeping jobs: progress counter
// advancement and expired magic-token cleanup.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/dao/model"
)

type Scheduler struct {
	cron *cron.Cron
	db   *gorm.DB
}

func New(db *gorm.DB) *Scheduler {
	return &Scheduler{cron: cron.New(), db: db}
}

// Start registers the jobs and kicks off the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.advanceProgress); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@hourly", s.purgeExpiredTokens); err != nil {
		return err
	}
	s.cron.Start()
	klog.Info("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// advanceProgress ticks progress_day for projects in production. The counter
// is display-only; status never moves off the back of it.
func (s *Scheduler) advanceProgress() {
	inProduction := []model.ProjectStatus{
		model.ProjectTeamAssigned,
		model.ProjectBeingEdited,
		model.ProjectQAReview,
	}
	res := s.db.Model(&model.Project{}).
		Where("status IN ?", inProduction).
		Where("progress_day < total_days").
		UpdateColumn("progress_day", gorm.Expr("progress_day + 1"))
	if res.Error != nil {
		klog.Errorf("advance progress counters: %v", res.Error)
		return
	}
	klog.V(2).Infof("advanced progress on %d projects", res.RowsAffected)
}

func (s *Scheduler) purgeExpiredTokens() {
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&model.MagicToken{})
	if res.Error != nil {
		klog.Errorf("purge expired magic tokens: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		klog.V(2).Infof("purged %d expired magic tokens", res.RowsAffected)
	}
}
