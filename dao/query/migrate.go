package query

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/modelmagic/modelmagic/dao/model"
)

// Migrate brings the schema up to date and seeds the staff roster on a fresh
// database.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20240501-initial-schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.User{},
					&model.MagicToken{},
					&model.TeamMember{},
					&model.Project{},
					&model.Asset{},
					&model.Message{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"messages", "assets", "projects", "team_members", "magic_tokens", "users")
			},
		},
		{
			ID: "20240502-seed-team",
			Migrate: func(tx *gorm.DB) error {
				members := []model.TeamMember{
					{Name: "Alex Rivera", Role: model.MemberLeadEditor, Email: "alex@modelmagic.studio", IsOnline: true},
					{Name: "Jamie Park", Role: model.MemberAccountManager, Email: "jamie@modelmagic.studio", IsOnline: true},
					{Name: "Priya Nair", Role: model.MemberQASpecialist, Email: "priya@modelmagic.studio"},
					{Name: "Tomás Silva", Role: model.MemberSeniorRetoucher, Email: "tomas@modelmagic.studio"},
				}
				return tx.Create(&members).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Where("email LIKE ?", "%@modelmagic.studio").Delete(&model.TeamMember{}).Error
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return err
	}
	klog.Info("database migration complete")
	return nil
}
