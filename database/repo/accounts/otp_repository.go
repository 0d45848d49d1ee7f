package accounts

import (
	"github.com/anoixa/photo-gallery/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPRepository 验证码仓库
type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Create 创建验证码
func (r *OTPRepository) Create(otp *models.OTP) error {
	return r.db.Create(otp).Error
}

// GetForUpdate 加行锁读取
func (r *OTPRepository) GetForUpdate(id string) (*models.OTP, error) {
	var otp models.OTP
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("User").Where("id = ?", id).First(&otp).Error
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

// Save 保存验证码
func (r *OTPRepository) Save(otp *models.OTP) error {
	return r.db.Model(otp).Select("code", "send_count", "sent_at").Updates(otp).Error
}

// Delete 删除验证码
func (r *OTPRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.OTP{}).Error
}
