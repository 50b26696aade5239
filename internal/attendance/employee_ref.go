package attendance

import (
	"errors"

	"restoran-admin/internal/apperr"
	"restoran-admin/internal/models"

	"gorm.io/gorm"
)

type EmployeeRefKind string

const (
	RefProfile EmployeeRefKind = "profile"
	RefUser    EmployeeRefKind = "user"
)

// EmployeeRef çalışanı ya profil ID'si ya da bağlı kullanıcı ID'si ile
// gösterir. İkisi birbirine dönüştürülmez.
type EmployeeRef struct {
	Kind EmployeeRefKind `json:"kind"`
	ID   uint            `json:"id"`
}

func ByProfileID(id uint) EmployeeRef { return EmployeeRef{Kind: RefProfile, ID: id} }

func ByUserID(id uint) EmployeeRef { return EmployeeRef{Kind: RefUser, ID: id} }

func (r EmployeeRef) validate() error {
	if r.Kind != RefProfile && r.Kind != RefUser {
		return apperr.Validation("Çalışan referans türü 'profile' veya 'user' olmalı")
	}
	if r.ID == 0 {
		return apperr.Validation("Çalışan ID zorunlu")
	}
	return nil
}

func resolveEmployee(tx *gorm.DB, ref EmployeeRef) (*models.Employee, error) {
	if err := ref.validate(); err != nil {
		return nil, err
	}

	var emp models.Employee
	q := tx
	if ref.Kind == RefUser {
		q = q.Where("user_id = ?", ref.ID)
	} else {
		q = q.Where("id = ?", ref.ID)
	}
	if err := q.First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if ref.Kind == RefUser {
				return nil, apperr.NotFound("Kullanıcıya bağlı çalışan profili bulunamadı")
			}
			return nil, apperr.NotFound("Çalışan bulunamadı")
		}
		return nil, err
	}
	return &emp, nil
}
