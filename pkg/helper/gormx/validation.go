package gormx

import (
	"reflect"

	"gorm.io/gorm"

	"cryptohub/pkg/helper"
)

// validationImpl validate models with `validate` struct tags before create and update
type validationImpl struct{}

func NewValidationPlugin() gorm.Plugin { return &validationImpl{} }

func (v *validationImpl) Name() string { return "validation" }
func (v *validationImpl) Initialize(db *gorm.DB) error {
	callback := db.Callback()
	if callback.Create().Get("validations:validate") == nil {
		callback.Create().Before("gorm:before_create").Register("validations:validate", v.validate)
	}

	if callback.Update().Get("validations:validate") == nil {
		callback.Update().Before("gorm:before_update").Register("validations:validate", v.validate)
	}

	return nil
}

func (v *validationImpl) validate(db *gorm.DB) {
	if db.Statement.Model == nil {
		return
	}

	typ := reflect.TypeOf(db.Statement.Model)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return
	}

	if err := helper.ValidateStruct(db.Statement.Model); err != nil {
		db.AddError(err)
	}
}
