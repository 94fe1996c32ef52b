package gormx

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Strings ordered string list stored as json text; empty lists are stored as `[]`
type Strings []string

func (s *Strings) GormDataType() string                                   { return "strings" }
func (s *Strings) GormDBDataType(db *gorm.DB, field *schema.Field) string { return "text" }

func (s *Strings) Scan(in interface{}) error {
	var v []byte

	switch vv := in.(type) {
	case nil:
		*s = Strings{}
		return nil
	case string:
		v = []byte(vv)
	case []byte:
		v = vv
	default:
		return errors.Errorf("fail to parse Strings: %v", in)
	}

	ss := []string{}
	if len(v) > 0 {
		if err := json.Unmarshal(v, &ss); err != nil {
			return errors.Wrap(err, "fail to parse Strings")
		}
	}
	*s = ss

	return nil
}

func (s Strings) Value() (driver.Value, error) {
	if s == nil {
		s = Strings{}
	}

	v, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}

	return string(v), nil
}
