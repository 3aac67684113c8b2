package ban

import (
	"fmt"
	"reflect"
	"time"

	"github.com/iancoleman/strcase"

	"github.com/cybercog/ban/database"
	"github.com/cybercog/ban/errors"
)

// Bannable is an entity that can be banned. Implementations are GORM
// models whose table has a nullable banned_at column.
type Bannable interface {
	GetID() uint
}

// Ban is one ban applied to a bannable entity.
type Ban struct {
	database.BaseModel
	BannableType  string     `gorm:"size:255;not null" json:"bannable_type"`
	BannableID    uint       `gorm:"not null" json:"bannable_id"`
	CreatedByType *string    `gorm:"size:255" json:"created_by_type,omitempty"`
	CreatedByID   *uint      `json:"created_by_id,omitempty"`
	Comment       *string    `json:"comment,omitempty"`
	ExpiredAt     *time.Time `json:"expired_at,omitempty"`
}

// TableName overrides the table name used by GORM.
func (Ban) TableName() string { return "bans" }

// IsPermanent reports whether the ban has no expiry.
func (b *Ban) IsPermanent() bool { return b.ExpiredAt == nil }

// IsTemporary reports whether the ban expires.
func (b *Ban) IsTemporary() bool { return b.ExpiredAt != nil }

// Model describes a bannable entity type. It is what the auth user model
// configuration key holds.
type Model struct {
	typ reflect.Type
}

// ModelFor describes the type of prototype, which must be a pointer to a struct.
func ModelFor(prototype Bannable) (Model, error) {
	t := reflect.TypeOf(prototype)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return Model{}, errors.Validation(fmt.Sprintf("bannable model must be a pointer to a struct, got %T", prototype))
	}
	return Model{typ: t.Elem()}, nil
}

// MustModelFor is ModelFor that panics.
func MustModelFor(prototype Bannable) Model {
	m, err := ModelFor(prototype)
	if err != nil {
		panic(err)
	}
	return m
}

// Name is the morph name stored in bannable_type, e.g. "user".
func (m Model) Name() string {
	if m.typ == nil {
		return ""
	}
	return strcase.ToSnake(m.typ.Name())
}

// Type returns the struct type.
func (m Model) Type() reflect.Type { return m.typ }

// IsZero reports whether m describes nothing.
func (m Model) IsZero() bool { return m.typ == nil }

// New returns a pointer to a zero value of the model.
func (m Model) New() Bannable {
	return reflect.New(m.typ).Interface().(Bannable)
}

// Is reports whether b is an instance of the model.
func (m Model) Is(b Bannable) bool {
	t := reflect.TypeOf(b)
	return t != nil && t.Kind() == reflect.Ptr && t.Elem() == m.typ
}

func (m Model) String() string {
	if m.typ == nil {
		return "<none>"
	}
	return m.typ.String()
}

// User is the production user model used when no other is configured.
type User struct {
	database.BaseModel
	Name     string     `gorm:"size:255" json:"name"`
	Email    string     `gorm:"size:255;uniqueIndex" json:"email"`
	BannedAt *time.Time `json:"banned_at,omitempty"`
}

// DefaultUserModel describes User.
var DefaultUserModel = MustModelFor(&User{})

// morphName is the bannable_type stored for b.
func morphName(b Bannable) (string, error) {
	m, err := ModelFor(b)
	if err != nil {
		return "", err
	}
	return m.Name(), nil
}
