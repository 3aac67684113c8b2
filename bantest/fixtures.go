package bantest

import (
	"embed"
	"time"

	"github.com/cybercog/ban/ban"
	"github.com/cybercog/ban/database"
	"github.com/cybercog/ban/database/migration"
	"github.com/cybercog/ban/factory"
	"github.com/cybercog/ban/testenv"
)

// User is the stub user model the tests ban.
type User struct {
	database.BaseModel
	Name     string     `gorm:"size:255;not null" json:"name"`
	Email    string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	BannedAt *time.Time `json:"banned_at,omitempty"`
}

// TableName overrides the table name used by GORM.
func (User) TableName() string { return "users" }

// UserModel describes User.
var UserModel = ban.MustModelFor(&User{})

//go:embed database/migrations/*.sql
var migrations embed.FS

// Migrations is the fixture migration set creating the users table.
func Migrations() migration.Set {
	return migration.Set{
		Name:  "fixtures",
		FS:    migrations,
		Dir:   "database/migrations",
		Table: testenv.FixtureMigrationsTable,
	}
}

// Factories defines User and ban.Ban. Ban factories need a BannableID
// override.
func Factories(r *factory.Registry) {
	factory.Define(r, func(f *factory.Faker) *User {
		return &User{Name: f.Name(), Email: f.Email()}
	})
	factory.Define(r, func(f *factory.Faker) *ban.Ban {
		comment := f.Sentence()
		return &ban.Ban{
			BannableType: UserModel.Name(),
			Comment:      &comment,
		}
	})
}

// Options returns the environment options for the ban test suite.
func Options() testenv.Options {
	return testenv.Options{
		UserModel: UserModel,
		Fixtures:  Migrations(),
		Factories: []factory.Definitions{Factories},
	}
}
