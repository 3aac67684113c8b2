package bantest

import (
	"context"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/cybercog/ban/ban"
	"github.com/cybercog/ban/factory"
	"github.com/cybercog/ban/testenv"
)

// TestCase is the base suite of the ban tests. Every test gets its own
// application, database and published migrations.
//
//	type BanSuite struct{ bantest.TestCase }
//
//	func TestBanSuite(t *testing.T) { suite.Run(t, new(BanSuite)) }
type TestCase struct {
	suite.Suite
	Env *testenv.Environment
}

// Options returns the environment options. The base path is the test's
// temporary directory.
func (s *TestCase) Options() testenv.Options {
	opts := Options()
	opts.BasePath = s.T().TempDir()
	return opts
}

// SetupTest builds and sets up the environment.
func (s *TestCase) SetupTest() {
	env, err := testenv.New(s.Options())
	s.Require().NoError(err)
	s.Env = env
	s.Require().NoError(env.SetUp(context.Background()))
}

// TearDownTest destroys the environment.
func (s *TestCase) TearDownTest() {
	if s.Env == nil {
		return
	}
	s.Require().NoError(s.Env.TearDown(context.Background()))
	s.Env = nil
}

// BeforeApplicationDestroyed registers fn to run before the environment
// is destroyed.
func (s *TestCase) BeforeApplicationDestroyed(fn func(ctx context.Context) error) {
	s.Require().NoError(s.Env.BeforeApplicationDestroyed(fn))
}

// DB returns the test database.
func (s *TestCase) DB() *gorm.DB { return s.Env.DB() }

// Bans returns the ban service of the application.
func (s *TestCase) Bans() *ban.Service {
	svc, err := ban.ServiceFrom(s.Env.App)
	s.Require().NoError(err)
	return svc
}

// CreateUser inserts a user built by the User factory.
func (s *TestCase) CreateUser(overrides ...func(*User)) *User {
	u, err := factory.Create(context.Background(), s.Env.Factories(), s.DB(), overrides...)
	s.Require().NoError(err)
	return u
}
